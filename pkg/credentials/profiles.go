package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"gopkg.in/ini.v1"
)

// Loading errors
var (
	ErrHomeDirNotFound  = errors.New("user home directory could not be found")
	ErrReadCredentials  = errors.New("credentials file could not be read")
	ErrParseCredentials = errors.New("credentials file could not be parsed")
	ErrProfileNotFound  = errors.New("profile not found")
)

// entry is a profile as read from disk. The secret is not validated until the
// profile is retrieved.
type entry struct {
	accessKeyID     string
	secretAccessKey string
}

// Profiles is the content of a credentials file.
type Profiles struct {
	profiles map[string]entry
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Path overrides the default ~/.remoteit/credentials location.
	Path string
}

// DefaultPath returns ~/.remoteit/credentials.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrHomeDirNotFound
	}
	return filepath.Join(home, ".remoteit", "credentials"), nil
}

// NewProfiles returns an empty profile set.
func NewProfiles() *Profiles {
	return &Profiles{profiles: make(map[string]entry)}
}

// Load reads a credentials file. Secrets are validated when a profile is
// retrieved, not here.
func Load(opts LoadOptions) (*Profiles, error) {
	path := opts.Path
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadCredentials, err)
	}

	iniFile, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseCredentials, err)
	}

	profiles := NewProfiles()
	for _, section := range iniFile.Sections() {
		// Keys outside any section land in DEFAULT; it is never a profile.
		if section.Name() == ini.DefaultSection {
			continue
		}
		if !section.HasKey(AccessKeyIDKey) || !section.HasKey(SecretAccessKeyKey) {
			return nil, fmt.Errorf("%w: profile %q must set %s and %s",
				ErrParseCredentials, section.Name(), AccessKeyIDKey, SecretAccessKeyKey)
		}
		profiles.profiles[section.Name()] = entry{
			accessKeyID:     section.Key(AccessKeyIDKey).String(),
			secretAccessKey: section.Key(SecretAccessKeyKey).String(),
		}
	}

	return profiles, nil
}

// Profile validates and returns the named profile.
//
// Returns an error wrapping ErrProfileNotFound if there is no such profile and
// one wrapping ErrInvalidSecretKey if its secret is not base64.
func (p *Profiles) Profile(name string) (*Credentials, error) {
	e, ok := p.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	creds, err := New(e.accessKeyID, e.secretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}
	return creds, nil
}

// Take is like Profile but also removes the profile from p.
// A profile that fails validation is removed as well.
func (p *Profiles) Take(name string) (*Credentials, error) {
	creds, err := p.Profile(name)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	delete(p.profiles, name)
	return creds, err
}

// Set adds or replaces a profile.
func (p *Profiles) Set(name string, creds *Credentials) {
	p.profiles[name] = entry{
		accessKeyID:     creds.AccessKeyID(),
		secretAccessKey: creds.SecretAccessKey(),
	}
}

// Len returns the number of profiles.
func (p *Profiles) Len() int {
	return len(p.profiles)
}

// IsEmpty reports whether there are no profiles.
func (p *Profiles) IsEmpty() bool {
	return len(p.profiles) == 0
}

// Names returns the profile names in sorted order.
func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.profiles))
	for name := range p.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the profiles to path, or to DefaultPath if path is empty.
// Parent directories are created. The file holds secrets, so it is written
// with owner-only permissions.
func (p *Profiles) Save(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	iniFile := ini.Empty()
	for _, name := range p.Names() {
		section, err := iniFile.NewSection(name)
		if err != nil {
			return fmt.Errorf("failed to create section %q: %w", name, err)
		}
		e := p.profiles[name]
		section.Key(AccessKeyIDKey).SetValue(e.accessKeyID)
		section.Key(SecretAccessKeyKey).SetValue(e.secretAccessKey)
	}

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set credentials permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	return nil
}
