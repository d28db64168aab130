package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every settings environment variable, e.g. R3_PROFILE.
const EnvPrefix = "R3"

// Setting keys. Environment variables are EnvPrefix + "_" + upper-cased key.
const (
	KeyProfile         = "profile"
	KeyCredentialsFile = "credentials_file"
	KeyAPIURL          = "api_url"
	KeyTimeout         = "timeout"
	KeyMaxRetries      = "max_retries"
	KeyRateLimit       = "rate_limit"
	KeyProxyMode       = "proxy_mode"
	KeyProxyURL        = "proxy_url"
	KeyNoProxy         = "no_proxy"
)

// Proxy modes.
const (
	ProxyModeNone   = "no-proxy"
	ProxyModeSystem = "system"
	ProxyModeBasic  = "basic"
	ProxyModeNTLM   = "ntlm"
)

// Defaults.
const (
	DefaultProfile = "default"
	DefaultTimeout = 30 * time.Second
)

// flagKeys maps persistent flag names to setting keys.
var flagKeys = map[string]string{
	"profile":     KeyProfile,
	"credentials": KeyCredentialsFile,
	"api-url":     KeyAPIURL,
	"timeout":     KeyTimeout,
	"max-retries": KeyMaxRetries,
	"rate-limit":  KeyRateLimit,
	"proxy-mode":  KeyProxyMode,
	"proxy-url":   KeyProxyURL,
	"no-proxy":    KeyNoProxy,
}

// Settings are the resolved r3 settings.
type Settings struct {
	Profile string
	// ProfileSet is true when the profile was chosen by flag, environment or
	// settings file rather than defaulted.
	ProfileSet      bool
	CredentialsFile string
	APIURL          string
	Timeout         time.Duration
	MaxRetries      int
	// RateLimit caps requests per second; 0 means unlimited.
	RateLimit float64
	ProxyMode string
	ProxyURL  string
	NoProxy   string
}

// NewViper returns a viper instance with r3 defaults and environment lookup.
// Precedence is flag, then environment, then settings file, then default.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Profile has no default here so Load can tell whether one was chosen.
	v.SetDefault(KeyCredentialsFile, "")
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyMaxRetries, 0)
	v.SetDefault(KeyRateLimit, 0.0)
	v.SetDefault(KeyProxyMode, ProxyModeNone)
	v.SetDefault(KeyProxyURL, "")
	v.SetDefault(KeyNoProxy, "")
	return v
}

// BindFlags binds the known persistent flags in flags to their setting keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// ReadFile reads a settings file. An explicit path must exist; with an empty
// path the default ~/.remoteit/r3.yaml is read if present.
func ReadFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultSettingsPath()
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	return nil
}

// Load reads the settings out of v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Profile:         v.GetString(KeyProfile),
		ProfileSet:      v.GetString(KeyProfile) != "",
		CredentialsFile: v.GetString(KeyCredentialsFile),
		APIURL:          v.GetString(KeyAPIURL),
		Timeout:         v.GetDuration(KeyTimeout),
		MaxRetries:      v.GetInt(KeyMaxRetries),
		RateLimit:       v.GetFloat64(KeyRateLimit),
		ProxyMode:       strings.ToLower(v.GetString(KeyProxyMode)),
		ProxyURL:        v.GetString(KeyProxyURL),
		NoProxy:         v.GetString(KeyNoProxy),
	}
	if s.Profile == "" {
		s.Profile = DefaultProfile
	}
	if s.CredentialsFile == "" {
		s.CredentialsFile = DefaultCredentialsPath()
	}
	if s.ProxyMode == "" {
		s.ProxyMode = ProxyModeNone
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks value ranges and proxy consistency.
func (s *Settings) Validate() error {
	if s.Timeout < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyTimeout, s.Timeout)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyMaxRetries, s.MaxRetries)
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("%s must not be negative, got %g", KeyRateLimit, s.RateLimit)
	}
	if s.APIURL != "" {
		u, err := url.Parse(s.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", KeyAPIURL, s.APIURL)
		}
		if strings.TrimSuffix(u.Path, "/") != "" || u.RawQuery != "" {
			return fmt.Errorf("%s must not have a path or query, got %q", KeyAPIURL, s.APIURL)
		}
	}

	switch s.ProxyMode {
	case ProxyModeNone, ProxyModeSystem:
	case ProxyModeBasic, ProxyModeNTLM:
		if s.ProxyURL == "" {
			return fmt.Errorf("proxy mode %s requires %s", s.ProxyMode, KeyProxyURL)
		}
		if _, err := s.ParsedProxyURL(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported proxy mode: %s", s.ProxyMode)
	}
	return nil
}

// ParsedProxyURL parses ProxyURL. A URL without a scheme is taken as
// http://host[:port]; a missing port defaults to 8080.
func (s *Settings) ParsedProxyURL() (*url.URL, error) {
	raw := s.ProxyURL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid %s %q", KeyProxyURL, s.ProxyURL)
	}
	if u.Port() == "" {
		u.Host = u.Host + ":8080"
	}
	return u, nil
}
