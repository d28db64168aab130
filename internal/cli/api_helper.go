package cli

import (
	"fmt"

	"github.com/remoteit/remoteit-go/internal/config"
	rhttp "github.com/remoteit/remoteit-go/internal/http"
	"github.com/remoteit/remoteit-go/pkg/credentials"
	"github.com/remoteit/remoteit-go/pkg/remoteit"
)

// loadSettings resolves settings from flags, environment and settings file.
func loadSettings() (*config.Settings, error) {
	if settings == nil {
		settings = config.NewViper()
	}
	s, err := config.Load(settings)
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// loadCredentials resolves the credentials to sign with.
func loadCredentials(s *config.Settings) (*credentials.Credentials, error) {
	creds, source, err := config.ResolveCredentials(s)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	GetLogger().Debug().
		Str("source", source).
		Str("profile", s.Profile).
		Str("access_key_id", creds.AccessKeyID()).
		Msg("Using credentials")
	return creds, nil
}

// getAPIClient loads settings and credentials and creates an API client.
// This is the standard way to get an API client in CLI commands.
func getAPIClient() (*remoteit.Client, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	creds, err := loadCredentials(s)
	if err != nil {
		return nil, err
	}
	return newAPIClient(s, creds)
}

func newAPIClient(s *config.Settings, creds *credentials.Credentials) (*remoteit.Client, error) {
	zl := GetLogger().Zerolog()

	httpClient, err := rhttp.NewClient(s, zl)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	opts := remoteit.Options{
		HTTPClient: httpClient,
		BaseURL:    s.APIURL,
		MaxRetries: s.MaxRetries,
		Logger:     zl,
	}
	if limiter := rhttp.NewLimiter(s, zl); limiter != nil {
		opts.Limiter = limiter
	}

	client, err := remoteit.New(creds, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}
