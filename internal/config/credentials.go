package config

import (
	"errors"
	"fmt"

	"github.com/remoteit/remoteit-go/pkg/credentials"
)

// Credential sources reported by ResolveCredentials.
const (
	SourceEnvironment     = "environment"
	SourceCredentialsFile = "credentials-file"
)

// ResolveCredentials returns the credentials r3 should sign with and where
// they came from.
//
// Priority (highest to lowest):
//  1. The profile named by --profile, R3_PROFILE or the settings file
//  2. R3_ACCESS_KEY_ID and R3_SECRET_ACCESS_KEY
//  3. The "default" profile of the credentials file
func ResolveCredentials(s *Settings) (*credentials.Credentials, string, error) {
	if !s.ProfileSet {
		creds, err := credentials.FromEnv()
		if err == nil {
			return creds, SourceEnvironment, nil
		}
		if !errors.Is(err, credentials.ErrNoEnvCredentials) {
			return nil, SourceEnvironment, err
		}
	}

	profiles, err := credentials.Load(credentials.LoadOptions{Path: s.CredentialsFile})
	if err != nil {
		return nil, SourceCredentialsFile, err
	}
	creds, err := profiles.Profile(s.Profile)
	if err != nil {
		return nil, SourceCredentialsFile, fmt.Errorf("%s: %w", s.CredentialsFile, err)
	}
	return creds, SourceCredentialsFile, nil
}
