// Package credentials loads and validates remote.it API credentials.
//
// Credentials are an R3 access key id and a base64 encoded secret access key.
// They usually live in an INI file at ~/.remoteit/credentials with one section
// per profile:
//
//	[default]
//	R3_ACCESS_KEY_ID=...
//	R3_SECRET_ACCESS_KEY=...
//
// If you keep your credentials somewhere else, build them with New.
package credentials

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
)

// Key names used in the credentials file and in the environment.
const (
	AccessKeyIDKey     = "R3_ACCESS_KEY_ID"
	SecretAccessKeyKey = "R3_SECRET_ACCESS_KEY"
)

// Validation errors
var (
	ErrMissingAccessKeyID = errors.New("access key id is required")
	ErrInvalidSecretKey   = errors.New("secret access key is not valid base64")
	ErrNoEnvCredentials   = errors.New("R3_ACCESS_KEY_ID and R3_SECRET_ACCESS_KEY are not set")
	// ErrIncompleteEnvCredentials is returned when only one of the two
	// credential variables is set.
	ErrIncompleteEnvCredentials = errors.New("incomplete environment credentials: both R3_ACCESS_KEY_ID and R3_SECRET_ACCESS_KEY must be set")
)

// Credentials is a validated access key id and secret key pair.
// It is immutable and safe for concurrent use.
type Credentials struct {
	accessKeyID     string
	secretAccessKey string
	key             []byte
}

// New validates secretAccessKey and returns the credentials.
//
// Returns ErrMissingAccessKeyID if accessKeyID is empty and an error wrapping
// ErrInvalidSecretKey if secretAccessKey is not standard base64.
func New(accessKeyID, secretAccessKey string) (*Credentials, error) {
	if accessKeyID == "" {
		return nil, ErrMissingAccessKeyID
	}
	key, err := decodeSecret(secretAccessKey)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
		key:             key,
	}, nil
}

// FromEnv builds credentials from R3_ACCESS_KEY_ID and R3_SECRET_ACCESS_KEY.
func FromEnv() (*Credentials, error) {
	id := os.Getenv(AccessKeyIDKey)
	secret := os.Getenv(SecretAccessKeyKey)
	if id == "" && secret == "" {
		return nil, ErrNoEnvCredentials
	}
	if id == "" || secret == "" {
		return nil, ErrIncompleteEnvCredentials
	}
	return New(id, secret)
}

// AccessKeyID returns the R3 access key id.
func (c *Credentials) AccessKeyID() string {
	return c.accessKeyID
}

// SecretAccessKey returns the secret in its base64 form.
func (c *Credentials) SecretAccessKey() string {
	return c.secretAccessKey
}

// Key returns a copy of the decoded secret, ready for signing.
func (c *Credentials) Key() []byte {
	out := make([]byte, len(c.key))
	copy(out, c.key)
	return out
}

// String hides the secret so credentials can be logged safely.
func (c *Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessKeyID: %s}", c.accessKeyID)
}

func decodeSecret(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecretKey, err)
	}
	return key, nil
}
