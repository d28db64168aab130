package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remoteit/remoteit-go/pkg/credentials"
)

const twoProfiles = `[default]
R3_ACCESS_KEY_ID=file-default
R3_SECRET_ACCESS_KEY=YmFy

[work]
R3_ACCESS_KEY_ID=file-work
R3_SECRET_ACCESS_KEY=cXV4
`

func credentialsFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte(twoProfiles), 0o600))
	return path
}

func TestResolveCredentialsDefaultProfile(t *testing.T) {
	isolate(t)
	creds, source, err := ResolveCredentials(&Settings{Profile: DefaultProfile, CredentialsFile: credentialsFile(t)})
	require.NoError(t, err)
	assert.Equal(t, SourceCredentialsFile, source)
	assert.Equal(t, "file-default", creds.AccessKeyID())
}

func TestResolveCredentialsEnvironmentBeatsDefaultProfile(t *testing.T) {
	isolate(t)
	t.Setenv(credentials.AccessKeyIDKey, "env-id")
	t.Setenv(credentials.SecretAccessKeyKey, "YmFy")

	creds, source, err := ResolveCredentials(&Settings{Profile: DefaultProfile, CredentialsFile: credentialsFile(t)})
	require.NoError(t, err)
	assert.Equal(t, SourceEnvironment, source)
	assert.Equal(t, "env-id", creds.AccessKeyID())
}

func TestResolveCredentialsExplicitProfileBeatsEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(credentials.AccessKeyIDKey, "env-id")
	t.Setenv(credentials.SecretAccessKeyKey, "YmFy")

	creds, source, err := ResolveCredentials(&Settings{Profile: "work", ProfileSet: true, CredentialsFile: credentialsFile(t)})
	require.NoError(t, err)
	assert.Equal(t, SourceCredentialsFile, source)
	assert.Equal(t, "file-work", creds.AccessKeyID())
	assert.Equal(t, []byte("qux"), creds.Key())
}

func TestResolveCredentialsInvalidEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(credentials.AccessKeyIDKey, "env-id")
	t.Setenv(credentials.SecretAccessKeyKey, "not base64!")

	_, source, err := ResolveCredentials(&Settings{Profile: DefaultProfile, CredentialsFile: credentialsFile(t)})
	assert.ErrorIs(t, err, credentials.ErrInvalidSecretKey)
	assert.Equal(t, SourceEnvironment, source)
}

func TestResolveCredentialsIncompleteEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(credentials.AccessKeyIDKey, "env-id")

	creds, source, err := ResolveCredentials(&Settings{Profile: DefaultProfile, CredentialsFile: credentialsFile(t)})
	assert.ErrorIs(t, err, credentials.ErrIncompleteEnvCredentials)
	assert.Nil(t, creds)
	assert.Equal(t, SourceEnvironment, source)
}

func TestResolveCredentialsMissingProfile(t *testing.T) {
	isolate(t)
	_, _, err := ResolveCredentials(&Settings{Profile: "nope", ProfileSet: true, CredentialsFile: credentialsFile(t)})
	assert.ErrorIs(t, err, credentials.ErrProfileNotFound)
}

func TestResolveCredentialsMissingFile(t *testing.T) {
	isolate(t)
	_, _, err := ResolveCredentials(&Settings{Profile: DefaultProfile, CredentialsFile: filepath.Join(t.TempDir(), "none")})
	assert.ErrorIs(t, err, credentials.ErrReadCredentials)
}
