package credentials

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadEmpty(t *testing.T) {
	profiles, err := Load(LoadOptions{Path: writeFile(t, "")})
	require.NoError(t, err)
	assert.True(t, profiles.IsEmpty())
	assert.Equal(t, 0, profiles.Len())
}

func TestLoadOne(t *testing.T) {
	path := writeFile(t, `
[default]
R3_ACCESS_KEY_ID=foo
R3_SECRET_ACCESS_KEY=YmFy
`)
	profiles, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	require.Equal(t, 1, profiles.Len())

	creds, err := profiles.Profile("default")
	require.NoError(t, err)
	assert.Equal(t, "foo", creds.AccessKeyID())
	assert.Equal(t, "YmFy", creds.SecretAccessKey())
}

func TestLoadTwo(t *testing.T) {
	path := writeFile(t, `
    [default]
    R3_ACCESS_KEY_ID=foo
    R3_SECRET_ACCESS_KEY=YmFy

    [other]
    R3_ACCESS_KEY_ID=baz
    R3_SECRET_ACCESS_KEY=cXV4
`)
	profiles, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	require.Equal(t, 2, profiles.Len())
	assert.Equal(t, []string{"default", "other"}, profiles.Names())

	def, err := profiles.Profile("default")
	require.NoError(t, err)
	assert.Equal(t, "foo", def.AccessKeyID())
	assert.Equal(t, []byte("bar"), def.Key())

	other, err := profiles.Profile("other")
	require.NoError(t, err)
	assert.Equal(t, "baz", other.AccessKeyID())
	assert.Equal(t, []byte("qux"), other.Key())

	missing, err := profiles.Profile("missing")
	assert.Nil(t, missing)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLoadPaddedSecret(t *testing.T) {
	path := writeFile(t, `
[default]
R3_ACCESS_KEY_ID = foo
R3_SECRET_ACCESS_KEY = YmE=
`)
	profiles, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	creds, err := profiles.Profile("default")
	require.NoError(t, err)
	assert.Equal(t, []byte("ba"), creds.Key())
}

func TestProfileValidatesOnAccess(t *testing.T) {
	path := writeFile(t, `
[broken]
R3_ACCESS_KEY_ID=foo
R3_SECRET_ACCESS_KEY=not-base64!
`)
	// Loading does not validate secrets.
	profiles, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	_, err = profiles.Profile("broken")
	assert.ErrorIs(t, err, ErrInvalidSecretKey)
}

func TestLoadMissingKey(t *testing.T) {
	path := writeFile(t, `
[default]
R3_ACCESS_KEY_ID=foo
`)
	_, err := Load(LoadOptions{Path: path})
	assert.ErrorIs(t, err, ErrParseCredentials)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, ErrReadCredentials)
}

func TestLoadDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir := filepath.Join(home, ".remoteit")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials"),
		[]byte("[default]\nR3_ACCESS_KEY_ID=foo\nR3_SECRET_ACCESS_KEY=YmFy\n"), 0600))

	profiles, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, profiles.Len())
}

func TestTake(t *testing.T) {
	path := writeFile(t, "[default]\nR3_ACCESS_KEY_ID=foo\nR3_SECRET_ACCESS_KEY=YmFy\n")
	profiles, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	creds, err := profiles.Take("default")
	require.NoError(t, err)
	assert.Equal(t, "foo", creds.AccessKeyID())
	assert.True(t, profiles.IsEmpty())

	_, err = profiles.Take("default")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials")

	def, err := New("foo", "YmFy")
	require.NoError(t, err)
	other, err := New("baz", "cXV4YQ==")
	require.NoError(t, err)

	profiles := NewProfiles()
	profiles.Set("default", def)
	profiles.Set("other", other)
	require.NoError(t, profiles.Save(path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "other"}, loaded.Names())

	got, err := loaded.Profile("other")
	require.NoError(t, err)
	assert.Equal(t, "baz", got.AccessKeyID())
	assert.Equal(t, "cXV4YQ==", got.SecretAccessKey())
	assert.Equal(t, []byte("quxa"), got.Key())
}
