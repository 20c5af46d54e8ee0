package dotenv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForProject(t *testing.T) {
	v := ForProject("box", "example_com", "s3cret")

	assert.Equal(t, "box.settings.local", v.SettingsModule)
	assert.Equal(t, "postgres://localhost:5432/example_com", v.DatabaseURL)
	assert.Equal(t, "hiredis://localhost:6379/1/?key_prefix=example_com", v.CacheURL)
	assert.Equal(t, "s3cret", v.SecretKey)
	assert.Empty(t, v.SentryDSN)
	assert.Equal(t, "['*']", v.AllowedHosts)
}

func TestWrite_RoundTripsThroughGodotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("STALE=1\n"), 0o600))

	want := ForProject("box", "example_com", "abcDEF123")
	require.NoError(t, Write(path, want))

	got, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, want.Map(), got)
	assert.NotContains(t, got, "STALE")
}

func TestWrite_MissingDirectory(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "missing", FileName), Values{})
	require.Error(t, err)
}

func TestRandomString(t *testing.T) {
	s, err := RandomString(nil, SecretKeyLength)
	require.NoError(t, err)
	assert.Len(t, s, SecretKeyLength)
	for _, c := range s {
		assert.True(t, strings.ContainsRune(secretAlphabet, c), "unexpected %q", c)
	}

	other, err := RandomString(nil, SecretKeyLength)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}

func TestRandomString_ReaderExhausted(t *testing.T) {
	_, err := RandomString(bytes.NewReader(nil), 10)
	require.Error(t, err)
}
