// Package dotenv writes the .env file a generated project reads in local
// development.
package dotenv

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/joho/godotenv"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
)

// FileName is the dotenv file created in the project root.
const FileName = ".env"

// SecretKeyLength is the length of the generated Django SECRET_KEY.
const SecretKeyLength = 50

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Values is the content of a local development .env file.
type Values struct {
	SettingsModule string
	DatabaseURL    string
	CacheURL       string
	SecretKey      string
	SentryDSN      string
	AllowedHosts   string
}

// ForProject builds the local development values for a project.
func ForProject(projectName, databaseLocal, secretKey string) Values {
	return Values{
		SettingsModule: projectName + ".settings.local",
		DatabaseURL:    "postgres://localhost:5432/" + databaseLocal,
		CacheURL:       "hiredis://localhost:6379/1/?key_prefix=" + databaseLocal,
		SecretKey:      secretKey,
		AllowedHosts:   "['*']",
	}
}

// Map returns the variables keyed by name.
func (v Values) Map() map[string]string {
	return map[string]string{
		"DJANGO_SETTINGS_MODULE": v.SettingsModule,
		"DATABASE_URL":           v.DatabaseURL,
		"CACHE_URL":              v.CacheURL,
		"SECRET_KEY":             v.SecretKey,
		"SENTRY_DSN":             v.SentryDSN,
		"ALLOWED_HOSTS":          v.AllowedHosts,
	}
}

// Write replaces path with the given values.
func Write(path string, v Values) error {
	if err := godotenv.Write(v.Map(), path); err != nil {
		return ferrors.FileSystemError("write dotenv", err).WithContext("path", path)
	}
	return nil
}

// RandomString returns n characters drawn uniformly from letters and digits.
// A nil reader uses crypto/rand.
func RandomString(r io.Reader, n int) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	limit := big.NewInt(int64(len(secretAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(r, limit)
		if err != nil {
			return "", fmt.Errorf("random string: %w", err)
		}
		out[i] = secretAlphabet[idx.Int64()]
	}
	return string(out), nil
}
