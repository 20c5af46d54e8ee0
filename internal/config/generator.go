package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/fbox/internal/logfields"
)

// BoxEnvFile is the per-user defaults file read by the generator.
const BoxEnvFile = ".box.env"

// GeneratorDefaults are the per-user defaults for `fbox generate`.
type GeneratorDefaults struct {
	Server      string `env:"SERVER" envDefault:"www-data@feinheit04.nine.ch"`
	ProjectName string `env:"BOX_PROJECT_NAME" envDefault:"box"`
	Destination string `env:"BOX_DESTINATION"`
	Template    string `env:"BOX_TEMPLATE"`

	// Loaded is the defaults file that was read, empty when there was none.
	Loaded string
}

// LoadGeneratorDefaults loads home/.box.env into the process environment
// (variables already set win) and parses the defaults from it.
func LoadGeneratorDefaults(home string) (*GeneratorDefaults, error) {
	var defaults GeneratorDefaults

	if home != "" {
		path := filepath.Join(home, BoxEnvFile)
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			defaults.Loaded = path
			slog.Debug("Loaded generator defaults", logfields.Path(path))
		}
	}

	if err := ParseEnv(&defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}
