// Package config loads the per-project task configuration (fbox.yaml) and the
// generator defaults read from ~/.box.env and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
)

// DefaultFileName is the name of the project configuration file.
const DefaultFileName = "fbox.yaml"

// Project holds the settings project tasks need.
type Project struct {
	// ProjectName is the Django project package (e.g. "box").
	ProjectName string `yaml:"project_name" env:"FBOX_PROJECT_NAME"`
	// Domain is the production domain; it is also the remote directory name.
	Domain string `yaml:"domain" env:"FBOX_DOMAIN"`
	// Database is the database name on the server.
	Database string `yaml:"database" env:"FBOX_DATABASE"`
	// DatabaseLocal is the local database name; defaults to Database.
	DatabaseLocal string `yaml:"database_local,omitempty" env:"FBOX_DATABASE_LOCAL"`
	// StaticFiles is the directory holding frontend sources; defaults to <project>/static.
	StaticFiles string `yaml:"staticfiles,omitempty" env:"FBOX_STATICFILES"`
	// Python is the interpreter virtualenv is created with.
	Python string `yaml:"python,omitempty" env:"FBOX_PYTHON"`
	// Host is the ssh destination (user@host) of the production server.
	Host string `yaml:"host,omitempty" env:"FBOX_HOST"`

	Services ServicesConfig `yaml:"services,omitempty"`
}

// ServicesConfig configures the local service preflight checks.
type ServicesConfig struct {
	PostgresDSN string `yaml:"postgres_dsn,omitempty" env:"FBOX_POSTGRES_DSN"`
	RedisAddr   string `yaml:"redis_addr,omitempty" env:"FBOX_REDIS_ADDR"`
	Disabled    bool   `yaml:"disabled,omitempty" env:"FBOX_SKIP_SERVICE_CHECKS"`

	// Retries is the number of extra attempts for a service that is not
	// reachable yet (e.g. a database container still starting).
	Retries      int              `yaml:"retries,omitempty" env:"FBOX_SERVICE_RETRIES"`
	RetryDelay   time.Duration    `yaml:"retry_delay,omitempty" env:"FBOX_SERVICE_RETRY_DELAY"`
	RetryBackoff RetryBackoffMode `yaml:"retry_backoff,omitempty" env:"FBOX_SERVICE_RETRY_BACKOFF"`
}

// RetryBackoffMode selects how the delay between service check attempts grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

const (
	defaultPython      = "python3"
	defaultPostgresDSN = "postgres://localhost:5432/postgres"
	defaultRedisAddr   = "localhost:6379"
)

// Load reads path, expands ${VAR} references, overlays FBOX_* environment
// variables and applies defaults.
func Load(path string) (*Project, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ferrors.ConfigNotFound(path)
	}

	// #nosec G304 -- path is the configuration file chosen by the user.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.Wrap(err, ferrors.CategoryConfig, ferrors.SeverityFatal, "failed to read config file").
			WithContext("path", path)
	}

	var cfg Project
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.Wrap(err, ferrors.CategoryConfig, ferrors.SeverityFatal, "failed to parse config file").
			WithContext("path", path)
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, ferrors.Wrap(err, ferrors.CategoryConfig, ferrors.SeverityFatal, "invalid environment override")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (p *Project) applyDefaults() {
	if p.DatabaseLocal == "" {
		p.DatabaseLocal = p.Database
	}
	if p.StaticFiles == "" && p.ProjectName != "" {
		p.StaticFiles = filepath.ToSlash(filepath.Join(p.ProjectName, "static"))
	}
	if p.Python == "" {
		p.Python = defaultPython
	}
	if p.Services.PostgresDSN == "" {
		p.Services.PostgresDSN = defaultPostgresDSN
	}
	if p.Services.RedisAddr == "" {
		p.Services.RedisAddr = defaultRedisAddr
	}
}

// Validate reports the first missing required field.
func (p *Project) Validate() error {
	switch {
	case p.ProjectName == "":
		return ferrors.ConfigRequired("project_name")
	case p.Domain == "":
		return ferrors.ConfigRequired("domain")
	case p.Database == "":
		return ferrors.ConfigRequired("database")
	case p.Services.Retries < 0:
		return ferrors.ValidationFailed("services.retries", "must not be negative")
	}
	switch p.Services.RetryBackoff {
	case "", RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return ferrors.ValidationFailed("services.retry_backoff", "must be fixed, linear or exponential")
	}
	return nil
}

// ParseEnv overlays environment variables onto target. Fields without a
// matching variable keep their current value.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Find walks up from dir looking for name and returns the directory holding it.
func Find(dir, name string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(abs, name)); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ferrors.ConfigNotFound(name).
				WithContext("searched_from", dir)
		}
		abs = parent
	}
}

// Init writes an example configuration to configPath.
func Init(configPath string, force bool, example Project) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.New(ferrors.CategoryConfig, ferrors.SeverityFatal,
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath))
	}

	if example.ProjectName == "" {
		example.ProjectName = "box"
	}
	if example.Domain == "" {
		example.Domain = "example.com"
	}
	if example.Database == "" {
		example.Database = "example_com"
	}
	if example.Host == "" {
		example.Host = "www-data@example.com"
	}
	if example.Python == "" {
		example.Python = defaultPython
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil { // #nosec G306 -- project config is not secret
		return ferrors.FileSystemError("write config", err).WithContext("path", configPath)
	}
	return nil
}
