// Package config loads the sheetrelay server configuration.
package config

import (
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/elbader17/sheetrelay/pkg/database"
	"github.com/elbader17/sheetrelay/pkg/gsheet"
)

// Config represents the server configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig represents the HTTP listener configuration
type ServerConfig struct {
	Address string `yaml:"address" validate:"required"`
}

// CredentialsConfig selects where the service account record is read from
type CredentialsConfig struct {
	Source  string        `yaml:"source" validate:"oneof=file env keyring"`
	File    string        `yaml:"file" validate:"required_if=Source file"`
	Env     string        `yaml:"env" validate:"required_if=Source env"`
	Keyring KeyringConfig `yaml:"keyring"`
}

// KeyringConfig represents a keyring-backed credential store
type KeyringConfig struct {
	Service     string `yaml:"service"`
	Key         string `yaml:"key"`
	Backend     string `yaml:"backend" validate:"omitempty,oneof=file"`
	Dir         string `yaml:"dir"`
	PasswordEnv string `yaml:"password_env"`
}

// DatabaseConfig represents how relay targets are dialed
type DatabaseConfig struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gt=0"`
	DefaultPort    int           `yaml:"default_port" validate:"gt=0,lte=65535"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"` // "json" or "console"
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "0.0.0.0:5000",
		},
		Credentials: CredentialsConfig{
			Source: "file",
			File:   "rsa.json",
			Env:    "GOOGLE_SERVICE_ACCOUNT_JSON",
			Keyring: KeyringConfig{
				Service:     "sheetrelay",
				Key:         "service-account",
				PasswordEnv: "SHEETRELAY_KEYRING_PASSWORD",
			},
		},
		Database: DatabaseConfig{
			ConnectTimeout: database.DefaultConnectTimeout,
			DefaultPort:    database.DefaultPort,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from a file. Keys absent from the file keep
// their defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// ConnectorOptions returns the database connector settings.
func (c *Config) ConnectorOptions() database.ConnectorOptions {
	return database.ConnectorOptions{
		ConnectTimeout: c.Database.ConnectTimeout,
		DefaultPort:    c.Database.DefaultPort,
	}
}

// NewSource builds the credential source selected by c.
func (c CredentialsConfig) NewSource() (gsheet.Source, error) {
	switch c.Source {
	case "file":
		return gsheet.FileSource{Path: c.File}, nil
	case "env":
		return gsheet.EnvSource{Variable: c.Env}, nil
	case "keyring":
		source, err := gsheet.OpenKeyringSource(gsheet.KeyringConfig{
			ServiceName: c.Keyring.Service,
			Key:         c.Keyring.Key,
			Backend:     c.Keyring.Backend,
			FileDir:     c.Keyring.Dir,
			Password:    os.Getenv(c.Keyring.PasswordEnv),
		})
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		return nil, errors.Errorf("unknown credential source %q", c.Source)
	}
}
