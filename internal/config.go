package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lngkit/internal/parser"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Languages LanguagesConfig   `yaml:"languages"`
	Parser    ParserConfig      `yaml:"parser"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
}

type section struct {
	name string
	v    interface{ Validate() error }
}

// Validate validates every section. Errors are prefixed with the YAML
// section name.
func (c *Config) Validate() error {
	for _, s := range []section{
		{"app", &c.App},
		{"languages", &c.Languages},
		{"parser", &c.Parser},
		{"sqlite", &c.SQLite},
		{"auth", &c.Auth},
	} {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LanguagesConfig describes the directory of language files.
//
// Default is the language activated at startup; when empty it is detected
// from LC_ALL, LANG and LANGUAGE.
type LanguagesConfig struct {
	Path      string `yaml:"path"`
	Extension string `yaml:"extension"`
	Default   string `yaml:"default"`
}

// Validate validates the languages configuration.
func (c *LanguagesConfig) Validate() error {
	if c.Extension == "" {
		c.Extension = ".lng"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.By(func(any) error {
			if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
				return fmt.Errorf("must start with a dot, got %q", c.Extension)
			}
			return nil
		})),
	)
}

// ParserConfig tunes the language file parser.
type ParserConfig struct {
	MaxPasses      int  `yaml:"max_passes"`
	LogDiagnostics bool `yaml:"log_diagnostics"`
}

// Validate validates the parser configuration.
func (c *ParserConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxPasses, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// Options returns the parser options for this configuration. logger
// receives parse diagnostics when LogDiagnostics is set.
func (c *ParserConfig) Options(logger *slog.Logger) []parser.Option {
	opts := []parser.Option{parser.WithMaxPasses(c.MaxPasses)}
	if c.LogDiagnostics && logger != nil {
		opts = append(opts, parser.WithLogger(logger))
	}
	return opts
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Languages: LanguagesConfig{
			Path:      "./languages",
			Extension: ".lng",
		},
		Parser: ParserConfig{
			MaxPasses: parser.DefaultMaxPasses,
		},
		SQLite: SQLiteConfig{
			Path: "./lngkit.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
