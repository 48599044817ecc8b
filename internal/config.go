package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/adrkit/internal/record"
	"github.com/starford/adrkit/internal/sequence"
	"github.com/starford/adrkit/internal/template"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Repo    RepoConfig        `yaml:"repo"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Auth    AuthConfig        `yaml:"auth"`
	Records RecordsConfig     `yaml:"records"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Repo.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Records.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// Defaults returns the request defaults derived from the repo and records
// sections.
func (c *Config) Defaults() record.Defaults {
	return record.Defaults{
		Dir:       c.Repo.Dir,
		IndexFile: c.Repo.IndexFile,
		Template:  c.Records.Template,
		Strategy:  c.Records.Strategy,
		Status:    c.Records.Status,
	}
}

// CatalogPath returns the catalog database path. Relative paths are
// resolved against the repository root.
func (c *Config) CatalogPath() string {
	if filepath.IsAbs(c.Catalog.Path) {
		return c.Catalog.Path
	}
	return filepath.Join(c.Repo.Root, c.Catalog.Path)
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

// RepoConfig locates the repository and its decision log. An empty Dir
// means auto-detection; an empty IndexFile means README.md or index.md
// inside the decision log directory.
type RepoConfig struct {
	Root      string `yaml:"root"`
	Dir       string `yaml:"dir"`
	IndexFile string `yaml:"index_file"`
}

// Validate validates the repository configuration.
func (c *RepoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// CatalogConfig holds the SQLite catalog configuration.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RecordsConfig holds defaults for new records.
type RecordsConfig struct {
	Template string `yaml:"template"`
	Strategy string `yaml:"strategy"`
	Status   string `yaml:"status"`
}

// Validate validates the records configuration.
func (c *RecordsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Template, validation.In(template.Simple, template.MADR)),
		validation.Field(&c.Strategy, validation.In(string(sequence.Auto), string(sequence.Number), string(sequence.Slug))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
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
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
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
		Repo: RepoConfig{
			Root: ".",
		},
		Catalog: CatalogConfig{
			Path: ".adrkit/catalog.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Records: RecordsConfig{
			Template: template.Simple,
			Strategy: string(sequence.Auto),
			Status:   record.DefaultStatus,
		},
	}
}
