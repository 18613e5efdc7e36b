package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/itam/internal/listengine"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	List      ListConfig        `yaml:"list"`
	Inventory InventoryConfig   `yaml:"inventory"`
	Events    EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.SQLite, &c.Auth, &c.List, &c.Inventory, &c.Events} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel    slog.Level `yaml:"log_level"`
	HTTP        HTTPConfig `yaml:"http"`
	CORSOrigins []string   `yaml:"cors_origins"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.CORSOrigins, validation.Each(validation.Required)),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// BasePath is the prefix the REST API is mounted under; empty mounts it
	// at the root.
	BasePath string `yaml:"base_path"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MountPath returns the normalized API prefix ("/" or "/api").
func (c *HTTPConfig) MountPath() string {
	p := strings.TrimRight(c.BasePath, "/")
	if p == "" {
		return "/"
	}
	return p
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.BasePath, validation.When(c.BasePath != "",
			validation.By(func(any) error {
				if !strings.HasPrefix(c.BasePath, "/") {
					return fmt.Errorf("must start with /")
				}
				return nil
			}))),
	)
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
//   - "disabled": every request runs as the system administrator, suitable
//     for local dev.
//   - "token" (default): users log in at /token and send the issued Bearer
//     token; tokens expire after TokenTTL.
//
// When Bootstrap is set and the users table is empty, an admin account is
// created at startup.
type AuthConfig struct {
	Mode      string          `yaml:"mode"`
	TokenTTL  time.Duration   `yaml:"token_ttl"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

// BootstrapConfig names the first administrator account.
type BootstrapConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeToken
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
		validation.Field(&c.TokenTTL, validation.Min(time.Minute)),
	); err != nil {
		return err
	}
	if c.Bootstrap.Username != "" && len(c.Bootstrap.Password) < 4 {
		return fmt.Errorf("auth: bootstrap password for %q must be at least 4 characters", c.Bootstrap.Username)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ListConfig holds list paging configuration for the REST API.
type ListConfig struct {
	PageSize int `yaml:"page_size"`
}

// Validate validates the list configuration.
func (c *ListConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(500)),
	)
}

// InventoryConfig holds the YAML manifest drop directory.
type InventoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the inventory configuration.
func (c *InventoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// EventsConfig holds SSE configuration.
type EventsConfig struct {
	StatsThrottle time.Duration `yaml:"stats_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StatsThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8000,
			},
			CORSOrigins: []string{"http://localhost:3000"},
		},
		SQLite: SQLiteConfig{
			Path: "./itam.db",
		},
		Auth: AuthConfig{
			Mode:     AuthModeToken,
			TokenTTL: 24 * time.Hour,
		},
		List: ListConfig{
			PageSize: listengine.DefaultPageSize,
		},
		Inventory: InventoryConfig{
			Path: "./inventory",
		},
		Events: EventsConfig{
			StatsThrottle: 2 * time.Second,
		},
	}
}
