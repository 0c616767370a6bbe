package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrMissing is returned when a required setting is not provided.
var ErrMissing = errors.New("missing required configuration")

// Config holds everything a command needs to reach Immich and its database.
// Values come from an optional YAML file and the environment; the environment
// always wins. Secrets are only read from the environment.
type Config struct {
	Immich   ImmichConfig   `yaml:"immich"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ImmichConfig holds the Immich server address and API key.
type ImmichConfig struct {
	ServerAddress string        `yaml:"server_address" env:"IMMICH_SERVER_ADDRESS"`
	APIKey        string        `yaml:"-" env:"IMMICH_API_KEY"`
	PublicURL     string        `yaml:"public_url" env:"IMMICH_PUBLIC_URL"` // base for person links, defaults to ServerAddress
	UserID        string        `yaml:"user_id" env:"IMMICH_USER_ID"`
	Timeout       time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"30s"`
}

// PersonURL returns the web UI link of a person.
func (c *ImmichConfig) PersonURL(personID string) string {
	base := c.PublicURL
	if base == "" {
		base = c.ServerAddress
	}
	return strings.TrimSuffix(base, "/") + "/people/" + personID
}

// PersonLink returns an OSC 8 hyperlink for terminal emulators (iTerm2, etc.)
// Displays the person ID but makes it clickable to open the person page.
func (c *ImmichConfig) PersonLink(personID string) string {
	// OSC 8 hyperlink format: \e]8;;URL\e\\TEXT\e]8;;\e\\
	return "\x1b]8;;" + c.PersonURL(personID) + "\x1b\\" + personID + "\x1b]8;;\x1b\\"
}

// DatabaseConfig holds the connection settings of the Immich Postgres database.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_PATH"` // host or host:port
	Username string `yaml:"username" env:"DB_USERNAME"`
	Password string `yaml:"-" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
}

// DSN builds a postgres:// connection URL. The password is escaped.
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     c.Host,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// LogConfig selects the logger flavor and level.
type LogConfig struct {
	Env   string `yaml:"env" env:"LOG_ENV" env-default:"local"` // local or prod
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the configuration. If path is empty only the environment is used.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the API and database settings are all present.
func (c *Config) Validate() error {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("IMMICH_SERVER_ADDRESS", c.Immich.ServerAddress)
	check("IMMICH_API_KEY", c.Immich.APIKey)
	check("DB_PATH", c.Database.Host)
	check("DB_USERNAME", c.Database.Username)
	check("DB_PASSWORD", c.Database.Password)
	check("DB_NAME", c.Database.Name)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Values returns every setting keyed by its environment variable name.
func (c *Config) Values() map[string]string {
	return map[string]string{
		"IMMICH_SERVER_ADDRESS": c.Immich.ServerAddress,
		"IMMICH_API_KEY":        c.Immich.APIKey,
		"IMMICH_PUBLIC_URL":     c.Immich.PublicURL,
		"IMMICH_USER_ID":        c.Immich.UserID,
		"DB_PATH":               c.Database.Host,
		"DB_USERNAME":           c.Database.Username,
		"DB_PASSWORD":           c.Database.Password,
		"DB_NAME":               c.Database.Name,
	}
}
