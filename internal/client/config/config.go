package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tackernao0522/demochat-client/internal/common"
)

const (
	developmentAPIURL = "http://localhost:3000"
	productionAPIURL  = "https://demochat-api.fly.dev"
)

// Storage media for the session store.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds runtime settings shared by cmd/client and cmd/gateway.
type Config struct {
	APIURL   string
	CableURL string
	Channel  string
	NodeEnv  string

	EncryptionKey string
	Encryption    string

	LogLevel   string
	LogBackend string

	Storage     string
	StoragePath string

	RequestTimeout       time.Duration
	ReconnectMaxAttempts int
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration

	ListenAddr        string
	BasicAuthUsername string
	BasicAuthPassword string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.Channel = "RoomChannel"
	c.NodeEnv = common.EnvDevelopment
	c.Encryption = "cryptojs"
	c.LogBackend = "slog"
	c.Storage = StorageSQLite
	c.StoragePath = "session.db"
	c.RequestTimeout = 10 * time.Second
	c.ReconnectMaxAttempts = 5
	c.ReconnectBaseDelay = time.Second
	c.ReconnectMaxDelay = 30 * time.Second
	c.ListenAddr = ":8080"
}

// IsProduction reports whether NODE_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.NodeEnv), common.EnvProduction)
}

// LoadConfig builds a Config from os.Args and the process environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, JSON, environment and flags from args, then
// resolves derived values and validates the result.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve() error {
	if c.APIURL == "" {
		c.APIURL = developmentAPIURL
		if c.IsProduction() {
			c.APIURL = productionAPIURL
		}
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	if c.CableURL == "" {
		cable, err := CableURLFor(c.APIURL)
		if err != nil {
			return err
		}
		c.CableURL = cable
	}

	switch c.Storage {
	case StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("%w: unknown session storage %q", common.ErrInvalidConfig, c.Storage)
	}
	if c.ReconnectMaxAttempts <= 0 {
		return fmt.Errorf("%w: reconnect attempts must be positive", common.ErrInvalidConfig)
	}
	if c.ReconnectBaseDelay <= 0 || c.ReconnectMaxDelay < c.ReconnectBaseDelay {
		return fmt.Errorf("%w: reconnect delays", common.ErrInvalidConfig)
	}
	return nil
}

// CableURLFor derives the ActionCable endpoint from the API base URL:
// http becomes ws, https becomes wss, and /cable is appended.
func CableURLFor(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("%w: api url: %v", common.ErrInvalidConfig, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: api url scheme %q", common.ErrInvalidConfig, u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/cable"
	return u.String(), nil
}
