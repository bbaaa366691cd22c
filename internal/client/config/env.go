package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// dotEnvFile is loaded from the working directory when present.
var dotEnvFile = ".env"

type envConfig struct {
	APIURL               string        `env:"API_URL"`
	CableURL             string        `env:"CABLE_URL"`
	Channel              string        `env:"CHANNEL"`
	NodeEnv              string        `env:"NODE_ENV"`
	EncryptionKey        string        `env:"ENCRYPTION_KEY"`
	LegacyEncryptionKey  string        `env:"NUXT_ENV_ENCRYPTION_KEY"`
	Encryption           string        `env:"ENCRYPTION_SCHEME"`
	LogLevel             string        `env:"LOG_LEVEL"`
	LogBackend           string        `env:"LOG_BACKEND"`
	Storage              string        `env:"SESSION_STORAGE"`
	StoragePath          string        `env:"SESSION_STORAGE_PATH"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT"`
	ReconnectMaxAttempts int           `env:"RECONNECT_MAX_ATTEMPTS"`
	ReconnectBaseDelay   time.Duration `env:"RECONNECT_BASE_DELAY"`
	ReconnectMaxDelay    time.Duration `env:"RECONNECT_MAX_DELAY"`
	ListenAddr           string        `env:"LISTEN_ADDR"`
	BasicAuthUsername    string        `env:"BASIC_AUTH_USERNAME"`
	BasicAuthPassword    string        `env:"BASIC_AUTH_PASSWORD"`
}

func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var ec envConfig
	if err := envdecode.Decode(&ec); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return err
	}

	setString(&cfg.APIURL, ec.APIURL)
	setString(&cfg.CableURL, ec.CableURL)
	setString(&cfg.Channel, ec.Channel)
	setString(&cfg.NodeEnv, ec.NodeEnv)
	setString(&cfg.EncryptionKey, ec.LegacyEncryptionKey)
	setString(&cfg.EncryptionKey, ec.EncryptionKey)
	setString(&cfg.Encryption, ec.Encryption)
	setString(&cfg.LogLevel, ec.LogLevel)
	setString(&cfg.LogBackend, ec.LogBackend)
	setString(&cfg.Storage, ec.Storage)
	setString(&cfg.StoragePath, ec.StoragePath)
	setString(&cfg.ListenAddr, ec.ListenAddr)
	setString(&cfg.BasicAuthUsername, ec.BasicAuthUsername)
	setString(&cfg.BasicAuthPassword, ec.BasicAuthPassword)
	if ec.RequestTimeout > 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
	if ec.ReconnectMaxAttempts > 0 {
		cfg.ReconnectMaxAttempts = ec.ReconnectMaxAttempts
	}
	if ec.ReconnectBaseDelay > 0 {
		cfg.ReconnectBaseDelay = ec.ReconnectBaseDelay
	}
	if ec.ReconnectMaxDelay > 0 {
		cfg.ReconnectMaxDelay = ec.ReconnectMaxDelay
	}
	return nil
}
