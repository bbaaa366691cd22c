package config

import (
	"encoding/json"
	"os"

	"github.com/tackernao0522/demochat-client/internal/flagx"
	"github.com/tackernao0522/demochat-client/internal/timex"
)

// JSONConfig is the on-disk shape of the config file. Only non-zero values
// are copied onto Config.
type JSONConfig struct {
	APIURL               string         `json:"api_url"`
	CableURL             string         `json:"cable_url"`
	Channel              string         `json:"channel"`
	NodeEnv              string         `json:"node_env"`
	EncryptionKey        string         `json:"encryption_key"`
	Encryption           string         `json:"encryption_scheme"`
	LogLevel             string         `json:"log_level"`
	LogBackend           string         `json:"log_backend"`
	Storage              string         `json:"session_storage"`
	StoragePath          string         `json:"session_storage_path"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	ReconnectMaxAttempts int            `json:"reconnect_max_attempts"`
	ReconnectBaseDelay   timex.Duration `json:"reconnect_base_delay"`
	ReconnectMaxDelay    timex.Duration `json:"reconnect_max_delay"`
	ListenAddr           string         `json:"listen_addr"`
	BasicAuthUsername    string         `json:"basic_auth_username"`
	BasicAuthPassword    string         `json:"basic_auth_password"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setString(&cfg.APIURL, jc.APIURL)
	setString(&cfg.CableURL, jc.CableURL)
	setString(&cfg.Channel, jc.Channel)
	setString(&cfg.NodeEnv, jc.NodeEnv)
	setString(&cfg.EncryptionKey, jc.EncryptionKey)
	setString(&cfg.Encryption, jc.Encryption)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.Storage, jc.Storage)
	setString(&cfg.StoragePath, jc.StoragePath)
	setString(&cfg.ListenAddr, jc.ListenAddr)
	setString(&cfg.BasicAuthUsername, jc.BasicAuthUsername)
	setString(&cfg.BasicAuthPassword, jc.BasicAuthPassword)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ReconnectMaxAttempts > 0 {
		cfg.ReconnectMaxAttempts = jc.ReconnectMaxAttempts
	}
	if jc.ReconnectBaseDelay.Duration > 0 {
		cfg.ReconnectBaseDelay = jc.ReconnectBaseDelay.Duration
	}
	if jc.ReconnectMaxDelay.Duration > 0 {
		cfg.ReconnectMaxDelay = jc.ReconnectMaxDelay.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
