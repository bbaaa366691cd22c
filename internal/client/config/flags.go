package config

import (
	"flag"
	"io"

	"github.com/tackernao0522/demochat-client/internal/flagx"
)

var knownFlags = []string{
	"-api", "-cable", "-channel", "-env", "-encryption",
	"-log-level", "-log-backend", "-storage", "-storage-path",
	"-timeout", "-reconnect-attempts", "-listen",
}

// parseFlags overlays Config with command-line flags. Arguments it does not
// know about (e.g. -c) are filtered out first.
//
//	-api string                 API base URL
//	-cable string               ActionCable URL
//	-channel string             channel class name
//	-env string                 development | production | test
//	-encryption string          cryptojs | gcm | off
//	-log-level string           debug | info | warn | error
//	-log-backend string         slog | zap
//	-storage string             sqlite | memory
//	-storage-path string        sqlite file for the session records
//	-timeout duration           HTTP request timeout
//	-reconnect-attempts int     consecutive disconnects before going offline
//	-listen string              gateway listen address
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("demochat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "API base URL")
	fs.StringVar(&cfg.CableURL, "cable", cfg.CableURL, "ActionCable URL")
	fs.StringVar(&cfg.Channel, "channel", cfg.Channel, "channel class name")
	fs.StringVar(&cfg.NodeEnv, "env", cfg.NodeEnv, "environment")
	fs.StringVar(&cfg.Encryption, "encryption", cfg.Encryption, "session encryption scheme")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "log backend")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "session storage medium")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "session storage file")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	fs.IntVar(&cfg.ReconnectMaxAttempts, "reconnect-attempts", cfg.ReconnectMaxAttempts, "reconnect bound")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "gateway listen address")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
