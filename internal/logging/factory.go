package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Options selects the backend, level and output of a Logger.
type Options struct {
	Backend    string
	Level      string
	Production bool
	Output     io.Writer
}

// ResolveLevel returns the effective level name: a valid explicit level
// wins, otherwise production logs errors only and everything else logs debug.
func ResolveLevel(level string, production bool) string {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "debug", "info", "warn", "error":
		return l
	}
	if production {
		return "error"
	}
	return "debug"
}

// New builds a Logger from opts.
func New(opts Options) (Logger, error) {
	level := ResolveLevel(opts.Level, opts.Production)
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	switch opts.Backend {
	case "", BackendSlog:
		var sl slog.Level
		if err := sl.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
		h := slog.NewTextHandler(opts.Output, &slog.HandlerOptions{Level: sl})
		return NewSlogLogger(slog.New(h)), nil

	case BackendZap:
		zl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		encCfg := zap.NewDevelopmentEncoderConfig()
		if opts.Production {
			encCfg = zap.NewProductionEncoderConfig()
		}
		var enc zapcore.Encoder = zapcore.NewConsoleEncoder(encCfg)
		if opts.Production {
			enc = zapcore.NewJSONEncoder(encCfg)
		}
		core := zapcore.NewCore(enc, zapcore.AddSync(opts.Output), zl)
		return NewZapLogger(zap.New(core)), nil

	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}
