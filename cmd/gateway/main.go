package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tackernao0522/demochat-client/internal/buildinfo"
	"github.com/tackernao0522/demochat-client/internal/client/config"
	"github.com/tackernao0522/demochat-client/internal/gateway"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(logging.Options{
		Backend:    cfg.LogBackend,
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	srv, err := gateway.NewServer(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	initSignalHandler(cancel)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}

func initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}
