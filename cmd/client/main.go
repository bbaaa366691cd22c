package main

import (
	"context"
	"log"
	"os"

	"github.com/tackernao0522/demochat-client/internal/buildinfo"
	"github.com/tackernao0522/demochat-client/internal/client/cli"
	"github.com/tackernao0522/demochat-client/internal/client/config"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
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

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
