package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/moviekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/moviekeeper/internal/client/cli"
	"github.com/dmitrijs2005/moviekeeper/internal/client/config"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
