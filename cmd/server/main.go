package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/moviekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/server"
	"github.com/dmitrijs2005/moviekeeper/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
