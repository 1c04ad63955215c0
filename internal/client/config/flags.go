package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/flagx"
)

var clientFlags = []string{"-a", "-m", "-d", "-k", "-f", "-t", "-i", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Only the flags listed in clientFlags are looked at; os.Args is filtered
// with flagx.FilterArgs so other components can share it.
func parseFlags(cfg *Config) error {
	return parseArgs(cfg, os.Args[1:])
}

func parseArgs(cfg *Config, raw []string) error {
	args := flagx.FilterArgs(raw, clientFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the document server")
	fs.StringVar(&cfg.RemoteMode, "m", cfg.RemoteMode, "remote mode: grpc, s3 or memory")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.KeySource, "k", cfg.KeySource, "key source: device or passphrase")
	fs.StringVar(&cfg.KeyFile, "f", cfg.KeyFile, "key file path")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
