package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Remote modes.
const (
	RemoteGRPC   = "grpc"
	RemoteS3     = "s3"
	RemoteMemory = "memory"
)

// S3 holds the settings of the s3 remote mode.
type S3 struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
}

// Config holds runtime settings for the moviekeeper client.
type Config struct {
	DBPath              string
	KeySource           string
	KeyFile             string
	RemoteMode          string
	ServerEndpointAddr  string
	AccessToken         string
	S3                  S3
	LogoutDebounce      time.Duration
	RemoteTimeout       time.Duration
	OnlineCheckInterval time.Duration
	LogLevel            string
	LogFormat           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	dir := defaultDataDir()
	c.DBPath = filepath.Join(dir, "local.db")
	c.KeySource = "device"
	c.KeyFile = filepath.Join(dir, "device.key")
	c.RemoteMode = RemoteGRPC
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.S3 = S3{
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
		Bucket:       "moviekeeper",
		UsePathStyle: true,
	}
	c.LogoutDebounce = time.Second
	c.RemoteTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".moviekeeper"
	}
	return filepath.Join(base, "moviekeeper")
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	switch c.RemoteMode {
	case RemoteGRPC:
		if c.ServerEndpointAddr == "" {
			return fmt.Errorf("grpc mode needs a server address")
		}
	case RemoteS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 mode needs a bucket")
		}
	case RemoteMemory:
	default:
		return fmt.Errorf("unknown remote mode %q", c.RemoteMode)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path is empty")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
