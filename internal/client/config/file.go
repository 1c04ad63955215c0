package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/moviekeeper/internal/flagx"
	"github.com/dmitrijs2005/moviekeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Empty values keep
// what is already in Config.
type FileConfig struct {
	DBPath              string         `json:"db_path" yaml:"db_path"`
	KeySource           string         `json:"key_source" yaml:"key_source"`
	KeyFile             string         `json:"key_file" yaml:"key_file"`
	RemoteMode          string         `json:"remote_mode" yaml:"remote_mode"`
	ServerEndpointAddr  string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	AccessToken         string         `json:"access_token" yaml:"access_token"`
	S3                  *FileS3        `json:"s3" yaml:"s3"`
	LogoutDebounce      timex.Duration `json:"logout_debounce" yaml:"logout_debounce"`
	RemoteTimeout       timex.Duration `json:"remote_timeout" yaml:"remote_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
	LogFormat           string         `json:"log_format" yaml:"log_format"`
}

type FileS3 struct {
	Region       string `json:"region" yaml:"region"`
	BaseEndpoint string `json:"base_endpoint" yaml:"base_endpoint"`
	AccessKey    string `json:"access_key" yaml:"access_key"`
	SecretKey    string `json:"secret_key" yaml:"secret_key"`
	Bucket       string `json:"bucket" yaml:"bucket"`
	UsePathStyle *bool  `json:"use_path_style" yaml:"use_path_style"`
}

func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}
	return loadFile(cfg, path)
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.KeySource, fc.KeySource)
	setString(&cfg.KeyFile, fc.KeyFile)
	setString(&cfg.RemoteMode, fc.RemoteMode)
	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.AccessToken, fc.AccessToken)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)

	if fc.LogoutDebounce.Duration != 0 {
		cfg.LogoutDebounce = fc.LogoutDebounce.Duration
	}
	if fc.RemoteTimeout.Duration != 0 {
		cfg.RemoteTimeout = fc.RemoteTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}

	if s := fc.S3; s != nil {
		setString(&cfg.S3.Region, s.Region)
		setString(&cfg.S3.BaseEndpoint, s.BaseEndpoint)
		setString(&cfg.S3.AccessKey, s.AccessKey)
		setString(&cfg.S3.SecretKey, s.SecretKey)
		setString(&cfg.S3.Bucket, s.Bucket)
		if s.UsePathStyle != nil {
			cfg.S3.UsePathStyle = *s.UsePathStyle
		}
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
