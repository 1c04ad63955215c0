package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeTempFile(t, "client.json", `{
		"db_path": "/tmp/mk.db",
		"remote_mode": "s3",
		"logout_debounce": "2s",
		"remote_timeout": 5000000000,
		"s3": {"bucket": "films", "use_path_style": false}
	}`)

	var cfg Config
	cfg.LoadDefaults()
	require.NoError(t, loadFile(&cfg, path))

	want := Config{}
	want.LoadDefaults()
	want.DBPath = "/tmp/mk.db"
	want.RemoteMode = RemoteS3
	want.LogoutDebounce = 2 * time.Second
	want.RemoteTimeout = 5 * time.Second
	want.S3.Bucket = "films"
	want.S3.UsePathStyle = false

	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeTempFile(t, "client.yml", `
key_source: passphrase
key_file: /etc/mk/key.json
access_token: tok
online_check_interval: 10s
log_format: json
s3:
  region: eu-west-1
  access_key: ak
  secret_key: sk
`)

	var cfg Config
	cfg.LoadDefaults()
	require.NoError(t, loadFile(&cfg, path))

	assert.Equal(t, "passphrase", cfg.KeySource)
	assert.Equal(t, "/etc/mk/key.json", cfg.KeyFile)
	assert.Equal(t, "tok", cfg.AccessToken)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.Equal(t, "ak", cfg.S3.AccessKey)
	assert.Equal(t, "moviekeeper", cfg.S3.Bucket, "unset values keep defaults")
	assert.True(t, cfg.S3.UsePathStyle)
}

func TestLoadFile_Errors(t *testing.T) {
	var cfg Config

	err := loadFile(&cfg, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	err = loadFile(&cfg, writeTempFile(t, "bad.json", "{"))
	assert.Error(t, err)

	err = loadFile(&cfg, writeTempFile(t, "bad.yaml", "logout_debounce: soon\n"))
	assert.Error(t, err)
}
