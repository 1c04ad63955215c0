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

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, RemoteGRPC, c.RemoteMode)
	assert.Equal(t, "device", c.KeySource)
	assert.Equal(t, time.Second, c.LogoutDebounce)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "local.db", filepath.Base(c.DBPath))
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "memory", mutate: func(c *Config) { c.RemoteMode = RemoteMemory }},
		{name: "unknown mode", mutate: func(c *Config) { c.RemoteMode = "ftp" }, wantErr: true},
		{name: "grpc without address", mutate: func(c *Config) { c.ServerEndpointAddr = "" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.RemoteMode = RemoteS3; c.S3.Bucket = "" }, wantErr: true},
		{name: "no db path", mutate: func(c *Config) { c.DBPath = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}

func TestLoadConfig_UsesDefaultsWithoutArgs(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd"}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote_mode: memory\nserver_endpoint_addr: 10.0.0.1:1\n"), 0o600))

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path, "-a", "10.0.0.2:2"}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, RemoteMemory, cfg.RemoteMode)
	assert.Equal(t, "10.0.0.2:2", cfg.ServerEndpointAddr)
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-m", "carrier-pigeon"}

	_, err := LoadConfig()
	assert.Error(t, err)
}
