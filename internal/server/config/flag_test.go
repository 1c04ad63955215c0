package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-t", "5", "-l", "debug", "-o", "text"},
			expected: &Config{
				EndpointAddrGRPC:            "127.0.0.1:9090",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 5 * time.Minute,
				LogLevel:                    "debug",
				LogFormat:                   "text",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-x", "1", "-a", ":1"},
			expected: &Config{
				EndpointAddrGRPC:            ":1",
				AccessTokenValidityDuration: 60 * time.Minute,
			},
		},
		{
			name:    "bad minutes",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{AccessTokenValidityDuration: time.Hour}

			err := parseArgs(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
