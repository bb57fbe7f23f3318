package config

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLRepositoryGetConfig(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg Config
		expErr bool
		errMsg string
	}{
		"A minimal config with just the server should load successfully.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`server: https://dash.example.com
`),
				},
			},
			path: "config.yaml",
			expCfg: Config{
				Server: "https://dash.example.com",
			},
		},

		"A full config should load every field.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`server: https://dash.example.com
token: tkn-123
group: g-42
sync:
  poll_interval: 4s
  reconcile_delay: 300ms
  rate_limit: 5
`),
				},
			},
			path: "config.yaml",
			expCfg: Config{
				Server:         "https://dash.example.com",
				Token:          "tkn-123",
				Group:          "g-42",
				PollInterval:   4 * time.Second,
				ReconcileDelay: 300 * time.Millisecond,
				RateLimit:      5,
			},
		},

		"A missing file should return an error.": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading config file",
		},

		"Invalid YAML should return an error.": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`server: {{}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},

		"A config without server should fail validation.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`token: tkn-123
`),
				},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "server is required",
		},

		"An invalid poll interval should fail.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`server: https://dash.example.com
sync:
  poll_interval: often
`),
				},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "invalid poll_interval duration",
		},

		"A negative reconcile delay should fail.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`server: https://dash.example.com
sync:
  reconcile_delay: -1s
`),
				},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "must not be negative",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			repo := NewYAMLRepository(test.fs)
			cfg, err := repo.GetConfig(context.Background(), test.path)

			if test.expErr {
				require.Error(t, err)
				if test.errMsg != "" {
					assert.Contains(err.Error(), test.errMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(test.expCfg, cfg)
		})
	}
}
