package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, "ws://localhost:8000", cfg.WebsocketURL())
	assert.Equal(t, 10, cfg.MaxViews)
	assert.Equal(t, 5, cfg.MaxContexts)
	assert.Equal(t, 10, cfg.TopEdgesStep)
	assert.Equal(t, 1000, cfg.DiffMaxIterations)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://graphs.example.com
max_views: 3
http_timeout: 5s
debug: true
`), 0644))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))
	assert.Equal(t, "https://graphs.example.com", cfg.APIURL)
	assert.Equal(t, "wss://graphs.example.com", cfg.WebsocketURL())
	assert.Equal(t, 3, cfg.MaxViews)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 5, cfg.MaxContexts, "unset keys keep their defaults")
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.loadFile(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_views: [1, 2"), 0644))

	cfg := Default()
	assert.ErrorContains(t, cfg.loadFile(path), "failed to parse config file")
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg Config)
		wantErr string
	}{
		{
			name: "strings",
			env: map[string]string{
				"CALLSCOPE_API_URL":  "http://10.0.0.2:9000",
				"CALLSCOPE_WS_URL":   "ws://10.0.0.3:9001",
				"CALLSCOPE_DATA_DIR": "/tmp/idx",
				"CALLSCOPE_LOG_FILE": "/tmp/cs.log",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "http://10.0.0.2:9000", cfg.APIURL)
				assert.Equal(t, "ws://10.0.0.3:9001", cfg.WebsocketURL())
				assert.Equal(t, "/tmp/idx", cfg.IndexDir())
				assert.Equal(t, "/tmp/cs.log", cfg.LogPath())
			},
		},
		{
			name: "numbers and durations",
			env: map[string]string{
				"CALLSCOPE_MAX_VIEWS":           "4",
				"CALLSCOPE_MAX_CONTEXTS":        "2",
				"CALLSCOPE_TOP_EDGES_STEP":      "25",
				"CALLSCOPE_DIFF_MAX_ITERATIONS": "50",
				"CALLSCOPE_HTTP_TIMEOUT":        "1m",
				"CALLSCOPE_DEBUG":               "true",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 4, cfg.MaxViews)
				assert.Equal(t, 2, cfg.MaxContexts)
				assert.Equal(t, 25, cfg.TopEdgesStep)
				assert.Equal(t, 50, cfg.DiffMaxIterations)
				assert.Equal(t, time.Minute, cfg.HTTPTimeout)
				assert.True(t, cfg.Debug)
			},
		},
		{
			name: "blank values are ignored",
			env:  map[string]string{"CALLSCOPE_API_URL": "  "},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, DefaultAPIURL, cfg.APIURL)
			},
		},
		{
			name:    "bad number",
			env:     map[string]string{"CALLSCOPE_MAX_VIEWS": "many"},
			wantErr: "invalid CALLSCOPE_MAX_VIEWS",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"CALLSCOPE_HTTP_TIMEOUT": "soon"},
			wantErr: "invalid CALLSCOPE_HTTP_TIMEOUT",
		},
		{
			name:    "bad bool",
			env:     map[string]string{"CALLSCOPE_DEBUG": "maybe"},
			wantErr: "invalid CALLSCOPE_DEBUG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			})
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{name: "ftp api", modify: func(c *Config) { c.APIURL = "ftp://host" }, errMsg: "invalid API URL"},
		{name: "no host", modify: func(c *Config) { c.APIURL = "http://" }, errMsg: "invalid API URL"},
		{name: "zero views", modify: func(c *Config) { c.MaxViews = 0 }, errMsg: "max views must be positive"},
		{name: "negative iterations", modify: func(c *Config) { c.DiffMaxIterations = -1 }, errMsg: "diff max iterations"},
		{name: "zero timeout", modify: func(c *Config) { c.HTTPTimeout = 0 }, errMsg: "http timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://from-file:8000\nmax_views: 7\n"), 0644))

	t.Setenv("CALLSCOPE_CONFIG", path)
	t.Setenv("CALLSCOPE_MAX_VIEWS", "2")
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8000", cfg.APIURL)
	assert.Equal(t, 2, cfg.MaxViews, "environment wins over the file")
}

func TestPaths(t *testing.T) {
	t.Setenv("CALLSCOPE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_STATE_HOME", "/state")

	assert.Equal(t, "/cfg/callscope/config.yaml", Path())
	assert.Equal(t, "/state/callscope/callscope.log", Default().LogPath())
}
