package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"callscope/internal/logger"
)

const (
	DefaultAPIURL            = "http://localhost:8000"
	DefaultMaxViews          = 10
	DefaultMaxContexts       = 5
	DefaultTopEdgesStep      = 10
	DefaultDiffMaxIterations = 1000
	DefaultHTTPTimeout       = 30 * time.Second
)

// envPrefix prefixes every environment variable read by Load
const envPrefix = "CALLSCOPE_"

// Config holds the settings shared by the callscope binaries
type Config struct {
	APIURL            string        `yaml:"api_url"`
	WSURL             string        `yaml:"ws_url"` // derived from APIURL when empty
	DataDir           string        `yaml:"data_dir"`
	LogFile           string        `yaml:"log_file"`
	Debug             bool          `yaml:"debug"`
	MaxViews          int           `yaml:"max_views"`
	MaxContexts       int           `yaml:"max_contexts"`
	TopEdgesStep      int           `yaml:"top_edges_step"`
	DiffMaxIterations int           `yaml:"diff_max_iterations"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		APIURL:            DefaultAPIURL,
		MaxViews:          DefaultMaxViews,
		MaxContexts:       DefaultMaxContexts,
		TopEdgesStep:      DefaultTopEdgesStep,
		DiffMaxIterations: DefaultDiffMaxIterations,
		HTTPTimeout:       DefaultHTTPTimeout,
	}
}

// Load resolves the settings from, lowest to highest precedence: defaults,
// the YAML config file, a .env file in the working directory and
// CALLSCOPE_* environment variables. Command-line flags are applied by the
// binaries on top of the result.
func Load() (Config, error) {
	cfg := Default()

	if err := cfg.loadFile(Path()); err != nil {
		return cfg, err
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Path returns the config file location: CALLSCOPE_CONFIG or
// $XDG_CONFIG_HOME/callscope/config.yaml
func Path() string {
	if env := os.Getenv(envPrefix + "CONFIG"); env != "" {
		return expandHome(env)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "callscope", "config.yaml")
}

// DefaultLogFile returns $XDG_STATE_HOME/callscope/callscope.log
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, _ := os.UserHomeDir()
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "callscope", "callscope.log")
}

// loadFile merges the YAML file at path into c. A missing file is not an error.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	logger.Debug("config file loaded", "path", path)
	return nil
}

// applyEnv overrides c with the CALLSCOPE_* variables found by lookup
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	for name, dst := range map[string]*string{
		"API_URL":  &c.APIURL,
		"WS_URL":   &c.WSURL,
		"DATA_DIR": &c.DataDir,
		"LOG_FILE": &c.LogFile,
	} {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sDEBUG: %w", envPrefix, err)
		}
		c.Debug = b
	}

	for name, dst := range map[string]*int{
		"MAX_VIEWS":           &c.MaxViews,
		"MAX_CONTEXTS":        &c.MaxContexts,
		"TOP_EDGES_STEP":      &c.TopEdgesStep,
		"DIFF_MAX_ITERATIONS": &c.DiffMaxIterations,
	} {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := get("HTTP_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sHTTP_TIMEOUT: %w", envPrefix, err)
		}
		c.HTTPTimeout = d
	}
	return nil
}

// Validate checks that the settings are usable
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: expected http(s)://host", c.APIURL)
	}
	if c.WSURL != "" {
		u, err := url.Parse(c.WSURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid websocket URL %q", c.WSURL)
		}
	}

	for name, n := range map[string]int{
		"max views":           c.MaxViews,
		"max contexts":        c.MaxContexts,
		"top edges step":      c.TopEdgesStep,
		"diff max iterations": c.DiffMaxIterations,
	} {
		if n <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, n)
		}
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

// WebsocketURL returns the diff channel base URL, derived from the API URL
// when not configured
func (c Config) WebsocketURL() string {
	if c.WSURL != "" {
		return c.WSURL
	}
	switch {
	case strings.HasPrefix(c.APIURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.APIURL, "https://")
	case strings.HasPrefix(c.APIURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.APIURL, "http://")
	}
	return c.APIURL
}

// LogPath returns the configured log file or the default one
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return expandHome(c.LogFile)
	}
	return DefaultLogFile()
}

// IndexDir returns the configured data directory with ~ expanded
func (c Config) IndexDir() string {
	return expandHome(c.DataDir)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
