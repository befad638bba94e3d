package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Browser driver names.
const (
	DriverMemory = "memory"
	DriverCDP    = "cdp"
)

// EnvPrefix is the prefix for environment overrides, e.g. TABPROFILE_HTTP_PORT.
const EnvPrefix = "TABPROFILE"

// Config holds application configuration.
type Config struct {
	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `mapstructure:"db_max_open_conns"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `mapstructure:"db_max_idle_conns"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `mapstructure:"disabled_tools"`

	HTTP    HTTPConfig    `mapstructure:"http"`
	Browser BrowserConfig `mapstructure:"browser"`
}

// HTTPConfig configures the HTTP transport and the address CLI commands dial.
type HTTPConfig struct {
	Bind string `mapstructure:"bind"`
	Port int    `mapstructure:"port"`
}

// BrowserConfig selects and configures the window/tab surface.
type BrowserConfig struct {
	// Driver is "memory" (in-process window) or "cdp" (Chrome DevTools Protocol).
	Driver string `mapstructure:"driver"`

	// CDPURL attaches to an already running Chrome (ws:// or http:// debugger URL).
	// Empty launches a local Chrome.
	CDPURL string `mapstructure:"cdp_url"`

	// ExecPath overrides the Chrome binary used when launching.
	ExecPath string `mapstructure:"exec_path"`

	Headless bool `mapstructure:"headless"`

	// NewTabURL is loaded into the anchor tab when a profile has no tabs.
	NewTabURL string `mapstructure:"new_tab_url"`
}

// Addr returns the host:port the HTTP transport listens on.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Bind, h.Port)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Bind: "127.0.0.1",
			Port: 7717,
		},
		Browser: BrowserConfig{
			Driver:    DriverMemory,
			NewTabURL: "chrome://newtab/",
		},
	}
}

// Load loads configuration from baseDir/config.json, then applies
// TABPROFILE_* environment overrides.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tabprofile.
func Load(baseDir string) (*Config, error) {
	return LoadFile(filepath.Join(baseDir, "config.json"))
}

// LoadFile loads configuration from a specific file path.
func LoadFile(configPath string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetDefault("db_max_open_conns", def.DBMaxOpenConns)
	v.SetDefault("db_max_idle_conns", def.DBMaxIdleConns)
	v.SetDefault("disabled_tools", []string{})
	v.SetDefault("http.bind", def.HTTP.Bind)
	v.SetDefault("http.port", def.HTTP.Port)
	v.SetDefault("browser.driver", def.Browser.Driver)
	v.SetDefault("browser.cdp_url", def.Browser.CDPURL)
	v.SetDefault("browser.exec_path", def.Browser.ExecPath)
	v.SetDefault("browser.headless", def.Browser.Headless)
	v.SetDefault("browser.new_tab_url", def.Browser.NewTabURL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DisabledTools = dedupeStrings(cfg.DisabledTools)
	cfg.Browser.Driver = strings.ToLower(strings.TrimSpace(cfg.Browser.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted away.
func (c *Config) Validate() error {
	switch c.Browser.Driver {
	case DriverMemory, DriverCDP:
	default:
		return fmt.Errorf("browser.driver must be one of: %s, %s (got %q)", DriverMemory, DriverCDP, c.Browser.Driver)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	if strings.TrimSpace(c.Browser.NewTabURL) == "" {
		return errors.New("browser.new_tab_url must not be empty")
	}
	return nil
}

// dedupeStrings trims whitespace and removes blanks and duplicates, keeping order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	result := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
