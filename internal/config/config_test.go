package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.HTTP != def.HTTP {
		t.Errorf("HTTP = %+v, want %+v", cfg.HTTP, def.HTTP)
	}
	if cfg.Browser.Driver != DriverMemory {
		t.Errorf("Browser.Driver = %q, want %q", cfg.Browser.Driver, DriverMemory)
	}
	if cfg.Browser.NewTabURL != "chrome://newtab/" {
		t.Errorf("Browser.NewTabURL = %q", cfg.Browser.NewTabURL)
	}
	if cfg.DisabledTools != nil {
		t.Errorf("DisabledTools = %v, want nil", cfg.DisabledTools)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{
		"db_max_open_conns": 1,
		"http": {"port": 9001},
		"browser": {"driver": "CDP", "cdp_url": "ws://127.0.0.1:9222", "headless": true}
	}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", cfg.DBMaxOpenConns)
	}
	if cfg.HTTP.Port != 9001 {
		t.Errorf("HTTP.Port = %d, want 9001", cfg.HTTP.Port)
	}
	if cfg.HTTP.Bind != "127.0.0.1" {
		t.Errorf("HTTP.Bind = %q, want default to survive partial section", cfg.HTTP.Bind)
	}
	if cfg.Browser.Driver != DriverCDP {
		t.Errorf("Browser.Driver = %q, want %q (normalized)", cfg.Browser.Driver, DriverCDP)
	}
	if cfg.Browser.CDPURL != "ws://127.0.0.1:9222" {
		t.Errorf("Browser.CDPURL = %q", cfg.Browser.CDPURL)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless = false, want true")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"http": {"port": 9001}}`)
	t.Setenv("TABPROFILE_HTTP_PORT", "9100")
	t.Setenv("TABPROFILE_BROWSER_NEW_TAB_URL", "about:blank")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Port != 9100 {
		t.Errorf("HTTP.Port = %d, want 9100 from env", cfg.HTTP.Port)
	}
	if cfg.Browser.NewTabURL != "about:blank" {
		t.Errorf("Browser.NewTabURL = %q, want about:blank from env", cfg.Browser.NewTabURL)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"browser": {"driver": "firefox"}}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error for unknown driver, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"disabled_tools": ["profile_import", " profile_export ", "profile_import", ""]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools = %v, want 2 entries", cfg.DisabledTools)
	}
	if cfg.DisabledTools[0] != "profile_import" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "profile_import")
	}
	if cfg.DisabledTools[1] != "profile_export" {
		t.Errorf("DisabledTools[1] = %q, want %q", cfg.DisabledTools[1], "profile_export")
	}
}

func TestHTTPConfig_Addr(t *testing.T) {
	h := HTTPConfig{Bind: "0.0.0.0", Port: 8080}
	if got := h.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:8080")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "cdp driver", mutate: func(c *Config) { c.Browser.Driver = DriverCDP }},
		{name: "zero port", mutate: func(c *Config) { c.HTTP.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.HTTP.Port = 70000 }, wantErr: true},
		{name: "blank new tab url", mutate: func(c *Config) { c.Browser.NewTabURL = "  " }, wantErr: true},
		{name: "empty driver", mutate: func(c *Config) { c.Browser.Driver = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
