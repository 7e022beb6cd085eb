package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.StorageDriver != DriverFile {
		t.Fatalf("StorageDriver = %q, want %q", cfg.StorageDriver, DriverFile)
	}
	if !cfg.EmbeddedAPI {
		t.Fatalf("EmbeddedAPI = false, want true")
	}
	if cfg.PageLimit != defaultPageLimit || cfg.Theme != "" || cfg.MockBind != defaultMockBind {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	wantStorage := filepath.Join(home, ".local/share/shopfront/storage.toml")
	if cfg.StoragePath != wantStorage {
		t.Fatalf("StoragePath = %q, want %q", cfg.StoragePath, wantStorage)
	}
	wantLog := filepath.Join(home, ".local/share/shopfront/shopfront.log")
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_url = "  http://10.0.0.5:9999/  "
base_path = " /shop "
storage_driver = " SQLite "
log_file = "  ~/logs/client.log  "
log_level = " debug "
page_limit = 50
theme = " Kanagawa "
mock_bind = " 0.0.0.0:8080 "
embedded_api = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://10.0.0.5:9999" {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, "http://10.0.0.5:9999")
	}
	if cfg.BasePath != "/shop" {
		t.Fatalf("BasePath = %q, want /shop", cfg.BasePath)
	}
	if cfg.StorageDriver != DriverSQLite {
		t.Fatalf("StorageDriver = %q, want %q", cfg.StorageDriver, DriverSQLite)
	}
	if !strings.HasPrefix(cfg.StoragePath, home) || !strings.HasSuffix(cfg.StoragePath, "storage.db") {
		t.Fatalf("StoragePath = %q, want storage.db under HOME %q", cfg.StoragePath, home)
	}
	if cfg.LogFile != filepath.Join(home, "logs/client.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
	if cfg.LogLevel != "debug" || cfg.PageLimit != 50 || cfg.Theme != "Kanagawa" || cfg.MockBind != "0.0.0.0:8080" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.EmbeddedAPI {
		t.Fatalf("EmbeddedAPI = true, want false")
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
api_url = "   "
storage_driver = ""
page_limit = 0
theme = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("Load = %+v, want %+v", cfg, want)
	}
}

func TestLoad_ClampsPageLimit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, "page_limit = 500\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PageLimit != maxPageLimit {
		t.Fatalf("PageLimit = %d, want %d", cfg.PageLimit, maxPageLimit)
	}
}

func TestLoad_MemoryDriverHasNoStoragePath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `storage_driver = "memory"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StoragePath != "" {
		t.Fatalf("StoragePath = %q, want empty", cfg.StoragePath)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "invalid toml", body: "api_url = ", want: "parse config"},
		{name: "unknown driver", body: `storage_driver = "redis"`, want: "storage_driver"},
		{name: "bad url", body: `api_url = "localhost:7490"`, want: "api_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("  ~/shop/config.toml  ")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "shop/config.toml") {
		t.Fatalf("expandPath = %q", got)
	}
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath accepted an empty path")
	}
}
