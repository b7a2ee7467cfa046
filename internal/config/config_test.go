package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/agenda.db")
	if cfg.Database.Path != "/tmp/agenda.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Server.URL != "" {
		t.Fatalf("expected embedded backend by default, got %q", cfg.Server.URL)
	}
	if cfg.UI.PerPage != 10 || cfg.UI.KanbanFetchCap != 1000 || cfg.UI.HistoryPeriodDays != 30 {
		t.Fatalf("unexpected ui defaults %#v", cfg.UI)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/agenda.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/agenda.db"

[server]
url = "http://192.168.0.10:5000/api"

[http]
bind = "0.0.0.0:9090"

[logging]
level = "debug"

[logging.dev_file]
enabled = false

[ui]
per_page = 25
history_period_days = 0
locale = "pt-BR"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/agenda.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Server.URL != "http://192.168.0.10:5000/api" || cfg.HTTP.Bind != "0.0.0.0:9090" {
		t.Fatalf("unexpected server config %#v %#v", cfg.Server, cfg.HTTP)
	}
	if cfg.HTTP.APIEndpoint != "/api" {
		t.Fatalf("expected untouched api endpoint default, got %q", cfg.HTTP.APIEndpoint)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.DevFile.Enabled {
		t.Fatalf("unexpected logging config %#v", cfg.Logging)
	}
	if cfg.UI.PerPage != 25 || cfg.UI.HistoryPeriodDays != 0 || cfg.UI.Locale != "pt-BR" || cfg.UI.NoticeSeconds != 3 {
		t.Fatalf("unexpected ui config %#v", cfg.UI)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"server scheme": "[server]\nurl = \"ftp://host\"\n",
		"server host":   "[server]\nurl = \"http://\"\n",
		"log level":     "[logging]\nlevel = \"loud\"\n",
		"per page":      "[ui]\nper_page = 0\n",
		"kanban cap":    "[ui]\nkanban_fetch_cap = 5000\n",
		"history":       "[ui]\nhistory_period_days = -1\n",
		"notice":        "[ui]\nnotice_seconds = 0\n",
		"endpoints":     "[http]\napi_endpoint = \"/x\"\nmcp_endpoint = \"x/\"\n",
		"bind":          "[http]\nbind = \" \"\n",
		"db path":       "[database]\npath = \"\"\n",
		"bad toml":      "[ui\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default("/tmp/default.db")); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default("/tmp/agenda.db")
	cfg.Server.URL = "http://127.0.0.1:5000/api"
	out, err := Encode(cfg)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(out), "kanban_fetch_cap = 1000") {
		t.Fatalf("expected snake_case keys, got %s", out)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	loaded, err := Load(path, Default("/elsewhere.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded != cfg {
		t.Fatalf("round trip mismatch %#v vs %#v", loaded, cfg)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
