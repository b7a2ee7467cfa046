package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	HTTP     HTTPConfig     `toml:"http"`
	Logging  LoggingConfig  `toml:"logging"`
	UI       UIConfig       `toml:"ui"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ServerConfig selects the REST backend the terminal UI talks to.
// An empty URL starts an embedded backend on a loopback port.
type ServerConfig struct {
	URL string `toml:"url"`
}

type HTTPConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type UIConfig struct {
	PerPage           int    `toml:"per_page"`
	KanbanFetchCap    int    `toml:"kanban_fetch_cap"`
	HistoryPeriodDays int    `toml:"history_period_days"`
	NoticeSeconds     int    `toml:"notice_seconds"`
	Locale            string `toml:"locale"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		HTTP: HTTPConfig{
			Bind:        "127.0.0.1:8080",
			APIEndpoint: "/api",
			MCPEndpoint: "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".agenda/log",
			},
		},
		UI: UIConfig{
			PerPage:           10,
			KanbanFetchCap:    1000,
			HistoryPeriodDays: 30,
			NoticeSeconds:     3,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if raw := strings.TrimSpace(c.Server.URL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid server.url %q: %w", raw, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid server.url %q: scheme must be http or https", raw)
		}
		if parsed.Host == "" {
			return fmt.Errorf("invalid server.url %q: host is required", raw)
		}
	}

	if strings.TrimSpace(c.HTTP.Bind) == "" {
		return errors.New("http.bind is required")
	}
	api := strings.Trim(strings.TrimSpace(c.HTTP.APIEndpoint), "/")
	mcp := strings.Trim(strings.TrimSpace(c.HTTP.MCPEndpoint), "/")
	if api != "" && api == mcp {
		return fmt.Errorf("http.api_endpoint and http.mcp_endpoint must differ: %q", c.HTTP.APIEndpoint)
	}

	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if c.UI.PerPage < 1 || c.UI.PerPage > 1000 {
		return fmt.Errorf("ui.per_page must be between 1 and 1000: %d", c.UI.PerPage)
	}
	if c.UI.KanbanFetchCap < 1 || c.UI.KanbanFetchCap > 1000 {
		return fmt.Errorf("ui.kanban_fetch_cap must be between 1 and 1000: %d", c.UI.KanbanFetchCap)
	}
	if c.UI.HistoryPeriodDays < 0 {
		return fmt.Errorf("ui.history_period_days must be >= 0: %d", c.UI.HistoryPeriodDays)
	}
	if c.UI.NoticeSeconds < 1 || c.UI.NoticeSeconds > 60 {
		return fmt.Errorf("ui.notice_seconds must be between 1 and 60: %d", c.UI.NoticeSeconds)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return out, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
