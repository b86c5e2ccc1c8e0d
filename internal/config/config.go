package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cryptotrack/internal"
	"cryptotrack/internal/logger"
)

const (
	ModeDesktop = "desktop"
	ModeServer  = "server"
)

type Config struct {
	Mode      string          `yaml:"mode"`
	Log       logger.Config   `yaml:"log"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Server    ServerConfig    `yaml:"server"`
}

type CoinGeckoConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
	HistoryDays int           `yaml:"history_days"`
	DefaultCoin string        `yaml:"default_coin"`
}

type DashboardConfig struct {
	Title           string        `yaml:"title"`
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	FontSize        float64       `yaml:"font_size"`
	VisibleRows     int           `yaml:"visible_rows"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func Default() *Config {
	return &Config{
		Mode: ModeDesktop,
		Log: logger.Config{
			Level:      "info",
			TimeFormat: time.RFC3339,
			Pretty:     true,
		},
		CoinGecko: CoinGeckoConfig{
			BaseURL:     internal.DefaultBaseURL,
			Timeout:     10 * time.Second,
			SnapshotTTL: 60 * time.Second,
			HistoryDays: internal.DefaultHistoryDays,
			DefaultCoin: internal.DefaultCoinName,
		},
		Dashboard: DashboardConfig{
			Title:           "CryptoTrack",
			Width:           1024,
			Height:          640,
			FontSize:        12,
			VisibleRows:     20,
			RefreshInterval: 60 * time.Second,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

// Load reads an optional .env, then the YAML file at path on top of
// Default(), then environment overrides. Missing files are not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		configData, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(configData, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CRYPTOTRACK_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("CRYPTOTRACK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.CoinGecko.BaseURL = v
	}
	if v := os.Getenv("CRYPTOTRACK_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("CRYPTOTRACK_SERVER_PORT"); v != "" {
		c.Server.Port = v
	}
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeDesktop, ModeServer:
	default:
		return fmt.Errorf("invalid mode %q: want %s or %s", c.Mode, ModeDesktop, ModeServer)
	}
	if c.CoinGecko.BaseURL == "" {
		return errors.New("coingecko.base_url is required")
	}
	if c.CoinGecko.Timeout <= 0 {
		return errors.New("coingecko.timeout must be positive")
	}
	if c.CoinGecko.SnapshotTTL <= 0 {
		return errors.New("coingecko.snapshot_ttl must be positive")
	}
	if c.CoinGecko.HistoryDays <= 0 {
		return errors.New("coingecko.history_days must be positive")
	}
	if c.CoinGecko.DefaultCoin == "" {
		return errors.New("coingecko.default_coin is required")
	}
	if c.Dashboard.Width <= 0 || c.Dashboard.Height <= 0 {
		return errors.New("dashboard.width and dashboard.height must be positive")
	}
	if c.Dashboard.FontSize <= 0 {
		return errors.New("dashboard.font_size must be positive")
	}
	if c.Dashboard.VisibleRows <= 0 {
		return errors.New("dashboard.visible_rows must be positive")
	}
	if c.Dashboard.RefreshInterval <= 0 {
		return errors.New("dashboard.refresh_interval must be positive")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	return nil
}
