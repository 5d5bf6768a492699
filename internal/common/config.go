// Package common provides shared utilities for Apexrank
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Apexrank
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Collect     CollectConfig `toml:"collect"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	DataPath  string `toml:"data_path"` // raw file writes (trend charts)
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Quotes QuotesConfig `toml:"quotes"`
	Logo   LogoConfig   `toml:"logo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// QuotesConfig holds market-data provider configuration
type QuotesConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *QuotesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// LogoConfig holds image-lookup provider configuration
type LogoConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *LogoConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// CollectConfig holds ranking collection configuration
type CollectConfig struct {
	TopN            int    `toml:"top_n"`
	BatchSize       int    `toml:"batch_size"`
	BatchPause      string `toml:"batch_pause"`
	PageCacheTTL    string `toml:"page_cache_ttl"`
	RankingInterval string `toml:"ranking_interval"`
	PriceInterval   string `toml:"price_interval"`
}

// GetBatchPause parses and returns the inter-batch pause duration
func (c *CollectConfig) GetBatchPause() time.Duration {
	d, err := time.ParseDuration(c.BatchPause)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// GetPageCacheTTL parses and returns the harvest page cache TTL
func (c *CollectConfig) GetPageCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.PageCacheTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// GetRankingInterval parses and returns the full ranking run interval
func (c *CollectConfig) GetRankingInterval() time.Duration {
	d, err := time.ParseDuration(c.RankingInterval)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

// GetPriceInterval parses and returns the daily price refresh interval
func (c *CollectConfig) GetPriceInterval() time.Duration {
	d, err := time.ParseDuration(c.PriceInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Namespace: "apexrank",
			Database:  "apexrank",
			Username:  "root",
			Password:  "root",
			DataPath:  "data",
		},
		Clients: ClientsConfig{
			Quotes: QuotesConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "15s",
			},
			Logo: LogoConfig{
				BaseURL: "https://img.logo.dev",
				Timeout: "10s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Collect: CollectConfig{
			TopN:            100,
			BatchSize:       20,
			BatchPause:      "2s",
			PageCacheTTL:    "1h",
			RankingInterval: "720h",
			PriceInterval:   "24h",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("APEXRANK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("APEXRANK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("APEXRANK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("APEXRANK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("APEXRANK_DB_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if user := os.Getenv("APEXRANK_DB_USER"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("APEXRANK_DB_PASS"); pass != "" {
		config.Storage.Password = pass
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}

	if token := os.Getenv("LOGODEV_TOKEN"); token != "" {
		config.Clients.Logo.Token = token
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
