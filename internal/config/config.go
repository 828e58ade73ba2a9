package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SignalDesk/internal/model"
	"SignalDesk/internal/strategy"
)

const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Enabled  bool   `yaml:"enabled"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL     string `yaml:"base_url"`
		NewsURL     string `yaml:"news_url"`
		APIKey      string `yaml:"api_key"`
		NewsAPIKey  string `yaml:"news_api_key"`
		DefaultCoin string `yaml:"default_coin"`
		TopLimit    int    `yaml:"top_limit"`
		Mock        bool   `yaml:"mock"`
	} `yaml:"data_source"`
	Cache struct {
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		TTLSeconds    int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		NewsCron    string `yaml:"news_cron"`
	} `yaml:"schedule"`
	Prefs struct {
		StateFile   string   `yaml:"state_file"`
		DefaultTier string   `yaml:"default_tier"`
		Watchlist   []string `yaml:"watchlist"`
	} `yaml:"prefs"`
	Strategy strategy.Params `yaml:"strategy"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, loads .env if present, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("TELEGRAM_ENABLED"); v != "" {
		c.Telegram.Enabled = v == "true"
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("CRYPTOCOMPARE_API_KEY"); v != "" {
		c.DataSource.NewsAPIKey = v
	}
	if v := os.Getenv("USE_MOCK_DATA"); v != "" {
		c.DataSource.Mock = v == "true"
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("RISK_TIER"); v != "" {
		c.Prefs.DefaultTier = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Prefs.Watchlist = splitList(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLSeconds = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.DefaultCoin == "" {
		c.DataSource.DefaultCoin = "bitcoin"
	}
	if c.DataSource.TopLimit == 0 {
		c.DataSource.TopLimit = 50
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 60
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */15 * * * *"
	}
	if c.Prefs.StateFile == "" {
		c.Prefs.StateFile = "data/prefs.json"
	}
	if c.Prefs.DefaultTier == "" {
		c.Prefs.DefaultTier = string(model.TierMedium)
	}
	if c.Prefs.Watchlist == nil {
		c.Prefs.Watchlist = []string{c.DataSource.DefaultCoin}
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/signaldesk.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	c.Strategy = c.Strategy.WithDefaults()
}

// Tier returns the configured default tier.
func (c *Config) Tier() model.RiskTier {
	t, err := model.ParseRiskTier(c.Prefs.DefaultTier)
	if err != nil {
		return model.TierMedium
	}
	return t
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	if _, err := model.ParseRiskTier(c.Prefs.DefaultTier); err != nil {
		return fmt.Errorf("prefs.default_tier: %w", err)
	}
	if c.DataSource.TopLimit < 0 || c.DataSource.TopLimit > 250 {
		return fmt.Errorf("data_source.top_limit must be between 1 and 250")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must not be negative")
	}
	s := c.Strategy
	if s.OscillatorWindow < 1 {
		return fmt.Errorf("strategy.oscillator_window must be positive")
	}
	if s.OversoldBelow >= s.OverboughtAbove {
		return fmt.Errorf("strategy.oversold_below must be below overbought_above")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
