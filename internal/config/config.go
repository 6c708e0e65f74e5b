package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// BackendConfig describes one LLM council member.
type BackendConfig struct {
	ID        string  `yaml:"id"`
	Type      string  `yaml:"type"` // "openai" (any OpenAI-compatible API, default) or "ollama"
	BaseURL   string  `yaml:"base_url"`
	Model     string  `yaml:"model"`
	APIKey    string  `yaml:"api_key"`
	APIKeyEnv string  `yaml:"api_key_env"` // env var to read when api_key is empty
	Temp      float64 `yaml:"temperature"`
	MaxTokens int     `yaml:"max_tokens"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	LLM struct {
		TimeoutSeconds int             `yaml:"timeout_seconds"`
		Backends       []BackendConfig `yaml:"backends"`
	} `yaml:"llm"`

	Scanner struct {
		ListedWithinDays int `yaml:"listed_within_days"`
	} `yaml:"scanner"`

	Schedule struct {
		ScanCron    string `yaml:"scan_cron"`
		AnalyzeCron string `yaml:"analyze_cron"`
	} `yaml:"schedule"`

	Telegram struct {
		Enabled        bool    `yaml:"enabled"`
		BotToken       string  `yaml:"bot_token"`
		ChatID         string  `yaml:"chat_id"`
		AlertThreshold float64 `yaml:"alert_threshold"`
	} `yaml:"telegram"`

	Archive struct {
		Enabled   bool   `yaml:"enabled"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"archive"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error so the service can
// run from env alone.
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

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	for i := range cfg.LLM.Backends {
		b := &cfg.LLM.Backends[i]
		if b.APIKey == "" && b.APIKeyEnv != "" {
			b.APIKey = os.Getenv(b.APIKeyEnv)
		}
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/cryptoscout.db"
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 30
	}
	if cfg.Scanner.ListedWithinDays == 0 {
		cfg.Scanner.ListedWithinDays = 7
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 0 */6 * * *"
	}
	if cfg.Schedule.AnalyzeCron == "" {
		cfg.Schedule.AnalyzeCron = "0 30 */6 * * *"
	}
	if cfg.Telegram.AlertThreshold == 0 {
		cfg.Telegram.AlertThreshold = 8.0
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.LLM.Backends) == 0 {
		return fmt.Errorf("llm.backends must list at least one backend")
	}
	for i, b := range c.LLM.Backends {
		if b.ID == "" {
			return fmt.Errorf("llm.backends[%d].id is required", i)
		}
		if b.Model == "" {
			return fmt.Errorf("llm.backends[%d].model is required", i)
		}
		switch b.Type {
		case "", "openai", "ollama":
		default:
			return fmt.Errorf("llm.backends[%d].type %q is not supported", i, b.Type)
		}
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Archive.Enabled && c.Archive.Endpoint == "" {
		return fmt.Errorf("archive.endpoint is required when archive is enabled")
	}
	return nil
}
