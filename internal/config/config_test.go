package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.SQLitePath != "data/cryptoscout.db" {
		t.Errorf("SQLitePath = %q", cfg.Database.SQLitePath)
	}
	if cfg.LLM.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", cfg.LLM.TimeoutSeconds)
	}
	if cfg.Scanner.ListedWithinDays != 7 {
		t.Errorf("ListedWithinDays = %d, want 7", cfg.Scanner.ListedWithinDays)
	}
	if cfg.Schedule.ScanCron != "0 0 */6 * * *" {
		t.Errorf("ScanCron = %q", cfg.Schedule.ScanCron)
	}
	if cfg.Telegram.AlertThreshold != 8.0 {
		t.Errorf("AlertThreshold = %v, want 8.0", cfg.Telegram.AlertThreshold)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
llm:
  timeout_seconds: 45
  backends:
    - id: gpt
      model: gpt-4o-mini
      temperature: 0.2
    - id: local
      type: ollama
      base_url: http://localhost:11434
      model: llama3.1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.TimeoutSeconds != 45 {
		t.Errorf("TimeoutSeconds = %d, want 45", cfg.LLM.TimeoutSeconds)
	}
	if len(cfg.LLM.Backends) != 2 {
		t.Fatalf("backends = %d, want 2", len(cfg.LLM.Backends))
	}
	if cfg.LLM.Backends[1].Type != "ollama" {
		t.Errorf("backend type = %q", cfg.LLM.Backends[1].Type)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  enabled: true
  bot_token: from-file
  chat_id: "123"
llm:
  backends:
    - id: gpt
      model: gpt-4o-mini
      api_key_env: TEST_LLM_KEY
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("PORT", "7001")
	t.Setenv("TEST_LLM_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("BotToken = %q, want env override", cfg.Telegram.BotToken)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Port = %d, want 7001", cfg.Server.Port)
	}
	if cfg.LLM.Backends[0].APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want resolved from env", cfg.LLM.Backends[0].APIKey)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no backends", `server: {port: 8080}`},
		{"backend missing id", `
llm:
  backends:
    - model: gpt-4o-mini
`},
		{"backend missing model", `
llm:
  backends:
    - id: gpt
`},
		{"unknown backend type", `
llm:
  backends:
    - id: gpt
      model: m
      type: grpc
`},
		{"telegram enabled without token", `
llm:
  backends:
    - id: gpt
      model: m
telegram:
  enabled: true
  chat_id: "1"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
