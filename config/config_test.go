package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/homeworkbot"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvAPIToken, EnvBotToken, EnvChatID, EnvEndpoint, EnvRetryPeriod, EnvRequestTimeout} {
		t.Setenv(name, "")
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIToken, "api-secret")
	t.Setenv(EnvBotToken, "123:bot-secret")
	t.Setenv(EnvChatID, "42")
}

func TestParse_EnvOnly(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.APIToken != "api-secret" {
		t.Errorf("APIToken = %q, want %q", cfg.APIToken, "api-secret")
	}
	if cfg.BotToken != "123:bot-secret" {
		t.Errorf("BotToken = %q, want %q", cfg.BotToken, "123:bot-secret")
	}
	if cfg.ChatID != "42" {
		t.Errorf("ChatID = %q, want %q", cfg.ChatID, "42")
	}

	// check defaults applied
	if cfg.Endpoint != homeworkbot.DefaultEndpoint {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, homeworkbot.DefaultEndpoint)
	}
	if cfg.RetryPeriod.Duration() != 10*time.Minute {
		t.Errorf("RetryPeriod = %v, want 10m", cfg.RetryPeriod.Duration())
	}
	if cfg.RequestTimeout.Duration() != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout.Duration())
	}
	if cfg.StartFrom != nil {
		t.Errorf("StartFrom = %d, want nil", *cfg.StartFrom)
	}
}

func TestParse_MissingVariables(t *testing.T) {
	tests := []struct {
		name        string
		set         map[string]string
		wantMissing []string
	}{
		{
			name:        "nothing set",
			wantMissing: []string{EnvAPIToken, EnvBotToken, EnvChatID},
		},
		{
			name:        "only api token",
			set:         map[string]string{EnvAPIToken: "x"},
			wantMissing: []string{EnvBotToken, EnvChatID},
		},
		{
			name:        "chat id missing",
			set:         map[string]string{EnvAPIToken: "x", EnvBotToken: "y"},
			wantMissing: []string{EnvChatID},
		},
		{
			name:        "whitespace is missing",
			set:         map[string]string{EnvAPIToken: "x", EnvBotToken: "  ", EnvChatID: "1"},
			wantMissing: []string{EnvBotToken},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.set {
				t.Setenv(k, v)
			}

			_, err := Parse(nil)
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want *ConfigurationError", err)
			}
			if !reflect.DeepEqual(cfgErr.Missing, tt.wantMissing) {
				t.Errorf("Missing = %v, want %v", cfgErr.Missing, tt.wantMissing)
			}
			for _, name := range tt.wantMissing {
				if !strings.Contains(err.Error(), name) {
					t.Errorf("error %q should mention %s", err, name)
				}
			}
		})
	}
}

func TestParse_YAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRACTICUM_TOKEN", "from-practicum")
	os.Unsetenv("HOMEWORK_TEST_BOT_TOKEN")

	yaml := `
api_token: ${PRACTICUM_TOKEN}
bot_token: ${HOMEWORK_TEST_BOT_TOKEN:-123:default-bot}
chat_id: "-100200300"
endpoint: https://review.example.com/api/homework_statuses/
retry_period: 5m
request_timeout: 30
start_from: 0
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.APIToken != "from-practicum" {
		t.Errorf("APIToken = %q, want %q", cfg.APIToken, "from-practicum")
	}
	if cfg.BotToken != "123:default-bot" {
		t.Errorf("BotToken = %q, want %q", cfg.BotToken, "123:default-bot")
	}
	if cfg.ChatID != "-100200300" {
		t.Errorf("ChatID = %q, want %q", cfg.ChatID, "-100200300")
	}
	if cfg.Endpoint != "https://review.example.com/api/homework_statuses/" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.RetryPeriod.Duration() != 5*time.Minute {
		t.Errorf("RetryPeriod = %v, want 5m", cfg.RetryPeriod.Duration())
	}
	if cfg.RequestTimeout.Duration() != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout.Duration())
	}
	if cfg.StartFrom == nil || *cfg.StartFrom != 0 {
		t.Errorf("StartFrom = %v, want 0", cfg.StartFrom)
	}
}

func TestParse_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIToken, "env-token")
	t.Setenv(EnvRetryPeriod, "600")
	t.Setenv(EnvEndpoint, "http://localhost:9999/api/")

	yaml := `
api_token: file-token
bot_token: file-bot
chat_id: "7"
retry_period: 1m
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.APIToken != "env-token" {
		t.Errorf("APIToken = %q, want env value", cfg.APIToken)
	}
	if cfg.BotToken != "file-bot" {
		t.Errorf("BotToken = %q, want file value", cfg.BotToken)
	}
	if cfg.RetryPeriod.Duration() != 600*time.Second {
		t.Errorf("RetryPeriod = %v, want 10m", cfg.RetryPeriod.Duration())
	}
	if cfg.Endpoint != "http://localhost:9999/api/" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
}

func TestParse_UnsetFileVariable(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HOMEWORK_TEST_UNSET")

	_, err := Parse([]byte("api_token: ${HOMEWORK_TEST_UNSET}\n"))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *ConfigurationError", err)
	}
	if !strings.Contains(err.Error(), `"HOMEWORK_TEST_UNSET" is not set`) {
		t.Errorf("error = %v", err)
	}
}

func TestParse_InvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		yaml    string
		wantErr string
	}{
		{
			name:    "chat id not numeric",
			env:     map[string]string{EnvChatID: "my-chat"},
			wantErr: "must be an integer or @channel",
		},
		{
			name:    "bad endpoint scheme",
			env:     map[string]string{EnvEndpoint: "ftp://example.com"},
			wantErr: "endpoint scheme must be http or https",
		},
		{
			name:    "retry period too short",
			env:     map[string]string{EnvRetryPeriod: "500ms"},
			wantErr: "retry_period must be at least 1s",
		},
		{
			name:    "retry period garbage",
			env:     map[string]string{EnvRetryPeriod: "often"},
			wantErr: "RETRY_PERIOD: invalid duration",
		},
		{
			name:    "request timeout too short",
			env:     map[string]string{EnvRequestTimeout: "500ms"},
			wantErr: "request_timeout must be at least 1s",
		},
		{
			name:    "negative start",
			yaml:    "start_from: -5\n",
			wantErr: "start_from cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want *ConfigurationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	clearEnv(t)

	_, err := Parse([]byte("retry_period: [not, a, duration]\n"))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v, want 'failed to parse YAML'", err)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bot.yaml")
	content := "api_token: a\nbot_token: b\nchat_id: \"@reviews\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChatID != "@reviews" {
		t.Errorf("ChatID = %q, want %q", cfg.ChatID, "@reviews")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/bot.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error should mention 'failed to read', got: %v", err)
	}
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.APIToken != "api-secret" {
		t.Errorf("APIToken = %q, want %q", cfg.APIToken, "api-secret")
	}
}

func TestConfig_Masked(t *testing.T) {
	cfg := Config{APIToken: "y0_AgAAAAA", BotToken: "abc", ChatID: "42"}
	masked := cfg.Masked()

	if masked.APIToken != "y0_A********" {
		t.Errorf("APIToken = %q, want %q", masked.APIToken, "y0_A********")
	}
	if masked.BotToken != "***" {
		t.Errorf("BotToken = %q, want %q", masked.BotToken, "***")
	}
	if masked.ChatID != "42" {
		t.Errorf("ChatID = %q, want unchanged", masked.ChatID)
	}
	if cfg.APIToken != "y0_AgAAAAA" {
		t.Error("Masked() modified the original config")
	}
}

func TestConfigurationError_Message(t *testing.T) {
	err := &ConfigurationError{Missing: []string{EnvAPIToken}, Err: errors.New("bad chat")}
	want := "missing required environment variables: API_TOKEN; bad chat"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if (&ConfigurationError{}).Error() != "invalid configuration" {
		t.Errorf("empty Error() = %q", (&ConfigurationError{}).Error())
	}
}
