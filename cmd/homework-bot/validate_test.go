package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks the variables the config loader reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"API_TOKEN", "BOT_TOKEN", "CHAT_ID", "HOMEWORK_ENDPOINT", "RETRY_PERIOD", "REQUEST_TIMEOUT"} {
		t.Setenv(name, "")
	}
}

// executeCmd runs the root command with args and returns captured stdout,
// stderr and any error.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunValidate_ValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_TOKEN", "y0_secret_token")
	t.Setenv("BOT_TOKEN", "123456:telegram")

	configPath := filepath.Join(t.TempDir(), "bot.yaml")
	configContent := `
chat_id: "42"
retry_period: 5m
start_from: 0
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	output, _, err := executeCmd(t, "validate", "--config="+configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"API token:       y0_s********",
		"Bot token:       1234********",
		"Chat ID:         42",
		"Retry period:    5m0s",
		"Request timeout: 10s",
		"Start from:      0",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
	if strings.Contains(output, "y0_secret_token") {
		t.Error("output leaks the API token")
	}
}

func TestRunValidate_MissingEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_TOKEN", "x")

	_, _, err := executeCmd(t, "validate", "--config=")
	if err == nil {
		t.Fatal("validate command expected error for missing variables, got nil")
	}

	if !strings.Contains(err.Error(), "missing required environment variables: BOT_TOKEN, CHAT_ID") {
		t.Errorf("error should list missing variables, got: %v", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	clearEnv(t)

	_, _, err := executeCmd(t, "validate", "--config=/nonexistent/path/bot.yaml")
	if err == nil {
		t.Fatal("validate command expected error for missing file, got nil")
	}

	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error should mention 'failed to read', got: %v", err)
	}
}

// TestRunBot_RefusesToStartWithoutConfig verifies that the bot stops before
// contacting any API and logs at CRITICAL level.
func TestRunBot_RefusesToStartWithoutConfig(t *testing.T) {
	clearEnv(t)

	_, stderr, err := executeCmd(t, "run", "--config=")
	if err == nil {
		t.Fatal("run command expected error, got nil")
	}
	if !strings.Contains(err.Error(), "API_TOKEN, BOT_TOKEN, CHAT_ID") {
		t.Errorf("error should list missing variables, got: %v", err)
	}
	if !strings.Contains(stderr, `"level":"CRITICAL"`) {
		t.Errorf("stderr should contain a CRITICAL log line, got: %s", stderr)
	}
}

func TestRunBot_InvalidLogLevel(t *testing.T) {
	clearEnv(t)

	_, _, err := executeCmd(t, "run", "--config=", "--log-level=loud")
	if err == nil {
		t.Fatal("run command expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "invalid --log-level") {
		t.Errorf("error = %v", err)
	}

	// restore the default for later tests sharing rootCmd
	_ = runCmd.Flags().Set("log-level", "info")
}

func TestVersionCmd(t *testing.T) {
	output, _, err := executeCmd(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(output, "homework-bot dev") {
		t.Errorf("output = %q, want version line", output)
	}
}

func TestNewLogger_CriticalLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LevelCritical)

	logger.Info("dropped")
	logger.Log(context.Background(), LevelCritical, "refusing to start")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered at critical level: %s", out)
	}
	if !strings.Contains(out, `"level":"CRITICAL"`) || !strings.Contains(out, "refusing to start") {
		t.Errorf("output = %s, want CRITICAL line", out)
	}
}
