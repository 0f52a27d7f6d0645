// Package config loads the homework bot configuration.
//
// Settings come from an optional YAML file and from the environment;
// environment variables win. A file may reference the environment itself
// with ${VAR} or ${VAR:-default}:
//
//	api_token: ${PRACTICUM_TOKEN}
//	bot_token: ${TELEGRAM_TOKEN}
//	chat_id: "123456789"
//	retry_period: 10m
//	request_timeout: 10s
//
// Recognised environment variables:
//
//	API_TOKEN          review API OAuth token (required)
//	BOT_TOKEN          Telegram bot token (required)
//	CHAT_ID            Telegram chat id or @channel (required)
//	HOMEWORK_ENDPOINT  review API URL
//	RETRY_PERIOD       pause between polls, "10m" or seconds
//	REQUEST_TIMEOUT    review API request timeout, "10s" or seconds
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jpalmerr/homeworkbot"
	"github.com/jpalmerr/homeworkbot/internal/telegram"
	"gopkg.in/yaml.v3"
)

// environment variable names
const (
	EnvAPIToken       = "API_TOKEN"
	EnvBotToken       = "BOT_TOKEN"
	EnvChatID         = "CHAT_ID"
	EnvEndpoint       = "HOMEWORK_ENDPOINT"
	EnvRetryPeriod    = "RETRY_PERIOD"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
)

const (
	defaultRetryPeriod    = 10 * time.Minute
	defaultRequestTimeout = 10 * time.Second

	// minPollInterval keeps a typo from hammering the review API.
	minPollInterval = 1 * time.Second
)

// Config is the bot configuration.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config.
type Config struct {
	// APIToken authenticates against the review API.
	APIToken string `yaml:"api_token"`

	// BotToken authenticates the Telegram bot.
	BotToken string `yaml:"bot_token"`

	// ChatID is the Telegram chat that receives notifications.
	ChatID string `yaml:"chat_id"`

	// Endpoint is the review API URL. Defaults to homeworkbot.DefaultEndpoint.
	Endpoint string `yaml:"endpoint"`

	// RetryPeriod is the pause between poll cycles. Defaults to 10m.
	RetryPeriod Duration `yaml:"retry_period"`

	// RequestTimeout bounds each review API request. Defaults to 10s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// StartFrom is the from_date of the first query. When unset the first
	// query looks back one retry period.
	StartFrom *int64 `yaml:"start_from"`
}

// ConfigurationError reports a configuration the bot cannot start with.
type ConfigurationError struct {
	// Missing lists required settings that were not provided, by
	// environment variable name.
	Missing []string

	// Err describes an invalid setting, if any.
	Err error
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required environment variables: "+strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "invalid configuration"
	}
	return strings.Join(parts, "; ")
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Duration wraps time.Duration for YAML unmarshalling.
//
// Both duration strings ("10m", "30s") and plain integers meaning seconds
// ("600") are accepted.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := parseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return parsed, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads the configuration from the YAML file at path, if path is not
// empty, then applies environment overrides, defaults and validation.
//
// Every problem with the resulting configuration is reported as a
// [*ConfigurationError]; a file that cannot be read or parsed is reported
// as a plain error.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse builds the configuration from YAML data (which may be empty) and
// the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.expand(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = homeworkbot.DefaultEndpoint
	}
	if cfg.RetryPeriod == 0 {
		cfg.RetryPeriod = Duration(defaultRetryPeriod)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = Duration(defaultRequestTimeout)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expand substitutes ${VAR} references in string settings.
func (c *Config) expand() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"api_token", &c.APIToken},
		{"bot_token", &c.BotToken},
		{"chat_id", &c.ChatID},
		{"endpoint", &c.Endpoint},
	}

	for _, f := range fields {
		expanded, err := expandEnvVars(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

// applyEnv overrides file settings with non-empty environment variables.
func (c *Config) applyEnv() error {
	overrides := []struct {
		env   string
		value *string
	}{
		{EnvAPIToken, &c.APIToken},
		{EnvBotToken, &c.BotToken},
		{EnvChatID, &c.ChatID},
		{EnvEndpoint, &c.Endpoint},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.value = v
		}
	}

	durations := []struct {
		env   string
		value *Duration
	}{
		{EnvRetryPeriod, &c.RetryPeriod},
		{EnvRequestTimeout, &c.RequestTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.value = Duration(parsed)
	}
	return nil
}

func (c *Config) validate() error {
	var missing []string
	if strings.TrimSpace(c.APIToken) == "" {
		missing = append(missing, EnvAPIToken)
	}
	if strings.TrimSpace(c.BotToken) == "" {
		missing = append(missing, EnvBotToken)
	}
	if strings.TrimSpace(c.ChatID) == "" {
		missing = append(missing, EnvChatID)
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	if err := telegram.ValidateChatID(c.ChatID); err != nil {
		return &ConfigurationError{Err: err}
	}

	parsedURL, err := url.Parse(c.Endpoint)
	if err != nil {
		return &ConfigurationError{Err: fmt.Errorf("invalid endpoint: %w", err)}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ConfigurationError{Err: fmt.Errorf("endpoint scheme must be http or https, got %q", parsedURL.Scheme)}
	}

	if c.RetryPeriod.Duration() < minPollInterval {
		return &ConfigurationError{Err: fmt.Errorf("retry_period must be at least %s, got %s", minPollInterval, c.RetryPeriod.Duration())}
	}
	if c.RequestTimeout.Duration() < time.Second {
		return &ConfigurationError{Err: fmt.Errorf("request_timeout must be at least 1s, got %s", c.RequestTimeout.Duration())}
	}

	if c.StartFrom != nil && *c.StartFrom < 0 {
		return &ConfigurationError{Err: errors.New("start_from cannot be negative")}
	}

	return nil
}

// Masked returns a copy of c that is safe to print: tokens keep only
// their first four characters.
func (c Config) Masked() Config {
	c.APIToken = maskSecret(c.APIToken)
	c.BotToken = maskSecret(c.BotToken)
	return c
}

func maskSecret(s string) string {
	const visible = 4
	if len(s) <= visible {
		return strings.Repeat("*", len(s))
	}
	return s[:visible] + strings.Repeat("*", 8)
}
