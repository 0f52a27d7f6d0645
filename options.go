package homeworkbot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// botConfig holds mutable state during Bot construction.
type botConfig struct {
	fetcher     Fetcher
	transport   ChatTransport
	chatID      string
	retryPeriod time.Duration
	startFrom   *int64
	logger      *slog.Logger
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) bool
}

// Option is a function that configures a [Bot] during construction.
//
// Options return an error if validation fails. Built-in options:
// [WithFetcher], [WithChatTransport], [WithRetryPeriod],
// [WithStartTimestamp], [WithLogger].
type Option func(*botConfig) error

// WithFetcher sets the review API client. Required.
//
// Use [NewAPIFetcher] for the real API:
//
//	bot, err := homeworkbot.New(
//	    homeworkbot.WithFetcher(homeworkbot.NewAPIFetcher(homeworkbot.DefaultEndpoint, token, 10*time.Second)),
//	    homeworkbot.WithChatTransport(tg, chatID),
//	)
//
// Returns an error if f is nil.
func WithFetcher(f Fetcher) Option {
	return func(cfg *botConfig) error {
		if f == nil {
			return errors.New("fetcher cannot be nil")
		}
		cfg.fetcher = f
		return nil
	}
}

// WithChatTransport sets where notifications go. Required.
//
// Every message, status changes and error reports alike, is sent to chatID
// through t.
func WithChatTransport(t ChatTransport, chatID string) Option {
	return func(cfg *botConfig) error {
		if t == nil {
			return errors.New("chat transport cannot be nil")
		}
		if strings.TrimSpace(chatID) == "" {
			return errors.New("chat id is required")
		}
		cfg.transport = t
		cfg.chatID = chatID
		return nil
	}
}

// WithRetryPeriod sets the pause between poll cycles. Defaults to 10 minutes.
//
// The same pause follows successful and failed cycles.
//
// Returns an error if the duration is shorter than one second.
func WithRetryPeriod(d time.Duration) Option {
	return func(cfg *botConfig) error {
		if d < time.Second {
			return errors.New("retry period must be at least 1s")
		}
		cfg.retryPeriod = d
		return nil
	}
}

// WithStartTimestamp sets the from_date of the first query.
//
// By default the first query looks back one retry period from process start.
// Passing 0 asks for the whole history, so the latest known status is
// reported right after startup.
func WithStartTimestamp(ts int64) Option {
	return func(cfg *botConfig) error {
		if ts < 0 {
			return errors.New("start timestamp cannot be negative")
		}
		cfg.startFrom = &ts
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *botConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// withClock replaces time.Now. Used by tests.
func withClock(now func() time.Time) Option {
	return func(cfg *botConfig) error {
		cfg.now = now
		return nil
	}
}

// withSleep replaces the interruptible sleep between cycles. Used by tests.
func withSleep(sleep func(ctx context.Context, d time.Duration) bool) Option {
	return func(cfg *botConfig) error {
		cfg.sleep = sleep
		return nil
	}
}
