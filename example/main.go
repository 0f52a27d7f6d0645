package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/homeworkbot"
)

const mockToken = "mock-token"

// consoleTransport prints notifications instead of sending them to Telegram.
type consoleTransport struct{}

func (consoleTransport) SendMessage(_ context.Context, chatID, text string) error {
	fmt.Printf("[chat %s] %s\n", chatID, text)
	return nil
}

func main() {
	// start mock review API (see mock_server.go)
	go StartMockReviewServer(":9999", mockToken)
	time.Sleep(100 * time.Millisecond)

	fetcher := homeworkbot.NewAPIFetcher(
		"http://localhost:9999/api/user_api/homework_statuses/",
		mockToken,
		5*time.Second,
	)
	defer fetcher.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	bot, err := homeworkbot.New(
		homeworkbot.WithFetcher(fetcher),
		homeworkbot.WithChatTransport(consoleTransport{}, "demo"),
		homeworkbot.WithRetryPeriod(5*time.Second),
		// report the current status on the first poll
		homeworkbot.WithStartTimestamp(0),
		homeworkbot.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  homework-bot demo")
	fmt.Println("  mock review API on http://localhost:9999")
	fmt.Println("  the homework moves reviewing -> rejected -> approved")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil {
		slog.Error("bot error", "error", err)
		os.Exit(1)
	}
}
