package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/homeworkbot"
	"github.com/jpalmerr/homeworkbot/config"
	"github.com/jpalmerr/homeworkbot/internal/telegram"
	"github.com/spf13/cobra"
)

// LevelCritical is logged when the bot refuses to start.
const LevelCritical = slog.Level(12)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey {
				return a
			}
			if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
				a.Value = slog.StringValue("CRITICAL")
			}
			return a
		},
	}))
}

// runCmd starts the polling loop.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start polling the review API",
	Long: `Start polling the homework review API.

The bot will:
  - Load configuration from the environment (and the optional YAML file)
  - Check the Telegram bot token
  - Poll the review API every retry period and report status changes

The bot runs until interrupted (Ctrl+C) or receives SIGTERM. Missing
API_TOKEN, BOT_TOKEN or CHAT_ID stops it before the first poll with exit
code 1.

Example:
  homework-bot run
  homework-bot run -c bot.yaml --log-level debug
  homework-bot run --from 0   # report the latest known status right away`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to an optional YAML config file")
	runCmd.Flags().String("log-level", "info", "log level: debug, info, warn or error")
	runCmd.Flags().Int64("from", 0, "from_date of the first query as a Unix timestamp")
}

func runBot(cmd *cobra.Command, args []string) error {
	levelName, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		logger.Log(ctx, LevelCritical, "configuration error, bot stopped", "error", err.Error())
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("from") {
		from, _ := cmd.Flags().GetInt64("from")
		cfg.StartFrom = &from
	}

	tg, err := telegram.NewClient(telegram.ClientConfig{
		Token:   cfg.BotToken,
		Timeout: cfg.RequestTimeout.Duration(),
	})
	if err != nil {
		logger.Log(ctx, LevelCritical, "telegram bot unavailable, bot stopped", "error", err.Error())
		return err
	}

	logger.Info("config loaded",
		"endpoint", cfg.Endpoint,
		"retry_period", cfg.RetryPeriod.Duration().String(),
		"request_timeout", cfg.RequestTimeout.Duration().String(),
		"telegram_bot", tg.Username(),
	)

	opts := append(config.BuildOptions(cfg),
		homeworkbot.WithChatTransport(tg, cfg.ChatID),
		homeworkbot.WithLogger(logger),
	)
	bot, err := homeworkbot.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// blocks until SIGINT/SIGTERM
	if err := bot.Run(ctx); err != nil {
		return fmt.Errorf("bot error: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
