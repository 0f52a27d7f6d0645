package config

import (
	"github.com/jpalmerr/homeworkbot"
)

// BuildOptions converts the configuration into [homeworkbot.Option] values
// for everything except the chat transport, which needs a live Telegram
// client and is added by the caller:
//
//	opts := config.BuildOptions(cfg)
//	opts = append(opts, homeworkbot.WithChatTransport(tg, cfg.ChatID))
//	bot, err := homeworkbot.New(opts...)
func BuildOptions(cfg *Config) []homeworkbot.Option {
	opts := []homeworkbot.Option{
		homeworkbot.WithFetcher(homeworkbot.NewAPIFetcher(
			cfg.Endpoint,
			cfg.APIToken,
			cfg.RequestTimeout.Duration(),
		)),
		homeworkbot.WithRetryPeriod(cfg.RetryPeriod.Duration()),
	}

	if cfg.StartFrom != nil {
		opts = append(opts, homeworkbot.WithStartTimestamp(*cfg.StartFrom))
	}

	return opts
}
