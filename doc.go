// Package homeworkbot watches the review status of a homework submission
// and reports every change to a Telegram chat.
//
// A [Bot] polls the review API every retry period (10 minutes by default),
// validates the response and compares the most recent homework with the one
// it saw last. A changed status produces one message such as:
//
//	Status changed for "hw_bot": Работа взята на проверку ревьюером.
//
// Failures never stop the loop. They are logged and reported as
// "Program failure: <error>", and the same error text is reported only once
// until a cycle succeeds again.
//
// # Quick Start
//
//	tg, _ := telegram.NewClient(telegram.ClientConfig{Token: botToken})
//	bot, _ := homeworkbot.New(
//	    homeworkbot.WithFetcher(homeworkbot.NewAPIFetcher(homeworkbot.DefaultEndpoint, apiToken, 10*time.Second)),
//	    homeworkbot.WithChatTransport(tg, chatID),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	bot.Run(ctx) // blocks until ctx is cancelled
//
// # Errors
//
// Every stage returns a typed error: [TransportError], [ServerError] and
// [MalformedResponseError] from the fetcher, [SchemaError] from
// [CheckResponse], [FieldMissingError] and [UnknownStatusError] from
// [ParseStatus]. Delivery failures are wrapped in [NotificationError] and
// only logged.
//
// # Architecture
//
//   - internal/poller: HTTP client with per-request timeouts
//   - internal/telegram: Telegram Bot API transport
//   - config: YAML and environment configuration
//   - cmd/homework-bot: the command line binary
package homeworkbot
