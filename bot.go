package homeworkbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

const defaultRetryPeriod = 10 * time.Minute

// failurePrefix starts every error notification.
const failurePrefix = "Program failure: "

// ChatTransport delivers plain-text messages to a chat.
type ChatTransport interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// PollState is what the bot remembers between poll cycles.
//
// A PollState is owned by a single [Bot.Run] call and is never persisted;
// a restarted process begins with a fresh state.
type PollState struct {
	// LastSeen is the most recent homework the bot has notified about.
	LastSeen *WorkItem

	// LastError is the text of the last error notification. It is cleared
	// by the next successful cycle.
	LastError string

	// NextQueryTimestamp is the from_date of the next request.
	NextQueryTimestamp int64
}

// Outcome describes how a poll cycle ended.
type Outcome int

const (
	// OutcomeUnchanged means the cycle succeeded and nothing was sent.
	OutcomeUnchanged Outcome = iota

	// OutcomeChanged means a status change was detected and announced.
	OutcomeChanged

	// OutcomeFailed means the cycle ended with an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeChanged:
		return "changed"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Bot polls the review API and reports status changes of the latest
// homework to a chat.
//
// The typical lifecycle is:
//
//	bot, err := homeworkbot.New(
//	    homeworkbot.WithFetcher(fetcher),
//	    homeworkbot.WithChatTransport(tg, chatID),
//	)
//	if err != nil {
//	    slog.Error("failed to create bot", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	bot.Run(ctx) // blocks until ctx is cancelled
//
// Bot is not safe for concurrent use; Run drives everything from the
// calling goroutine.
type Bot struct {
	fetcher     Fetcher
	transport   ChatTransport
	chatID      string
	retryPeriod time.Duration
	startFrom   *int64
	logger      *slog.Logger
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) bool
}

// New creates a [Bot] with the given options.
//
// [WithFetcher] and [WithChatTransport] are required. The retry period
// defaults to 10 minutes and the logger to [slog.Default].
func New(opts ...Option) (*Bot, error) {
	cfg := &botConfig{
		retryPeriod: defaultRetryPeriod,
		now:         time.Now,
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.fetcher == nil {
		return nil, errors.New("a fetcher is required")
	}
	if cfg.transport == nil {
		return nil, errors.New("a chat transport is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Bot{
		fetcher:     cfg.fetcher,
		transport:   cfg.transport,
		chatID:      cfg.chatID,
		retryPeriod: cfg.retryPeriod,
		startFrom:   cfg.startFrom,
		logger:      logger,
		now:         cfg.now,
		sleep:       cfg.sleep,
	}, nil
}

// RetryPeriod returns the pause between poll cycles.
func (b *Bot) RetryPeriod() time.Duration {
	return b.retryPeriod
}

// NewState returns the state a fresh [Bot.Run] starts from.
func (b *Bot) NewState() PollState {
	if b.startFrom != nil {
		return PollState{NextQueryTimestamp: *b.startFrom}
	}
	return PollState{
		NextQueryTimestamp: b.now().Add(-b.retryPeriod).Unix(),
	}
}

// Run polls until ctx is cancelled, sleeping the retry period after every
// cycle whatever its outcome.
//
// Errors inside a cycle never stop the loop. Run returns nil once ctx is
// done.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started",
		"retry_period", b.retryPeriod.String(),
		"chat_id", b.chatID,
	)

	state := b.NewState()
	for ctx.Err() == nil {
		b.Poll(ctx, &state)

		if !b.sleep(ctx, b.retryPeriod) {
			break
		}
	}

	b.logger.Info("bot stopped")
	return nil
}

// Poll runs one poll cycle against state and reports its outcome.
//
// A detected change is announced once and remembered in state.LastSeen.
// A failure is announced as "Program failure: <error>" unless the same text
// was the last error announced; any successful cycle clears that memory.
func (b *Bot) Poll(ctx context.Context, state *PollState) Outcome {
	logger := b.logger.With("cycle_id", uuid.NewString())

	outcome, err := b.pollSafe(ctx, state, logger)
	if err != nil {
		b.handleFailure(ctx, state, logger, err)
		return OutcomeFailed
	}

	state.LastError = ""
	return outcome
}

// pollSafe runs poll with panic recovery so a bug in one cycle cannot kill
// the loop.
func (b *Bot) pollSafe(ctx context.Context, state *PollState, logger *slog.Logger) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("poll cycle panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			outcome = OutcomeFailed
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return b.poll(ctx, state, logger)
}

func (b *Bot) poll(ctx context.Context, state *PollState, logger *slog.Logger) (Outcome, error) {
	since := state.NextQueryTimestamp
	logger.Debug("querying review API", "from_date", since)

	doc, err := b.fetcher.Fetch(ctx, since)
	if err != nil {
		return OutcomeFailed, err
	}

	records, err := CheckResponse(doc)
	if err != nil {
		return OutcomeFailed, err
	}

	next, ok := CurrentDate(doc)
	if !ok {
		next = b.now().Unix()
		logger.Debug("response has no current_date, using local clock", "next_from_date", next)
	}

	if len(records) == 0 {
		logger.Debug("no homework updates", "from_date", since)
		state.NextQueryTimestamp = next
		return OutcomeUnchanged, nil
	}

	item, err := NewWorkItem(records[0])
	if err != nil {
		return OutcomeFailed, err
	}
	message, err := RenderStatusMessage(item)
	if err != nil {
		return OutcomeFailed, err
	}

	// the window is only advanced once the whole response was understood
	state.NextQueryTimestamp = next

	if state.LastSeen != nil && state.LastSeen.SameAs(item) {
		logger.Debug("homework status unchanged",
			"homework", item.Name,
			"status", item.Status.String(),
		)
		return OutcomeUnchanged, nil
	}

	logger.Info("homework status changed",
		"homework", item.Name,
		"status", item.Status.String(),
		"updated_at", item.UpdatedAt,
	)
	b.notify(ctx, logger, message)
	state.LastSeen = &item
	return OutcomeChanged, nil
}

func (b *Bot) handleFailure(ctx context.Context, state *PollState, logger *slog.Logger, err error) {
	kind, level := classifyError(err)
	attrs := []any{"error", err.Error(), "error_kind", kind}

	// shutting down mid-request is not worth a chat message
	if ctx.Err() != nil {
		logger.Debug("poll cycle interrupted", attrs...)
		return
	}

	logger.Log(ctx, level, "poll cycle failed", attrs...)

	text := failurePrefix + err.Error()
	if text == state.LastError {
		logger.Debug("repeated error, notification suppressed", "error_kind", kind)
		return
	}

	b.notify(ctx, logger, text)
	state.LastError = text
}

// classifyError maps an error to a stable kind name and log level.
// Upstream trouble is a warning; responses the bot cannot interpret are
// errors.
func classifyError(err error) (string, slog.Level) {
	var (
		transportErr *TransportError
		serverErr    *ServerError
		malformedErr *MalformedResponseError
		schemaErr    *SchemaError
		fieldErr     *FieldMissingError
		statusErr    *UnknownStatusError
	)

	switch {
	case errors.As(err, &transportErr):
		return "transport", slog.LevelWarn
	case errors.As(err, &serverErr):
		return "server", slog.LevelWarn
	case errors.As(err, &malformedErr):
		return "malformed_response", slog.LevelError
	case errors.As(err, &schemaErr):
		return "schema", slog.LevelError
	case errors.As(err, &fieldErr):
		return "field_missing", slog.LevelError
	case errors.As(err, &statusErr):
		return "unknown_status", slog.LevelError
	default:
		return "internal", slog.LevelError
	}
}

// notify sends text to the configured chat. Delivery is best effort:
// failures are logged and dropped.
func (b *Bot) notify(ctx context.Context, logger *slog.Logger, text string) {
	if err := b.send(ctx, logger, text); err != nil {
		nerr := &NotificationError{Err: err}
		logger.Error("notification not delivered", "chat_id", b.chatID, "error", nerr.Error())
		return
	}
	logger.Debug("notification delivered", "chat_id", b.chatID)
}

// send calls the transport with panic recovery.
func (b *Bot) send(ctx context.Context, logger *slog.Logger, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			logger.Error("chat transport panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("chat transport panic (correlation_id: %s)", correlationID)
		}
	}()
	return b.transport.SendMessage(ctx, b.chatID, text)
}

// sleepContext waits for d or until ctx is done. It reports whether the
// full duration elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
