// ABOUTME: Chat bot host that feeds transport messages to the command dispatcher.
// ABOUTME: Defines the Transport contract and runs one transport until cancelled.
package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/2389-research/postboard/internal/command"
)

// Handler turns a chat message into a reply. A nil reply means the message
// needs no answer.
type Handler interface {
	Handle(ctx context.Context, message string) *command.Reply
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, message string) *command.Reply

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, message string) *command.Reply {
	return f(ctx, message)
}

// Transport delivers chat messages to a Handler and sends back its replies.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string
	// Run blocks until ctx is cancelled or the transport fails.
	Run(ctx context.Context, h Handler) error
}

// Config configures a Bot.
type Config struct {
	Transport Transport
	Handler   Handler

	// Logger for bot lifecycle events. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Bot runs a Handler over a Transport.
type Bot struct {
	transport Transport
	handler   Handler
	log       *slog.Logger
}

// New creates a bot from cfg.
func New(cfg Config) (*Bot, error) {
	if cfg.Transport == nil {
		return nil, errors.New("bot transport is required")
	}
	if cfg.Handler == nil {
		return nil, errors.New("bot handler is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bot{transport: cfg.Transport, handler: cfg.Handler, log: cfg.Logger}, nil
}

// Run serves messages until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot starting", "transport", b.transport.Name())
	err := b.transport.Run(ctx, b.handler)
	if err != nil && !errors.Is(err, context.Canceled) {
		b.log.Error("bot transport failed", "transport", b.transport.Name(), "error", err)
		return err
	}
	b.log.Info("bot stopped", "transport", b.transport.Name())
	return nil
}
