package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"github.com/google/uuid"

	"github.com/onnwee/chat-thief/telemetry"
)

// LineHandler turns one chat line into reply lines.
type LineHandler interface {
	HandleChatLine(ctx context.Context, identity, text string) ([]string, error)
}

// Sender says text in a channel. *twitch.Client satisfies it.
type Sender interface {
	Say(channel, text string)
}

// TokenFunc returns the current IRC OAuth token.
type TokenFunc func(ctx context.Context) (string, error)

// StaticToken always returns token.
func StaticToken(token string) TokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

// Bot is the Twitch side of the service.
type Bot struct {
	Channel  string
	Username string
	Token    TokenFunc
	Handler  LineHandler
	// Audience records speakers; nil skips tracking.
	Audience *Audience
	// ReconnectDelay is the pause between connection attempts (default 10s).
	ReconnectDelay time.Duration
}

// HandleMessage routes one line and says the replies through s. Errors are
// logged and nothing is said.
func (b *Bot) HandleMessage(ctx context.Context, s Sender, channel, user, text string) {
	ctx = telemetry.WithCorrelation(ctx, uuid.NewString())
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "chat"), slog.String("user", user))

	if b.Audience != nil {
		if err := b.Audience.Seen(ctx, user); err != nil {
			logger.Warn("failed to record chatter", slog.Any("err", err))
		}
	}
	lines, err := b.Handler.HandleChatLine(ctx, user, text)
	if err != nil {
		logger.Error("chat line failed", slog.String("text", text), slog.Any("err", err))
		return
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.Say(channel, line)
	}
}

// Run joins the channel and serves chat until ctx is cancelled, reconnecting
// with a fresh token after every disconnect.
func (b *Bot) Run(ctx context.Context) error {
	if b.Channel == "" || b.Username == "" || b.Token == nil {
		slog.Info("twitch creds not set; chat bot disabled", slog.String("component", "chat"))
		<-ctx.Done()
		return nil
	}
	delay := b.ReconnectDelay
	if delay <= 0 {
		delay = 10 * time.Second
	}
	for {
		if err := b.connectOnce(ctx); err != nil {
			slog.Warn("twitch chat disconnected", slog.Any("err", err), slog.Duration("retry_in", delay), slog.String("component", "chat"))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (b *Bot) connectOnce(ctx context.Context) error {
	token, err := b.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return errors.New("empty twitch oauth token")
	}
	client := twitch.NewClient(b.Username, ircToken(token))
	client.OnConnect(func() {
		slog.Info("twitch chat connected", slog.String("channel", b.Channel), slog.String("component", "chat"))
	})
	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		b.HandleMessage(ctx, client, msg.Channel, msg.User.Name, msg.Message)
	})

	// Handle context cancellation by closing the client
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			client.Disconnect() //nolint:errcheck // shutting down
		case <-done:
		}
	}()

	client.Join(b.Channel)
	err = client.Connect()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// ircToken adds the oauth: prefix IRC expects.
func ircToken(token string) string {
	if strings.HasPrefix(token, "oauth:") {
		return token
	}
	return "oauth:" + token
}
