package logger

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

type captureSender struct {
	messages []string
	levels   []slog.Level
}

func (c *captureSender) SendMessageWithLevel(msg string, level slog.Level) {
	c.messages = append(c.messages, msg)
	c.levels = append(c.levels, level)
}

func TestTelegramHandler_ForwardsAboveMinLevel(t *testing.T) {
	sender := &captureSender{}
	base := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	log := SetupTelegramHandler(base, sender, slog.LevelWarn)

	log.Info("parcel created")
	log.With(slog.Int64("order_id", 42)).Warn("region fallback", slog.String("region", "Atlantis"))

	if len(sender.messages) != 1 {
		t.Fatalf("forwarded %d messages, want 1", len(sender.messages))
	}
	msg := sender.messages[0]
	for _, want := range []string{"[WARN] region fallback", "order_id: 42", "region: Atlantis"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
	if sender.levels[0] != slog.LevelWarn {
		t.Errorf("level = %v, want %v", sender.levels[0], slog.LevelWarn)
	}
}

func TestTelegramHandler_NilSender(t *testing.T) {
	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := SetupTelegramHandler(base, nil, slog.LevelDebug)
	log.Error("must not panic")
}
