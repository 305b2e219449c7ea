package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type MessageSender interface {
	SendMessageWithLevel(msg string, level slog.Level)
}

// TelegramHandler passes every record to the wrapped handler and forwards
// records at or above minLevel to the bot.
type TelegramHandler struct {
	handler  slog.Handler
	sender   MessageSender
	minLevel slog.Level
	attrs    []slog.Attr
}

func SetupTelegramHandler(log *slog.Logger, sender MessageSender, minLevel slog.Level) *slog.Logger {
	return slog.New(&TelegramHandler{
		handler:  log.Handler(),
		sender:   sender,
		minLevel: minLevel,
	})
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.sender != nil && r.Level >= h.minLevel {
		h.sender.SendMessageWithLevel(h.format(r), r.Level)
	}
	return h.handler.Handle(ctx, r)
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TelegramHandler{
		handler:  h.handler.WithAttrs(attrs),
		sender:   h.sender,
		minLevel: h.minLevel,
		attrs:    merged,
	}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	return &TelegramHandler{
		handler:  h.handler.WithGroup(name),
		sender:   h.sender,
		minLevel: h.minLevel,
		attrs:    h.attrs,
	}
}

func (h *TelegramHandler) format(r slog.Record) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", r.Level.String(), r.Message))
	for _, a := range h.attrs {
		b.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
		return true
	})
	return b.String()
}
