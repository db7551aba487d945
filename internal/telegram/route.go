package telegram

import (
	"context"
	"strings"
)

const (
	commandStart = "/start"
	commandStop  = "/stop"
)

// Handler reacts to routed chat events.
type Handler interface {
	OnTextMessage(ctx context.Context, chatID int64, text string)
	OnStartCommand(ctx context.Context, chatID int64)
	OnStopCommand(ctx context.Context, chatID int64)
}

// Route dispatches one update to h. Updates without a text message and
// unknown commands are ignored.
func Route(ctx context.Context, update Update, h Handler) {
	if update.Message == nil {
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}
	chatID := update.Message.Chat.ID

	if !strings.HasPrefix(text, "/") {
		h.OnTextMessage(ctx, chatID, text)
		return
	}

	switch commandName(text) {
	case commandStart:
		h.OnStartCommand(ctx, chatID)
	case commandStop:
		h.OnStopCommand(ctx, chatID)
	}
}

// commandName strips arguments and the "@botname" suffix from a command.
func commandName(text string) string {
	name := strings.Fields(text)[0]
	if idx := strings.IndexByte(name, '@'); idx >= 0 {
		name = name[:idx]
	}
	return strings.ToLower(name)
}
