package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reversal-alert-bot/internal/engine"
	"reversal-alert-bot/internal/store"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
	// AllowedUserID restricts the bot to one Telegram user when non-zero.
	AllowedUserID int64
	CheckInterval time.Duration
}

// Bot telegram interaction client
type Bot struct {
	Bot       *tgbotapi.BotAPI
	Config    BotConfig
	store     *store.Store
	quotes    engine.QuoteProvider
	startedAt time.Time
}

// Message a telegram message struct
type Message struct {
	ChatID    int
	MessageID int
	Text      string
}
