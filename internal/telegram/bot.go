package telegram

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"reversal-alert-bot/internal/database"
	"reversal-alert-bot/internal/dexscreener"
	"reversal-alert-bot/internal/engine"
	"reversal-alert-bot/internal/store"
	"reversal-alert-bot/lib/helpers"
	"reversal-alert-bot/lib/translation"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig, tokenStore *store.Store, quotes engine.QuoteProvider) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:       bot,
		Config:    c,
		store:     tokenStore,
		quotes:    quotes,
		startedAt: time.Now(),
	}, nil
}

// GetUpdatesChannel gets new updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig), nil
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(int64(m.ChatID), m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message: %v", m)
}

func ParseArguments(args string) (string, string) {
	re := regexp.MustCompile(`^(\S+)\s*(.+)?$`)
	matches := re.FindStringSubmatch(strings.TrimSpace(args))

	if len(matches) >= 2 {
		address := matches[1]
		target := ""
		if len(matches) == 3 {
			target = strings.TrimSpace(matches[2])
		}
		return address, target
	}
	return "", ""
}

// Authorized reports whether userID may use the bot. With no allowed user
// configured the bot is open.
func (b *Bot) Authorized(userID int64) bool {
	return b.Config.AllowedUserID == 0 || userID == b.Config.AllowedUserID
}

// HandleUpdate processes Telegram updates
func (b *Bot) HandleUpdate(u tgbotapi.Update) string {
	if !b.Authorized(u.Message.From.ID) {
		log.Warnf("rejected command from user %d", u.Message.From.ID)
		return helpers.EscapeMarkdownV2(translation.Translate("⛔ Access denied. This bot is private."))
	}

	log.Debugf("received command: %s", u.Message.Command())

	switch u.Message.Command() {
	case "start":
		return b.commandStart(u.Message.From.ID)
	case "add":
		return b.commandAdd(u.Message.CommandArguments())
	case "list":
		return b.commandList()
	case "remove":
		return b.commandRemove(u.Message.CommandArguments())
	case "status":
		return b.commandStatus()
	}

	return helpers.EscapeMarkdownV2(translation.Translate("❓ Unknown command. Use /start for help."))
}

func (b *Bot) commandStart(userID int64) string {
	return fmt.Sprintf(
		"🤖 *%s*\n\n%s `%d`\n\n*%s*\n%s\n\n%s",
		helpers.EscapeMarkdownV2(translation.Translate("Solana Reversal Alert Bot")),
		helpers.EscapeMarkdownV2(translation.Translate("Your Telegram ID:")),
		userID,
		helpers.EscapeMarkdownV2(translation.Translate("Commands:")),
		helpers.EscapeMarkdownV2(translation.Translate(
			"/add CA PERCENT - Track a token\n/list - Show tracked tokens\n/remove CA - Stop tracking\n/status - Bot status")),
		helpers.EscapeMarkdownV2(translation.Translate(
			"Example: /add Cm6fNnMk7NfzStP9CZpsQA2v3jjzbcYGAxdJySmHpump 40\nAlerts when the token pumps 40% from its local bottom.")),
	)
}

func (b *Bot) commandAdd(args string) string {
	address, target := ParseArguments(args)
	if address == "" || target == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Usage: /add CA_ADDRESS PERCENT"))
	}

	targetPercent, err := strconv.ParseFloat(target, 64)
	if err != nil || targetPercent <= 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Invalid percent. Use a positive number like 40."))
	}

	if _, tracked := b.store.Get(address); tracked {
		return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Already tracking this token. Use /remove first."))
	}

	quote, err := b.quotes.Quote(context.Background(), address)
	if err != nil {
		log.Errorf("quote lookup failed for %s: %v", address, err)
		if errors.Is(err, dexscreener.ErrNoPairs) {
			return helpers.EscapeMarkdownV2(translation.Translate("❌ Token not found on DexScreener. Check the CA."))
		}
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Could not fetch token info. Try again later."))
	}

	if err := b.store.Add(address, targetPercent, quote.Price, quote.Name, quote.Symbol); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyTracked):
			return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Already tracking this token. Use /remove first."))
		case errors.Is(err, store.ErrInvalidTarget):
			return helpers.EscapeMarkdownV2(translation.Translate("❌ Invalid percent. Use a positive number like 40."))
		default:
			log.Errorf("failed to add %s: %v", address, err)
			return helpers.EscapeMarkdownV2(translation.Translate("❌ Failed to add token. Try again later."))
		}
	}

	return fmt.Sprintf(
		"✅ *%s*\n\n🪙 %s \\(%s\\)\n💰 %s $%s\n🎯 %s \\+%s%%",
		helpers.EscapeMarkdownV2(translation.Translate("Token added!")),
		helpers.EscapeMarkdownV2(quote.Name),
		helpers.EscapeMarkdownV2(quote.Symbol),
		helpers.EscapeMarkdownV2(translation.Translate("Current price:")),
		helpers.FormatPriceUS(quote.Price, true),
		helpers.EscapeMarkdownV2(translation.Translate("Alert at:")),
		helpers.EscapeMarkdownV2(strconv.FormatFloat(targetPercent, 'f', -1, 64)),
	)
}

func (b *Bot) commandList() string {
	tracked := b.store.ListAll()
	if len(tracked) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("📋 No tokens being tracked. Use /add to add some."))
	}

	var list strings.Builder
	list.WriteString(fmt.Sprintf("📋 *%s*\n\n", helpers.EscapeMarkdownV2(translation.Translate("Tracked Tokens:"))))

	for _, t := range tracked {
		record := t.Record

		status := translation.Translate("N/A")
		currentPrice := 0.0
		if quote, err := b.quotes.Quote(context.Background(), t.Address); err == nil {
			currentPrice = quote.Price
			if record.LocalBottom > 0 {
				status = helpers.FormatPercent((currentPrice - record.LocalBottom) / record.LocalBottom * 100)
			}
		} else {
			log.Warnf("list: quote fetch failed for %s: %v", t.Address, err)
		}

		shortCA := t.Address
		if len(shortCA) > 20 {
			shortCA = shortCA[:20] + "..."
		}

		list.WriteString(fmt.Sprintf(
			"*%s*\n  📉 %s $%s\n  💰 %s $%s \\(%s\\)\n  🎯 %s \\+%s%%\n  🕒 %s\n  `%s`\n\n",
			helpers.EscapeMarkdownV2(record.Symbol),
			helpers.EscapeMarkdownV2(translation.Translate("Bottom:")),
			helpers.FormatPriceUS(record.LocalBottom, true),
			helpers.EscapeMarkdownV2(translation.Translate("Now:")),
			helpers.FormatPriceUS(currentPrice, true),
			status,
			helpers.EscapeMarkdownV2(translation.Translate("Target:")),
			helpers.EscapeMarkdownV2(strconv.FormatFloat(record.TargetPercent, 'f', -1, 64)),
			helpers.EscapeMarkdownV2(humanize.Time(record.AddedAt)),
			helpers.EscapeMarkdownV2(shortCA),
		))
	}

	return list.String()
}

func (b *Bot) commandRemove(args string) string {
	matcher := strings.TrimSpace(args)
	if matcher == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Usage: /remove CA_ADDRESS"))
	}

	record, err := b.store.Remove(matcher)
	switch {
	case errors.Is(err, store.ErrAmbiguousMatch):
		return helpers.EscapeMarkdownV2(translation.Translate("⚠️ That matches more than one tracked token. Use a longer part of the CA."))
	case errors.Is(err, store.ErrNotFound):
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Token not found in tracking list."))
	case err != nil:
		log.Errorf("failed to remove %s: %v", matcher, err)
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Failed to remove token. Try again later."))
	}

	return fmt.Sprintf(
		"✅ %s *%s* %s",
		helpers.EscapeMarkdownV2(translation.Translate("Removed")),
		helpers.EscapeMarkdownV2(record.Symbol),
		helpers.EscapeMarkdownV2(translation.Translate("from tracking.")),
	)
}

func (b *Bot) commandStatus() string {
	alertsFired, err := database.CountAlertHistory()
	if err != nil {
		log.Errorf("failed to count alert history: %v", err)
	}

	return fmt.Sprintf(
		"🤖 *%s*\n\n📊 %s %d\n🔔 %s %d\n⏱ %s %s\n🕒 %s %s\n✅ %s",
		helpers.EscapeMarkdownV2(translation.Translate("Bot Status")),
		helpers.EscapeMarkdownV2(translation.Translate("Tracking:")),
		b.store.Len(),
		helpers.EscapeMarkdownV2(translation.Translate("Alerts fired:")),
		alertsFired,
		helpers.EscapeMarkdownV2(translation.Translate("Check interval:")),
		helpers.EscapeMarkdownV2(b.Config.CheckInterval.String()),
		helpers.EscapeMarkdownV2(translation.Translate("Started:")),
		helpers.EscapeMarkdownV2(humanize.Time(b.startedAt)),
		helpers.EscapeMarkdownV2(translation.Translate("Bot is running")),
	)
}
