package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/signalengine/internal/model"
)

// Telegram publishes signals to a Telegram chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram initializes the bot API with the given token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// Publish sends one signal as a formatted message. Hold signals are not
// broadcast.
func (t *Telegram) Publish(ctx context.Context, sig model.Signal) error {
	if sig.IsHold() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, formatSignal(sig))
	msg.ParseMode = "Markdown"
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	t.logger.Debug().Str("pair", string(sig.Pair)).Msg("signal published")
	return nil
}

func formatSignal(sig model.Signal) string {
	emoji := "🟢"
	if sig.Direction == model.DirectionSell {
		emoji = "🔴"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s %s*\n\n", emoji, sig.Direction, sig.Pair)
	fmt.Fprintf(&b, "🕒 %s\n", sig.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "💪 Strength: %.2f\n", sig.Strength)
	fmt.Fprintf(&b, "🎯 Entry: %.5f\n", sig.EntryPrice)
	fmt.Fprintf(&b, "🛑 Stop: %.5f\n", sig.StopPrice)
	fmt.Fprintf(&b, "🏁 Target: %.5f\n", sig.TargetPrice)
	fmt.Fprintf(&b, "📊 Position: %.2f%% of account\n", sig.PositionFraction*100)
	fmt.Fprintf(&b, "🧭 Factors: %s", strings.Join(sig.Reasons, ", "))
	return b.String()
}
