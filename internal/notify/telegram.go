// Package notify sends day-closed announcements to Telegram.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"turnboard/internal/service"
)

// TelegramNotifier posts an end-of-day digest to a chat. It implements
// service.Notifier.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier authorized")
	return &TelegramNotifier{bot: bot, chatID: chatID, log: logger}, nil
}

// DayClosed sends the summary digest. The context is unused because the bot
// API client does not accept one.
func (n *TelegramNotifier) DayClosed(_ context.Context, date string, summary *service.Summary) error {
	msg := tgbotapi.NewMessage(n.chatID, formatSummary(date, summary))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send day closed message: %w", err)
	}
	n.log.Info().Str("date", date).Msg("day closed notification sent")
	return nil
}

func formatSummary(date string, summary *service.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Day %s closed\n\n", date)

	if summary == nil {
		return b.String()
	}

	totalValue := 0
	totalAdjusted := 0
	for _, ts := range summary.TechStats {
		if ts.IsAbsent {
			continue
		}
		fmt.Fprintf(&b, "%s: %d+%d turns, $%d", ts.TechName, ts.RegularTurns, ts.BonusTurns, ts.TotalValueWithPenalty)
		if ts.PenaltyCount > 0 {
			fmt.Fprintf(&b, " (%d penalty)", ts.PenaltyCount)
		}
		b.WriteString("\n")
		totalValue += ts.TotalValueWithoutPenalty
		totalAdjusted += ts.TotalValueWithPenalty
	}

	fmt.Fprintf(&b, "\nTotal: $%d", totalAdjusted)
	if totalAdjusted != totalValue {
		fmt.Fprintf(&b, " (before penalties: $%d)", totalValue)
	}
	return b.String()
}
