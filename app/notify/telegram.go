package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lysyi3m/alpha-scanner/app/database"
)

// TelegramNotifier delivers the daily discovery summary to a Telegram chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

// SendDailySummary posts the top newly discovered projects. An empty batch
// still produces a short heartbeat message.
func (n *TelegramNotifier) SendDailySummary(total int, fresh []database.Project) error {
	msg := tgbotapi.NewMessage(n.chatID, formatSummary(total, fresh))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

func formatSummary(total int, fresh []database.Project) string {
	var sb strings.Builder

	sb.WriteString("*Alpha Scanner daily summary*\n")
	sb.WriteString(fmt.Sprintf("%d projects tracked, %d discovered in the last 24h\n", total, len(fresh)))

	limit := len(fresh)
	if limit > 5 {
		limit = 5
	}

	for _, p := range fresh[:limit] {
		sb.WriteString(fmt.Sprintf("\n• *%s* (%s) — score %.1f", p.Name, p.Category, p.Score))
		if p.SourceURL != "" {
			sb.WriteString(fmt.Sprintf("\n  %s", p.SourceURL))
		}
	}

	return sb.String()
}
