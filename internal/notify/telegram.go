package notify

import (
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-rental-agent/internal/models"
)

// TelegramNotifier pushes terminal job outcomes to a Telegram chat so the
// operator hears about applies without watching the dashboard.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// NotifyJob sends one message per terminal job. Errors are logged, not
// propagated; notification failure never fails a job.
func (t *TelegramNotifier) NotifyJob(job models.Job) {
	var text string
	switch job.Status {
	case models.JobCompleted:
		text = fmt.Sprintf("✅ <b>Sollicitatie verstuurd</b>\n🏠 %s\n📝 %s", html.EscapeString(job.PropertyName), html.EscapeString(job.Result))
		if job.UsedAILetter {
			text += "\n🤖 Met AI-motivatiebrief"
		}
	case models.JobFailed:
		text = fmt.Sprintf("❌ <b>Sollicitatie mislukt</b>\n🏠 %s\n⚠️ %s", html.EscapeString(job.PropertyName), html.EscapeString(job.Error))
	default:
		return
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML"
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("⚠️ Telegram notification failed: %v", err)
	}
}
