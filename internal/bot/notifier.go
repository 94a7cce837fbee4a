package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/example/vocabtrainer/internal/database"
	"github.com/example/vocabtrainer/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Preferences stores per-chat reminder settings
type Preferences interface {
	SetNotificationsByChat(ctx context.Context, chatID int64, enabled bool) error
}

// Notifier delivers review reminders through Telegram
type Notifier struct {
	api   *tgbotapi.BotAPI
	prefs Preferences
}

// NewNotifier authorizes the bot with the given token
func NewNotifier(token string, prefs Preferences) (*Notifier, error) {
	return newNotifier(token, tgbotapi.APIEndpoint, &http.Client{}, prefs)
}

func newNotifier(token, endpoint string, client *http.Client, prefs Preferences) (*Notifier, error) {
	botAPI, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Printf("Authorized on account %s", botAPI.Self.UserName)
	return &Notifier{api: botAPI, prefs: prefs}, nil
}

// SendReminder implements the scheduler.Notifier interface
func (n *Notifier) SendReminder(_ context.Context, summary models.DueSummary) error {
	if summary.TelegramChatID == nil {
		return fmt.Errorf("user %d has no telegram chat", summary.ID)
	}

	msg := tgbotapi.NewMessage(*summary.TelegramChatID, ReminderText(summary.Due))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	log.Printf("Successfully sent reminder to user %d for %d words", summary.ID, summary.Due)
	return nil
}

// Listen answers bot commands until ctx is cancelled
func (n *Notifier) Listen(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := n.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			n.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			n.handleCommand(ctx, update.Message)
		}
	}
}

func (n *Notifier) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	var text string
	switch message.Command() {
	case "start":
		text = fmt.Sprintf("Your chat ID is %d. Register it with -create-user NAME -telegram-chat %d to get review reminders.",
			chatID, chatID)
	case "stop", "resume":
		enabled := message.Command() == "resume"
		err := n.prefs.SetNotificationsByChat(ctx, chatID, enabled)
		switch {
		case errors.Is(err, database.ErrNotFound):
			text = "This chat is not linked to a user. Use /start to get your chat ID."
		case err != nil:
			log.Printf("Error updating notifications for chat %d: %v", chatID, err)
			text = "Something went wrong, please try again later."
		case enabled:
			text = "Reminders are on."
		default:
			text = "Reminders are off. Use /resume to turn them back on."
		}
	default:
		text = "Unknown command. Use /start, /stop or /resume."
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Error replying to chat %d: %v", chatID, err)
	}
}

// ReminderText builds the reminder message for count due words
func ReminderText(count int) string {
	wordForm := "words"
	if count == 1 {
		wordForm = "word"
	}
	return fmt.Sprintf("You have %d %s to review! Open the trainer to start.", count, wordForm)
}
