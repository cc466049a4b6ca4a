package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the slice of tgbotapi.BotAPI this package uses, kept as an
// interface so tests can substitute a fake.
type BotAPI interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers one-shot Markdown messages to a chat. Delivery
// failures are the caller's to log; they are never retried.
type Sender struct {
	api BotAPI
}

// NewSender creates a new sender on top of an authorized bot API
func NewSender(api BotAPI) *Sender {
	return &Sender{api: api}
}

// Send posts text to chatID with Markdown parse mode
func (s *Sender) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := s.api.Send(msg)
	return err
}
