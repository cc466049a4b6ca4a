package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rodpaiva/mensageiro-fit/internal/domain"
	"github.com/rodpaiva/mensageiro-fit/internal/logger"
	"github.com/rodpaiva/mensageiro-fit/internal/state"
)

const (
	// Long-poll timeout passed to getUpdates, in seconds.
	pollTimeout = 20

	defaultPollInterval = 2 * time.Second
)

const (
	replyLinked    = "✅ *Conectado!* Seu ID foi registrado e você receberá os relatórios aqui."
	replyNotLinked = "❌ Erro: Seu e-mail não foi pré-cadastrado no sistema."
)

// Listener long-polls Telegram for updates and links the chat to the
// configured user when /start arrives. Per-iteration errors are logged
// and swallowed so the loop never terminates on its own.
type Listener struct {
	api          BotAPI
	sender       *Sender
	users        domain.UserLinker
	cursor       state.CursorStore
	userEmail    string
	pollInterval time.Duration
}

// NewListener creates a registration listener for the given identity
func NewListener(api BotAPI, users domain.UserLinker, cursor state.CursorStore, userEmail string) *Listener {
	return &Listener{
		api:          api,
		sender:       NewSender(api),
		users:        users,
		cursor:       cursor,
		userEmail:    userEmail,
		pollInterval: defaultPollInterval,
	}
}

// Run polls until ctx is cancelled
func (l *Listener) Run(ctx context.Context) {
	offset, err := l.cursor.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load polling cursor, starting from zero", "error", err)
		offset = 0
	}

	logger.Info("Telegram registration listener started", "offset", offset)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Telegram registration listener stopped")
			return
		default:
		}

		offset = l.pollOnce(ctx, offset)

		select {
		case <-ctx.Done():
		case <-time.After(l.pollInterval):
		}
	}
}

// pollOnce fetches pending updates and returns the advanced cursor
func (l *Listener) pollOnce(ctx context.Context, offset int) int {
	cfg := tgbotapi.NewUpdate(offset + 1)
	cfg.Timeout = pollTimeout

	updates, err := l.api.GetUpdates(cfg)
	if err != nil {
		logger.Error("Polling for updates failed", "error", err)
		return offset
	}

	for _, update := range updates {
		if update.UpdateID > offset {
			offset = update.UpdateID
			if err := l.cursor.Store(ctx, offset); err != nil {
				logger.Warn("Failed to persist polling cursor", "error", err)
			}
		}
		l.handleUpdate(ctx, update)
	}

	return offset
}

func (l *Listener) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() || update.Message.Command() != "start" {
		return
	}

	chatID := update.Message.Chat.ID
	reply := replyLinked
	if err := l.users.LinkTelegramChat(ctx, l.userEmail, chatID); err != nil {
		logger.Warn("Failed to link Telegram chat", "chat_id", chatID, "error", err)
		reply = replyNotLinked
	}

	if err := l.sender.Send(chatID, reply); err != nil {
		logger.Error("Failed to answer /start", "chat_id", chatID, "error", err)
	}
}
