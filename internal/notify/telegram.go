package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/localization"
	"civicvoice/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramQueueSize = 64

var ErrNotifierClosed = errors.New("telegram notifier is closed")

// TelegramSender is the part of *tgbotapi.BotAPI the notifier needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts escalation notices to an officials' chat. Messages
// are queued and sent by a single write pump so a slow Telegram API never
// holds up the sweep.
type TelegramNotifier struct {
	Bot       TelegramSender
	ChatID    int64
	Localizer *localization.Localizer
	Language  string

	// mu guards closed and orders sends against close(send).
	mu     sync.RWMutex
	closed bool
	send   chan tgbotapi.MessageConfig
	done   chan struct{}
	now    func() time.Time
}

// NewTelegramBot connects to the Bot API. It returns (nil, nil) when no token
// is configured.
func NewTelegramBot(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	slog.Info("telegram bot authorized", "username", bot.Self.UserName)
	return bot, nil
}

func NewTelegramNotifier(bot TelegramSender, chatID int64, l *localization.Localizer, language string) *TelegramNotifier {
	return &TelegramNotifier{
		Bot:       bot,
		ChatID:    chatID,
		Localizer: l,
		Language:  language,
		send:      make(chan tgbotapi.MessageConfig, telegramQueueSize),
		done:      make(chan struct{}),
		now:       time.Now,
	}
}

// Run starts the write pump.
func (n *TelegramNotifier) Run() {
	go n.writePump()
}

// Close stops accepting messages and waits for the queue to drain. Run must
// have been called. Notices queued after Close return ErrNotifierClosed.
func (n *TelegramNotifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.send)
	}
	n.mu.Unlock()
	<-n.done
}

// NotifyEscalation queues a notice. A full queue drops the notice and
// returns an error for the caller to log.
func (n *TelegramNotifier) NotifyEscalation(ctx context.Context, c *models.Complaint, previousLevel int) error {
	msg := tgbotapi.NewMessage(n.ChatID, n.text(c))
	msg.LinkPreviewOptions.IsDisabled = true

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrNotifierClosed
	}

	select {
	case n.send <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("telegram queue full, dropping notice for complaint %s", c.ID)
	}
}

func (n *TelegramNotifier) text(c *models.Complaint) string {
	days := int(n.now().Sub(c.CreatedAt).Hours() / 24)
	district := c.Location.District
	if district == "" {
		district = "-"
	}
	if n.Localizer == nil {
		return fmt.Sprintf("Complaint %s (%s, %s) escalated to level %d after %d days.",
			c.ID, c.Category, district, c.EscalationLevel, days)
	}
	return n.Localizer.Format(n.Language, localization.KeyEscalationNotice,
		c.ID, c.Category, district, c.EscalationLevel, days)
}

func (n *TelegramNotifier) writePump() {
	defer func() {
		slog.Debug("telegram write pump stopped", "chat_id", n.ChatID)
		close(n.done)
	}()

	for msg := range n.send {
		if _, err := n.Bot.Send(msg); err != nil {
			slog.Error("failed to send telegram notice", "chat_id", n.ChatID, "error", err)
		}
	}
}
