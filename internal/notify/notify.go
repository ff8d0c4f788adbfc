package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/domain"
)

// Notifier delivers fire-and-forget messages. The result only reports whether the
// message left; callers never fail because of it.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, message string) bool
	NotifyAdmin(ctx context.Context, message string) bool
}

// Sender is the part of *tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type Telegram struct {
	sender      Sender
	users       UserRepo
	adminChatID int64
}

func NewTelegram(sender Sender, users UserRepo, adminChatID int64) *Telegram {
	return &Telegram{
		sender:      sender,
		users:       users,
		adminChatID: adminChatID,
	}
}

// New returns a Telegram notifier for token, or a no-op one when token is empty.
func New(token string, users UserRepo, adminChatID int64) (Notifier, error) {
	if token == "" {
		zap.L().Info("bot token not set, notifications disabled")
		return Noop{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	zap.L().Info("telegram notifier ready", zap.String("bot", bot.Self.UserName))
	return NewTelegram(bot, users, adminChatID), nil
}

func (t *Telegram) NotifyUser(ctx context.Context, userID int64, message string) bool {
	user, err := t.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		zap.L().Warn("can't notify user, chat unknown", zap.Int64("user_id", userID), zap.Error(err))
		return false
	}
	return t.send(user.TelegramID, message)
}

func (t *Telegram) NotifyAdmin(_ context.Context, message string) bool {
	if t.adminChatID == 0 {
		return false
	}
	return t.send(t.adminChatID, message)
}

func (t *Telegram) send(chatID int64, message string) bool {
	if _, err := t.sender.Send(tgbotapi.NewMessage(chatID, message)); err != nil {
		zap.L().Warn("notification not delivered", zap.Int64("chat_id", chatID), zap.Error(err))
		return false
	}
	return true
}

type Noop struct{}

func (Noop) NotifyUser(context.Context, int64, string) bool { return false }

func (Noop) NotifyAdmin(context.Context, string) bool { return false }
