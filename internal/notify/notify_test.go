package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/vpnshop/internal/domain"
)

func NewMock(t *testing.T, adminChatID int64) (*Telegram, *MockSender, *MockUserRepo) {
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)
	users := NewMockUserRepo(ctrl)
	return NewTelegram(sender, users, adminChatID), sender, users
}

func expectMessage(t *testing.T, sender *MockSender, chatID int64, text string, err error) {
	sender.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
		msg, ok := c.(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.Equal(t, chatID, msg.ChatID)
		assert.Equal(t, text, msg.Text)
		return tgbotapi.Message{}, err
	})
}

func TestNotifyUser(t *testing.T) {
	tests := []struct {
		name    string
		user    *domain.User
		repoErr error
		sendErr error
		want    bool
	}{
		{name: "Delivered", user: &domain.User{ID: 1, TelegramID: 1001}, want: true},
		{name: "Send failed", user: &domain.User{ID: 1, TelegramID: 1001}, sendErr: errors.New("blocked by user")},
		{name: "Unknown user"},
		{name: "Repo error", repoErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, sender, users := NewMock(t, 0)
			users.EXPECT().FindByID(gomock.Any(), int64(1)).Return(tt.user, tt.repoErr)
			if tt.user != nil {
				expectMessage(t, sender, 1001, "approved", tt.sendErr)
			}

			assert.Equal(t, tt.want, n.NotifyUser(context.Background(), 1, "approved"))
		})
	}
}

func TestNotifyAdmin(t *testing.T) {
	n, sender, _ := NewMock(t, 42)
	expectMessage(t, sender, 42, "drift found", nil)
	assert.True(t, n.NotifyAdmin(context.Background(), "drift found"))

	silent, _, _ := NewMock(t, 0)
	assert.False(t, silent.NotifyAdmin(context.Background(), "drift found"))
}

func TestNew_WithoutToken(t *testing.T) {
	n, err := New("", nil, 0)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, n)
	assert.False(t, n.NotifyUser(context.Background(), 1, "hi"))
	assert.False(t, n.NotifyAdmin(context.Background(), "hi"))
}
