package domain

import "time"

// ClientSpec is the desired state of a VPN client on a panel.
type ClientSpec struct {
	UUID       string
	Email      string
	SubID      string
	Enabled    bool
	ExpiresAt  time.Time
	TotalBytes int64
	LimitIP    int
	TelegramID int64
}

// RemoteClient is a client as the panel reports it.
type RemoteClient struct {
	UUID      string
	Email     string
	SubID     string
	Enabled   bool
	ExpiresAt time.Time
}
