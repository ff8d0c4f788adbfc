package domain

import "time"

type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	Balance    int64     `db:"balance"`
	CreatedAt  time.Time `db:"created_at"`
}

type Panel struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	BaseURL    string `db:"base_url"`
	Username   string `db:"username"`
	Password   string `db:"password"`
	SubBaseURL string `db:"sub_base_url"`
	IsActive   bool   `db:"is_active"`
}

// Inbound is a listener configuration on a panel. RemoteID is the panel's own inbound id.
type Inbound struct {
	ID       int64  `db:"id"`
	PanelID  int64  `db:"panel_id"`
	RemoteID int64  `db:"remote_id"`
	Protocol string `db:"protocol"`
	Tag      string `db:"tag"`
}

type Plan struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	DurationDays int    `db:"duration_days"`
	TrafficGB    int64  `db:"traffic_gb"`
	Price        int64  `db:"price"`
	IsActive     bool   `db:"is_active"`
}

// TrafficBytes returns the plan's data limit in bytes, 0 means unlimited.
func (p *Plan) TrafficBytes() int64 {
	return p.TrafficGB << 30
}

type ClientAccount struct {
	ID         int64         `db:"id"`
	UserID     int64         `db:"user_id"`
	PanelID    int64         `db:"panel_id"`
	InboundID  int64         `db:"inbound_id"`
	PlanID     int64         `db:"plan_id"`
	OrderID    *int64        `db:"order_id"`
	RemoteUUID string        `db:"remote_uuid"`
	Email      string        `db:"email"`
	ExpiresAt  time.Time     `db:"expires_at"`
	DataLimit  int64         `db:"data_limit"`
	DataUsed   int64         `db:"data_used"`
	Status     AccountStatus `db:"status"`
	Enabled    bool          `db:"enabled"`
	ConfigURL  string        `db:"config_url"`
	TelegramID int64         `db:"tg_id"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

type Transaction struct {
	ID          int64             `db:"id"`
	UserID      int64             `db:"user_id"`
	OrderID     *int64            `db:"order_id"`
	OriginalID  *int64            `db:"original_id"`
	Amount      int64             `db:"amount"`
	Type        TransactionType   `db:"type"`
	Status      TransactionStatus `db:"status"`
	Description string            `db:"description"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
}

type ReceiptLog struct {
	ID            int64         `db:"id"`
	UserID        int64         `db:"user_id"`
	CardNumber    string        `db:"card_number"`
	Amount        int64         `db:"amount"`
	Status        ReceiptStatus `db:"status"`
	TransactionID *int64        `db:"transaction_id"`
	OrderID       *int64        `db:"order_id"`
	TrackingCode  string        `db:"tracking_code"`
	SubmittedAt   time.Time     `db:"submitted_at"`
	RespondedAt   *time.Time    `db:"responded_at"`
	AdminID       *int64        `db:"admin_id"`
	RejectReason  *string       `db:"reject_reason"`
}

type DiscountCode struct {
	ID           int64        `db:"id"`
	Code         string       `db:"code"`
	DiscountType DiscountType `db:"discount_type"`
	Value        int64        `db:"value"`
	UseCount     int          `db:"use_count"`
	MaxUses      int          `db:"max_uses"`
	ExpiresAt    *time.Time   `db:"expires_at"`
	UserID       *int64       `db:"user_id"`
	PlanID       *int64       `db:"plan_id"`
	IsActive     bool         `db:"is_active"`
}

type Order struct {
	ID              int64       `db:"id"`
	UserID          int64       `db:"user_id"`
	PlanID          int64       `db:"plan_id"`
	InboundID       int64       `db:"inbound_id"`
	Amount          int64       `db:"amount"`
	FinalAmount     int64       `db:"final_amount"`
	DiscountCodeID  *int64      `db:"discount_code_id"`
	Status          OrderStatus `db:"status"`
	ClientAccountID *int64      `db:"client_account_id"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}
