package dto

import "time"

type BalanceResponseDTO struct {
	Balance int64 `json:"balance" example:"50000"`
}

type TransactionDTO struct {
	ID          int64     `json:"id" example:"30"`
	OrderID     *int64    `json:"order_id,omitempty" example:"20"`
	OriginalID  *int64    `json:"original_id,omitempty"`
	Amount      int64     `json:"amount" example:"-30000"`
	Type        string    `json:"type" example:"PURCHASE"`
	Status      string    `json:"status" example:"SUCCESS"`
	Description string    `json:"description" example:"order #20: Month"`
	CreatedAt   time.Time `json:"created_at" example:"2024-06-01T12:00:00Z"`
}

type RefundRequestDTO struct {
	Amount      int64  `json:"amount" example:"30000"`
	Description string `json:"description" example:"server outage"`
}

type DepositRequestDTO struct {
	Amount      int64  `json:"amount" example:"50000"`
	Description string `json:"description" example:"bank transfer 12.06"`
}
