package dto

import "time"

type SubmitReceiptRequestDTO struct {
	CardNumber string `json:"card_number" example:"4111 1111 1111 1111"`
	Amount     int64  `json:"amount" example:"50000"`
	OrderID    *int64 `json:"order_id,omitempty"`
}

type RejectReceiptRequestDTO struct {
	Reason string `json:"reason" example:"amount does not match"`
}

type ReceiptDTO struct {
	ID           int64      `json:"id" example:"7"`
	UserID       int64      `json:"user_id" example:"1"`
	Amount       int64      `json:"amount" example:"50000"`
	Status       string     `json:"status" example:"PENDING"`
	TrackingCode string     `json:"tracking_code" example:"RC01J0ABCDEF0123456789ABCDEF"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
	RejectReason *string    `json:"reject_reason,omitempty"`
}

type ReviewResponseDTO struct {
	Message string     `json:"message" example:"approved"`
	Receipt ReceiptDTO `json:"receipt"`
}
