package dto

import "time"

type PurchaseRequestDTO struct {
	PlanID       int64  `json:"plan_id" example:"4"`
	InboundID    int64  `json:"inbound_id" example:"3"`
	DiscountCode string `json:"discount_code,omitempty" example:"SUMMER20"`
}

type RenewRequestDTO struct {
	PlanID       int64  `json:"plan_id" example:"4"`
	DiscountCode string `json:"discount_code,omitempty"`
}

type CheckoutResponseDTO struct {
	OrderID  int64      `json:"order_id" example:"20"`
	Charged  int64      `json:"charged" example:"24000"`
	Discount int64      `json:"discount" example:"6000"`
	Account  AccountDTO `json:"account"`
}

type AccountDTO struct {
	ID        int64     `json:"id" example:"10"`
	PlanID    int64     `json:"plan_id" example:"4"`
	Status    string    `json:"status" example:"ACTIVE"`
	Enabled   bool      `json:"enabled" example:"true"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-07-01T12:00:00Z"`
	DataLimit int64     `json:"data_limit" example:"53687091200"`
	ConfigURL string    `json:"config_url,omitempty" example:"https://sub.example.com/sub/2f1c6a8e11112222"`
}

type QuoteResponseDTO struct {
	Code        string `json:"code" example:"SUMMER20"`
	FinalAmount int64  `json:"final_amount" example:"24000"`
	Discount    int64  `json:"discount" example:"6000"`
}
