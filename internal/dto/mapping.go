package dto

import "github.com/GlebRadaev/vpnshop/internal/domain"

func FromAccount(a *domain.ClientAccount) AccountDTO {
	return AccountDTO{
		ID:        a.ID,
		PlanID:    a.PlanID,
		Status:    a.Status.String(),
		Enabled:   a.Enabled,
		ExpiresAt: a.ExpiresAt,
		DataLimit: a.DataLimit,
		ConfigURL: a.ConfigURL,
	}
}

func FromTransaction(t *domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          t.ID,
		OrderID:     t.OrderID,
		OriginalID:  t.OriginalID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Status:      t.Status.String(),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func FromReceipt(r *domain.ReceiptLog) ReceiptDTO {
	return ReceiptDTO{
		ID:           r.ID,
		UserID:       r.UserID,
		Amount:       r.Amount,
		Status:       r.Status.String(),
		TrackingCode: r.TrackingCode,
		SubmittedAt:  r.SubmittedAt,
		RespondedAt:  r.RespondedAt,
		RejectReason: r.RejectReason,
	}
}
