package receipts

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/dto"
	"github.com/GlebRadaev/vpnshop/internal/handlers/httperr"
	"github.com/GlebRadaev/vpnshop/internal/service/receiptservice"
	"github.com/GlebRadaev/vpnshop/pkg/auth"
	"github.com/GlebRadaev/vpnshop/pkg/utils"
)

type Service interface {
	Submit(ctx context.Context, userID int64, cardNumber string, amount int64, orderID *int64) (*domain.ReceiptLog, error)
	Approve(ctx context.Context, receiptID, adminID int64) (*receiptservice.ReviewResult, error)
	Reject(ctx context.Context, receiptID, adminID int64, reason string) (*receiptservice.ReviewResult, error)
}

type ReceiptHandler struct {
	receiptService Service
}

func New(receiptService Service) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// Submit godoc
//
//	@Summary		Report a card transfer
//	@Description	Submit a card-to-card transfer receipt for admin review. The wallet is credited once an admin approves it.
//	@Tags			Receipts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.SubmitReceiptRequestDTO	true	"Receipt request body"
//	@Success		202		{object}	dto.ReceiptDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Unauthorized"
//	@Failure		404		{object}	utils.Response	"Order not found"
//	@Failure		422		{object}	utils.Response	"Invalid card number or amount"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/user/receipts [post]
func (h *ReceiptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.SubmitReceiptRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receipt, err := h.receiptService.Submit(r.Context(), userID, req.CardNumber, req.Amount, req.OrderID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusAccepted, dto.FromReceipt(receipt))
}

// Approve godoc
//
//	@Summary		Approve a receipt
//	@Description	Credit the wallet for a pending receipt. Reviewing a receipt that was already handled changes nothing.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		int	true	"Receipt ID"
//	@Success		200	{object}	dto.ReviewResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid receipt id"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Receipt not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/admin/receipts/{id}/approve [post]
func (h *ReceiptHandler) Approve(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := utils.IDParam(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid receipt id")
		return
	}

	res, err := h.receiptService.Approve(r.Context(), receiptID, auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	respondReview(w, res, "approved")
}

// Reject godoc
//
//	@Summary		Reject a receipt
//	@Description	Decline a pending receipt with an optional reason
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Receipt ID"
//	@Param			request	body		dto.RejectReceiptRequestDTO	false	"Reject request body"
//	@Success		200		{object}	dto.ReviewResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		403		{object}	utils.Response	"Forbidden"
//	@Failure		404		{object}	utils.Response	"Receipt not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/admin/receipts/{id}/reject [post]
func (h *ReceiptHandler) Reject(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := utils.IDParam(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid receipt id")
		return
	}

	var req dto.RejectReceiptRequestDTO
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	res, err := h.receiptService.Reject(r.Context(), receiptID, auth.UserID(r.Context()), req.Reason)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	respondReview(w, res, "rejected")
}

func respondReview(w http.ResponseWriter, res *receiptservice.ReviewResult, done string) {
	msg := done
	if res.AlreadyHandled {
		msg = "already handled"
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ReviewResponseDTO{
		Message: msg,
		Receipt: dto.FromReceipt(res.Receipt),
	})
}
