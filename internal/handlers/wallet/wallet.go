package wallet

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/dto"
	"github.com/GlebRadaev/vpnshop/internal/handlers/httperr"
	"github.com/GlebRadaev/vpnshop/pkg/auth"
	"github.com/GlebRadaev/vpnshop/pkg/utils"
)

type Service interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	History(ctx context.Context, userID int64) ([]domain.Transaction, error)
}

type WalletHandler struct {
	paymentService Service
}

func New(paymentService Service) *WalletHandler {
	return &WalletHandler{
		paymentService: paymentService,
	}
}

// GetBalance godoc
//
//	@Summary		Get wallet balance
//	@Description	Current wallet balance of the authenticated user
//	@Tags			Wallet
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/user/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	balance, err := h.paymentService.GetBalance(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{Balance: balance})
}

// GetTransactions godoc
//
//	@Summary		List wallet transactions
//	@Description	Most recent wallet transactions of the authenticated user, newest first
//	@Tags			Wallet
//	@Produce		json
//	@Success		200	{array}		dto.TransactionDTO
//	@Success		204	"No transactions"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/user/transactions [get]
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	txs, err := h.paymentService.History(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	if len(txs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]dto.TransactionDTO, 0, len(txs))
	for i := range txs {
		resp = append(resp, dto.FromTransaction(&txs[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
