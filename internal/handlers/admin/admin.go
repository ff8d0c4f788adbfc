package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/dto"
	"github.com/GlebRadaev/vpnshop/internal/handlers/httperr"
	"github.com/GlebRadaev/vpnshop/pkg/utils"
)

type Service interface {
	DeactivateAccount(ctx context.Context, accountID int64) (*domain.ClientAccount, error)
	DeleteAccount(ctx context.Context, accountID int64) error
	Refund(ctx context.Context, txID, amount int64, description string) (*domain.Transaction, error)
	Deposit(ctx context.Context, userID, amount int64, description string) (*domain.Transaction, error)
}

type AdminHandler struct {
	adminService Service
}

func New(adminService Service) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// DeactivateAccount godoc
//
//	@Summary		Deactivate a VPN account
//	@Description	Disable the client on the VPN server and mark the account DISABLED
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		int	true	"Account ID"
//	@Success		200	{object}	dto.AccountDTO
//	@Failure		400	{object}	utils.Response	"Invalid account id"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Account not found"
//	@Failure		409	{object}	utils.Response	"Account cannot be deactivated"
//	@Failure		502	{object}	utils.Response	"VPN server is unavailable"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/admin/accounts/{id}/deactivate [post]
func (h *AdminHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.IDParam(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	account, err := h.adminService.DeactivateAccount(r.Context(), accountID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.FromAccount(account))
}

// DeleteAccount godoc
//
//	@Summary		Delete a VPN account
//	@Description	Remove the client from the VPN server when possible and delete the account
//	@Tags			Admin
//	@Param			id	path	int	true	"Account ID"
//	@Success		204	"Deleted"
//	@Failure		400	{object}	utils.Response	"Invalid account id"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Account not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/admin/accounts/{id} [delete]
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.IDParam(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	if err := h.adminService.DeleteAccount(r.Context(), accountID); err != nil {
		httperr.Respond(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Refund godoc
//
//	@Summary		Refund a transaction
//	@Description	Credit the owner of a transaction back. An empty amount refunds the whole transaction.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Transaction ID"
//	@Param			request	body		dto.RefundRequestDTO	false	"Refund request body"
//	@Success		201		{object}	dto.TransactionDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		403		{object}	utils.Response	"Forbidden"
//	@Failure		404		{object}	utils.Response	"Transaction not found"
//	@Failure		422		{object}	utils.Response	"Invalid amount"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/admin/transactions/{id}/refund [post]
func (h *AdminHandler) Refund(w http.ResponseWriter, r *http.Request) {
	txID, ok := utils.IDParam(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var req dto.RefundRequestDTO
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	refund, err := h.adminService.Refund(r.Context(), txID, req.Amount, req.Description)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dto.FromTransaction(refund))
}

// Deposit godoc
//
//	@Summary		Credit a wallet
//	@Description	Record a deposit for a user and credit the wallet with it
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"User ID"
//	@Param			request	body		dto.DepositRequestDTO	true	"Deposit request body"
//	@Success		201		{object}	dto.TransactionDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		403		{object}	utils.Response	"Forbidden"
//	@Failure		422		{object}	utils.Response	"Invalid amount"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/admin/users/{id}/deposit [post]
func (h *AdminHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.IDParam(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req dto.DepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.adminService.Deposit(r.Context(), userID, req.Amount, req.Description)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dto.FromTransaction(tx))
}
