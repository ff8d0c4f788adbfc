package purchases

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/dto"
	"github.com/GlebRadaev/vpnshop/internal/handlers/httperr"
	"github.com/GlebRadaev/vpnshop/internal/service/discountservice"
	"github.com/GlebRadaev/vpnshop/internal/service/purchaseservice"
	"github.com/GlebRadaev/vpnshop/pkg/auth"
	"github.com/GlebRadaev/vpnshop/pkg/utils"
)

type Service interface {
	Purchase(ctx context.Context, userID, planID, inboundID int64, discountCode string) (*purchaseservice.Checkout, error)
	Renew(ctx context.Context, userID, accountID, planID int64, discountCode string) (*purchaseservice.Checkout, error)
	Quote(ctx context.Context, userID, planID int64, code string) (*discountservice.Result, error)
	Accounts(ctx context.Context, userID int64) ([]domain.ClientAccount, error)
}

type PurchaseHandler struct {
	purchaseService Service
}

func New(purchaseService Service) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// Purchase godoc
//
//	@Summary		Buy a subscription
//	@Description	Pay for a plan from the wallet and create a VPN account on the chosen location
//	@Tags			Purchases
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.PurchaseRequestDTO	true	"Purchase request body"
//	@Success		201		{object}	dto.CheckoutResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Unauthorized"
//	@Failure		402		{object}	utils.Response	"Insufficient funds"
//	@Failure		404		{object}	utils.Response	"Plan or location not found"
//	@Failure		422		{object}	utils.Response	"Discount code rejected"
//	@Failure		502		{object}	utils.Response	"VPN server is unavailable"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/user/purchases [post]
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.PurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID <= 0 || req.InboundID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	checkout, err := h.purchaseService.Purchase(r.Context(), userID, req.PlanID, req.InboundID, req.DiscountCode)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, checkoutResponse(checkout))
}

// Renew godoc
//
//	@Summary		Renew a subscription
//	@Description	Extend one of the user's VPN accounts with a plan paid from the wallet
//	@Tags			Purchases
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Account ID"
//	@Param			request	body		dto.RenewRequestDTO	true	"Renew request body"
//	@Success		200		{object}	dto.CheckoutResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		401		{object}	utils.Response	"Unauthorized"
//	@Failure		402		{object}	utils.Response	"Insufficient funds"
//	@Failure		404		{object}	utils.Response	"Account or plan not found"
//	@Failure		409		{object}	utils.Response	"Account cannot be renewed"
//	@Failure		502		{object}	utils.Response	"VPN server is unavailable"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/user/accounts/{id}/renew [post]
func (h *PurchaseHandler) Renew(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	accountID, ok := utils.IDParam(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	var req dto.RenewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	checkout, err := h.purchaseService.Renew(r.Context(), userID, accountID, req.PlanID, req.DiscountCode)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, checkoutResponse(checkout))
}

// Quote godoc
//
//	@Summary		Preview a discount code
//	@Description	Price a plan with a discount code without using it up
//	@Tags			Purchases
//	@Produce		json
//	@Param			code	path		string	true	"Discount code"
//	@Param			plan_id	query		int		true	"Plan ID"
//	@Success		200		{object}	dto.QuoteResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		401		{object}	utils.Response	"Unauthorized"
//	@Failure		404		{object}	utils.Response	"Plan not found"
//	@Failure		422		{object}	utils.Response	"Discount code rejected"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/user/discounts/{code} [get]
func (h *PurchaseHandler) Quote(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	planID, err := strconv.ParseInt(r.URL.Query().Get("plan_id"), 10, 64)
	code := chi.URLParam(r, "code")
	if err != nil || planID <= 0 || code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	res, err := h.purchaseService.Quote(r.Context(), userID, planID, code)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.QuoteResponseDTO{
		Code:        res.Code.Code,
		FinalAmount: res.FinalAmount,
		Discount:    res.Discount,
	})
}

// GetAccounts godoc
//
//	@Summary		List VPN accounts
//	@Description	VPN accounts owned by the authenticated user
//	@Tags			Purchases
//	@Produce		json
//	@Success		200	{array}		dto.AccountDTO
//	@Success		204	"No accounts"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/user/accounts [get]
func (h *PurchaseHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accounts, err := h.purchaseService.Accounts(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	if len(accounts) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]dto.AccountDTO, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, dto.FromAccount(&accounts[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func checkoutResponse(c *purchaseservice.Checkout) dto.CheckoutResponseDTO {
	return dto.CheckoutResponseDTO{
		OrderID:  c.Order.ID,
		Charged:  c.Order.FinalAmount,
		Discount: c.Discount,
		Account:  dto.FromAccount(c.Account),
	}
}
