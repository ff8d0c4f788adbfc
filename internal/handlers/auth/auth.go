package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/vpnshop/internal/dto"
	"github.com/GlebRadaev/vpnshop/internal/service/authservice"
	"github.com/GlebRadaev/vpnshop/pkg/utils"
)

type Service interface {
	Login(ctx context.Context, initData string) (*authservice.Session, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login godoc
//
//	@Summary		Authenticate a Telegram user
//	@Description	Exchange Telegram Web App init data for a JWT token. The user is registered on first login.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.LoginResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Failure		503		{object}	utils.Response	"Login disabled"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/telegram [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InitData == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.authService.Login(r.Context(), req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInvalidCredentials):
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, authservice.ErrLoginDisabled):
			utils.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	w.Header().Set("Authorization", "Bearer "+session.Token)
	utils.RespondWithJSON(w, http.StatusOK, dto.LoginResponseDTO{
		Token:  session.Token,
		UserID: session.User.ID,
		Admin:  session.Admin,
	})
}
