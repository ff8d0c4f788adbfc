package httperr

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/pkg/utils"
)

// Status maps an error from the service layer to an HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrDiscountRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err with its status. Server side failures are not echoed back.
func Respond(w http.ResponseWriter, err error) {
	code := Status(err)
	switch code {
	case http.StatusInternalServerError:
		zap.L().Error("request failed", zap.Error(err))
		utils.RespondWithError(w, code, "Internal server error")
	case http.StatusBadGateway:
		zap.L().Warn("vpn server call failed", zap.Error(err))
		utils.RespondWithError(w, code, "VPN server is unavailable, try again later")
	default:
		utils.RespondWithError(w, code, err.Error())
	}
}
