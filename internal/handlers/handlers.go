package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/vpnshop/docs"
	adminhandlers "github.com/GlebRadaev/vpnshop/internal/handlers/admin"
	authhandlers "github.com/GlebRadaev/vpnshop/internal/handlers/auth"
	purchasehandlers "github.com/GlebRadaev/vpnshop/internal/handlers/purchases"
	receipthandlers "github.com/GlebRadaev/vpnshop/internal/handlers/receipts"
	wallethandlers "github.com/GlebRadaev/vpnshop/internal/handlers/wallet"
	"github.com/GlebRadaev/vpnshop/internal/service"
	"github.com/GlebRadaev/vpnshop/pkg/auth"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
}

type PurchaseHandler interface {
	Purchase(w http.ResponseWriter, r *http.Request)
	Renew(w http.ResponseWriter, r *http.Request)
	Quote(w http.ResponseWriter, r *http.Request)
	GetAccounts(w http.ResponseWriter, r *http.Request)
}

type ReceiptHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	DeactivateAccount(w http.ResponseWriter, r *http.Request)
	DeleteAccount(w http.ResponseWriter, r *http.Request)
	Refund(w http.ResponseWriter, r *http.Request)
	Deposit(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler     AuthHandler
	WalletHandler   WalletHandler
	PurchaseHandler PurchaseHandler
	ReceiptHandler  ReceiptHandler
	AdminHandler    AdminHandler
	// Authenticate puts the caller into the request context or rejects the request.
	Authenticate func(http.Handler) http.Handler
}

func New(s *service.Services, jwtService *auth.JWTService) *Handlers {
	return &Handlers{
		AuthHandler:     authhandlers.New(s.AuthService),
		WalletHandler:   wallethandlers.New(s.WalletService),
		PurchaseHandler: purchasehandlers.New(s.PurchaseService),
		ReceiptHandler:  receipthandlers.New(s.ReceiptService),
		AdminHandler:    adminhandlers.New(s.AdminService),
		Authenticate:    jwtService.Middleware,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Authorization"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/telegram", h.AuthHandler.Login)

	r.Route("/api/user", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Get("/balance", h.WalletHandler.GetBalance)
		r.Get("/transactions", h.WalletHandler.GetTransactions)
		r.Post("/receipts", h.ReceiptHandler.Submit)
		r.Post("/purchases", h.PurchaseHandler.Purchase)
		r.Get("/discounts/{code}", h.PurchaseHandler.Quote)
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.PurchaseHandler.GetAccounts)
			r.Post("/{id}/renew", h.PurchaseHandler.Renew)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.Authenticate, auth.AdminOnly)
		r.Post("/receipts/{id}/approve", h.ReceiptHandler.Approve)
		r.Post("/receipts/{id}/reject", h.ReceiptHandler.Reject)
		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Post("/deactivate", h.AdminHandler.DeactivateAccount)
			r.Delete("/", h.AdminHandler.DeleteAccount)
		})
		r.Post("/transactions/{id}/refund", h.AdminHandler.Refund)
		r.Post("/users/{id}/deposit", h.AdminHandler.Deposit)
	})

	return r
}
