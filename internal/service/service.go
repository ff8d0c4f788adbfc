package service

import (
	"github.com/GlebRadaev/vpnshop/internal/handlers/admin"
	"github.com/GlebRadaev/vpnshop/internal/handlers/auth"
	"github.com/GlebRadaev/vpnshop/internal/handlers/purchases"
	"github.com/GlebRadaev/vpnshop/internal/handlers/receipts"
	"github.com/GlebRadaev/vpnshop/internal/handlers/wallet"
	"github.com/GlebRadaev/vpnshop/internal/notify"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/GlebRadaev/vpnshop/internal/repo"
	"github.com/GlebRadaev/vpnshop/internal/service/adminservice"
	"github.com/GlebRadaev/vpnshop/internal/service/authservice"
	"github.com/GlebRadaev/vpnshop/internal/service/discountservice"
	"github.com/GlebRadaev/vpnshop/internal/service/paymentservice"
	"github.com/GlebRadaev/vpnshop/internal/service/provisionservice"
	"github.com/GlebRadaev/vpnshop/internal/service/purchaseservice"
	"github.com/GlebRadaev/vpnshop/internal/service/receiptservice"
	pkgauth "github.com/GlebRadaev/vpnshop/pkg/auth"
)

// Deps are the collaborators that are not repositories.
type Deps struct {
	TxManager       pg.TXManager
	Gateways        provisionservice.Gateways
	ReviewLock      receiptservice.ReviewLock
	Notifier        notify.Notifier
	JWT             pkgauth.JWTServiceInterface
	BotToken        string
	AdminTelegramID int64
}

type Services struct {
	AuthService     auth.Service
	WalletService   wallet.Service
	PurchaseService purchases.Service
	ReceiptService  receipts.Service
	AdminService    admin.Service

	// used by the background jobs
	Provisioner *provisionservice.Service
	Receipts    *receiptservice.Service
}

func New(repos *repo.Repositories, deps Deps) *Services {
	paymentService := paymentservice.New(repos.WalletRepo, repos.TransactionRepo, deps.TxManager)
	discountService := discountservice.New(repos.DiscountRepo)
	provisionService := provisionservice.New(repos.AccountRepo, repos.CatalogRepo, deps.Gateways)
	receiptService := receiptservice.New(
		repos.ReceiptRepo,
		repos.TransactionRepo,
		repos.OrderRepo,
		paymentService,
		deps.TxManager,
		deps.ReviewLock,
		deps.Notifier,
	)
	purchaseService := purchaseservice.New(
		repos.UserRepo,
		repos.CatalogRepo,
		repos.OrderRepo,
		repos.AccountRepo,
		paymentService,
		discountService,
		provisionService,
		deps.TxManager,
	)
	authService := authservice.New(repos.UserRepo, deps.JWT, deps.BotToken, deps.AdminTelegramID)
	adminService := adminservice.New(repos.AccountRepo, repos.TransactionRepo, provisionService, paymentService)

	return &Services{
		AuthService:     authService,
		WalletService:   paymentService,
		PurchaseService: purchaseService,
		ReceiptService:  receiptService,
		AdminService:    adminService,
		Provisioner:     provisionService,
		Receipts:        receiptService,
	}
}
