package repo

import (
	"github.com/GlebRadaev/vpnshop/internal/pg"
	accountrepo "github.com/GlebRadaev/vpnshop/internal/repo/account-repo"
	catalogrepo "github.com/GlebRadaev/vpnshop/internal/repo/catalog-repo"
	discountrepo "github.com/GlebRadaev/vpnshop/internal/repo/discount-repo"
	orderrepo "github.com/GlebRadaev/vpnshop/internal/repo/order-repo"
	receiptrepo "github.com/GlebRadaev/vpnshop/internal/repo/receipt-repo"
	transactionrepo "github.com/GlebRadaev/vpnshop/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/vpnshop/internal/repo/user-repo"
	walletrepo "github.com/GlebRadaev/vpnshop/internal/repo/wallet-repo"
)

// Repositories are shared by several services, each of which only sees the
// methods it declares.
type Repositories struct {
	UserRepo        *userrepo.Repository
	WalletRepo      *walletrepo.Repository
	TransactionRepo *transactionrepo.Repository
	OrderRepo       *orderrepo.Repository
	AccountRepo     *accountrepo.Repository
	CatalogRepo     *catalogrepo.Repository
	DiscountRepo    *discountrepo.Repository
	ReceiptRepo     *receiptrepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		WalletRepo:      walletrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		OrderRepo:       orderrepo.New(conn, txManager),
		AccountRepo:     accountrepo.New(conn, txManager),
		CatalogRepo:     catalogrepo.New(conn),
		DiscountRepo:    discountrepo.New(conn),
		ReceiptRepo:     receiptrepo.New(conn),
	}
}
