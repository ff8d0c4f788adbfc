package discountservice

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/vpnshop/internal/domain"
)

type Repo interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	IncrementUse(ctx context.Context, id int64) (bool, error)
}

type Result struct {
	Code        *domain.DiscountCode
	FinalAmount int64
	Discount    int64
}

var hundred = decimal.NewFromInt(100)

type Service struct {
	repo Repo
	now  func() time.Time
}

func New(repo Repo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Quote prices originalAmount with the code without consuming a use.
func (s *Service) Quote(ctx context.Context, code string, userID, planID, originalAmount int64) (*Result, error) {
	d, err := s.validate(ctx, code, userID, planID, originalAmount)
	if err != nil {
		return nil, err
	}
	return price(d, originalAmount), nil
}

// ValidateAndApply prices originalAmount with the code and consumes one use of it.
// Losing the race for the last use is reported as an exhausted code.
func (s *Service) ValidateAndApply(ctx context.Context, code string, userID, planID, originalAmount int64) (*Result, error) {
	d, err := s.validate(ctx, code, userID, planID, originalAmount)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.IncrementUse(ctx, d.ID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "increment discount use", Err: err}
	}
	if !ok {
		return nil, &domain.DiscountRejectedError{Code: d.Code, Reason: domain.DiscountExhausted}
	}

	result := price(d, originalAmount)
	zap.L().Info("discount applied",
		zap.String("code", d.Code),
		zap.Int64("user_id", userID),
		zap.Int64("original", originalAmount),
		zap.Int64("final", result.FinalAmount),
	)
	return result, nil
}

func (s *Service) validate(ctx context.Context, code string, userID, planID, originalAmount int64) (*domain.DiscountCode, error) {
	if originalAmount < 0 {
		return nil, domain.NewValidationError("amount", "must not be negative")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &domain.DiscountRejectedError{Code: code, Reason: domain.DiscountNotFound}
	}

	d, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load discount code", Err: err}
	}

	var reason domain.DiscountRejection
	switch {
	case d == nil:
		reason = domain.DiscountNotFound
	case !d.IsActive:
		reason = domain.DiscountInactive
	case d.ExpiresAt != nil && !s.now().Before(*d.ExpiresAt):
		reason = domain.DiscountExpired
	case d.UseCount >= d.MaxUses:
		reason = domain.DiscountExhausted
	case d.UserID != nil && *d.UserID != userID:
		reason = domain.DiscountWrongUser
	case d.PlanID != nil && *d.PlanID != planID:
		reason = domain.DiscountWrongPlan
	}
	if reason != "" {
		zap.L().Info("discount rejected", zap.String("code", code), zap.String("reason", string(reason)))
		return nil, &domain.DiscountRejectedError{Code: code, Reason: reason}
	}
	return d, nil
}

// price keeps 0 <= final <= original. Percentages above 100 count as 100 and the
// discounted part is rounded down.
func price(d *domain.DiscountCode, originalAmount int64) *Result {
	original := decimal.NewFromInt(originalAmount)

	var discount decimal.Decimal
	switch d.DiscountType {
	case domain.DiscountPercentage:
		pct := decimal.Min(decimal.NewFromInt(d.Value), hundred)
		discount = original.Mul(pct).Div(hundred).Floor()
	default:
		discount = decimal.Min(decimal.NewFromInt(d.Value), original)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	final := original.Sub(discount)
	return &Result{
		Code:        d,
		FinalAmount: final.IntPart(),
		Discount:    discount.IntPart(),
	}
}
