package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrExternalService   = errors.New("external service error")
	ErrPersistence       = errors.New("persistence error")
	ErrIntegrity         = errors.New("integrity error")
	ErrDiscountRejected  = errors.New("discount rejected")
)

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type InsufficientFundsError struct {
	UserID   int64
	Balance  int64
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for user %d: balance %d, required %d", e.UserID, e.Balance, e.Required)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

type ExternalErrorKind string

const (
	ExternalAuthentication  ExternalErrorKind = "authentication"
	ExternalConnection      ExternalErrorKind = "connection"
	ExternalOperationFailed ExternalErrorKind = "operation_failed"
)

// ExternalServiceError is raised by the panel gateway.
type ExternalServiceError struct {
	Kind ExternalErrorKind
	Op   string
	Err  error
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("panel %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("panel %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func (e *ExternalServiceError) Is(target error) bool { return target == ErrExternalService }

// IsExternalKind reports whether err is an ExternalServiceError of the given kind.
func IsExternalKind(err error, kind ExternalErrorKind) bool {
	var ext *ExternalServiceError
	return errors.As(err, &ext) && ext.Kind == kind
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// CompensationError means a local step failed after a remote side effect and the
// corrective remote call failed too. The remote client is left orphaned.
type CompensationError struct {
	RemoteUUID      string
	Cause           error
	CompensationErr error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation for remote client %s failed: %v (cause: %v)", e.RemoteUUID, e.CompensationErr, e.Cause)
}

func (e *CompensationError) Unwrap() []error {
	return []error{e.Cause, e.CompensationErr}
}

type IntegrityError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

type DiscountRejection string

const (
	DiscountNotFound  DiscountRejection = "not_found"
	DiscountInactive  DiscountRejection = "inactive"
	DiscountExpired   DiscountRejection = "expired"
	DiscountExhausted DiscountRejection = "exhausted"
	DiscountWrongUser DiscountRejection = "wrong_user"
	DiscountWrongPlan DiscountRejection = "wrong_plan"
)

type DiscountRejectedError struct {
	Code   string
	Reason DiscountRejection
}

func (e *DiscountRejectedError) Error() string {
	return fmt.Sprintf("discount code %q rejected: %s", e.Code, e.Reason)
}

func (e *DiscountRejectedError) Is(target error) bool { return target == ErrDiscountRejected }
