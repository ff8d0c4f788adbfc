package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/vpnshop/internal/domain"
)

func NewMock(t *testing.T) (*AdminHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func request(method, target, body, id string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestDeactivateAccount(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		id           string
		prepareMock  func()
		expectedCode int
		expectedBody string
	}{
		{
			name: "Deactivated",
			id:   "10",
			prepareMock: func() {
				service.EXPECT().DeactivateAccount(gomock.Any(), int64(10)).
					Return(&domain.ClientAccount{ID: 10, Status: domain.AccountDisabled}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `"status":"DISABLED"`,
		},
		{
			name:         "Bad id",
			id:           "0",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Already switched",
			id:   "10",
			prepareMock: func() {
				service.EXPECT().DeactivateAccount(gomock.Any(), int64(10)).
					Return(nil, fmt.Errorf("SWITCHED -> DISABLED: %w", domain.ErrIllegalTransition))
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Compensation failed",
			id:   "10",
			prepareMock: func() {
				service.EXPECT().DeactivateAccount(gomock.Any(), int64(10)).
					Return(nil, &domain.CompensationError{RemoteUUID: "u", Cause: errors.New("db"), CompensationErr: errors.New("panel")})
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()

			handler.DeactivateAccount(w, request(http.MethodPost, "/api/admin/accounts/"+tt.id+"/deactivate", "", tt.id))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().DeleteAccount(gomock.Any(), int64(10)).Return(nil)
	w := httptest.NewRecorder()
	handler.DeleteAccount(w, request(http.MethodDelete, "/api/admin/accounts/10", "", "10"))
	assert.Equal(t, http.StatusNoContent, w.Code)

	service.EXPECT().DeleteAccount(gomock.Any(), int64(11)).Return(fmt.Errorf("client account 11: %w", domain.ErrNotFound))
	w = httptest.NewRecorder()
	handler.DeleteAccount(w, request(http.MethodDelete, "/api/admin/accounts/11", "", "11"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefund(t *testing.T) {
	handler, service := NewMock(t)
	original := int64(30)
	refund := &domain.Transaction{ID: 41, UserID: 1, Amount: 30000, Type: domain.TransactionRefund, Status: domain.TransactionSuccess, OriginalID: &original}

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Full refund without body",
			prepareMock: func() {
				service.EXPECT().Refund(gomock.Any(), int64(30), int64(0), "").Return(refund, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Partial refund",
			body: `{"amount":10000,"description":"outage"}`,
			prepareMock: func() {
				service.EXPECT().Refund(gomock.Any(), int64(30), int64(10000), "outage").Return(refund, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Broken body",
			body:         `{"amount":`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Negative amount",
			body: `{"amount":-1}`,
			prepareMock: func() {
				service.EXPECT().Refund(gomock.Any(), int64(30), int64(-1), "").
					Return(nil, domain.NewValidationError("amount", "must be positive"))
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()

			handler.Refund(w, request(http.MethodPost, "/api/admin/transactions/30/refund", tt.body, "30"))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"type":"REFUND"`)
			}
		})
	}
}

func TestDeposit(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Deposit(gomock.Any(), int64(1), int64(50000), "bank").
		Return(&domain.Transaction{ID: 40, UserID: 1, Amount: 50000, Type: domain.TransactionDeposit, Status: domain.TransactionSuccess}, nil)
	w := httptest.NewRecorder()
	handler.Deposit(w, request(http.MethodPost, "/api/admin/users/1/deposit", `{"amount":50000,"description":"bank"}`, "1"))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	handler.Deposit(w, request(http.MethodPost, "/api/admin/users/x/deposit", `{"amount":1}`, "x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
