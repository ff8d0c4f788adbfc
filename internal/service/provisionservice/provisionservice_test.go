package provisionservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/panel"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const fixedUUID = "2f1c6a8e-1111-2222-3333-444455556666"

type mocks struct {
	accounts *MockAccountRepo
	catalog  *MockCatalogRepo
	gateways *MockGateways
	client   *panel.MockClient
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		accounts: NewMockAccountRepo(ctrl),
		catalog:  NewMockCatalogRepo(ctrl),
		gateways: NewMockGateways(ctrl),
		client:   panel.NewMockClient(ctrl),
	}
	service := New(m.accounts, m.catalog, m.gateways)
	service.now = func() time.Time { return now }
	service.newUUID = func() string { return fixedUUID }
	return service, m
}

func request() ProvisionRequest {
	return ProvisionRequest{
		User:    &domain.User{ID: 1, TelegramID: 1001},
		Plan:    &domain.Plan{ID: 4, DurationDays: 30, TrafficGB: 50, Price: 30000},
		Inbound: &domain.Inbound{ID: 3, PanelID: 2, RemoteID: 7},
		Panel:   &domain.Panel{ID: 2, BaseURL: "https://panel.example.com"},
	}
}

func account(status domain.AccountStatus, expires time.Time) *domain.ClientAccount {
	return &domain.ClientAccount{
		ID:         10,
		UserID:     1,
		PanelID:    2,
		InboundID:  3,
		PlanID:     4,
		RemoteUUID: fixedUUID,
		Email:      "u1-2f1c6a8e",
		ExpiresAt:  expires,
		DataLimit:  50 << 30,
		Status:     status,
		Enabled:    status == domain.AccountActive,
		TelegramID: 1001,
	}
}

func (m *mocks) expectTarget() {
	m.catalog.EXPECT().GetInbound(gomock.Any(), int64(3)).Return(&domain.Inbound{ID: 3, PanelID: 2, RemoteID: 7}, nil)
	m.catalog.EXPECT().GetPanel(gomock.Any(), int64(2)).Return(&domain.Panel{ID: 2, BaseURL: "https://panel.example.com"}, nil)
	m.gateways.EXPECT().Gateway(gomock.Any()).Return(m.client, nil)
}

func TestProvision(t *testing.T) {
	service, m := NewMock(t)
	req := request()
	orderID := int64(55)
	req.OrderID = &orderID

	m.gateways.EXPECT().Gateway(req.Panel).Return(m.client, nil)
	m.client.EXPECT().CreateClient(gomock.Any(), int64(7), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, spec domain.ClientSpec) (string, error) {
			assert.Equal(t, fixedUUID, spec.UUID)
			assert.Equal(t, "u1-2f1c6a8e", spec.Email)
			assert.Equal(t, "2f1c6a8e11112222", spec.SubID)
			assert.True(t, spec.Enabled)
			assert.Equal(t, now.AddDate(0, 0, 30), spec.ExpiresAt)
			assert.Equal(t, int64(50<<30), spec.TotalBytes)
			assert.Equal(t, int64(1001), spec.TelegramID)
			return fixedUUID, nil
		})
	m.client.EXPECT().GetConfigURL(gomock.Any(), int64(7), fixedUUID).Return("https://sub.example.com/sub/2f1c6a8e11112222")
	m.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.ClientAccount) (*domain.ClientAccount, error) {
			assert.Equal(t, domain.AccountActive, a.Status)
			assert.Equal(t, &orderID, a.OrderID)
			assert.Equal(t, int64(3), a.InboundID)
			assert.Equal(t, int64(1001), a.TelegramID)
			created := *a
			created.ID = 10
			return &created, nil
		})

	got, err := service.Provision(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, fixedUUID, got.RemoteUUID)
	assert.Equal(t, "https://sub.example.com/sub/2f1c6a8e11112222", got.ConfigURL)
}

func TestProvision_RemoteFailureWritesNothing(t *testing.T) {
	service, m := NewMock(t)
	req := request()
	remoteErr := &domain.ExternalServiceError{Kind: domain.ExternalConnection, Op: "addClient", Err: errors.New("refused")}

	m.gateways.EXPECT().Gateway(req.Panel).Return(m.client, nil)
	m.client.EXPECT().CreateClient(gomock.Any(), int64(7), gomock.Any()).Return("", remoteErr)

	got, err := service.Provision(context.Background(), req)
	assert.Nil(t, got)
	assert.True(t, domain.IsExternalKind(err, domain.ExternalConnection))
}

func TestProvision_Compensation(t *testing.T) {
	tests := []struct {
		name          string
		deleteErr     error
		wantCompError bool
		wantResult    string
	}{
		{
			name:       "Remote client removed",
			wantResult: "ok",
		},
		{
			name:          "Remote delete fails too",
			deleteErr:     errors.New("panel gone"),
			wantCompError: true,
			wantResult:    "failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			req := request()
			before := testutil.ToFloat64(compensations.WithLabelValues("provision", tt.wantResult))

			m.gateways.EXPECT().Gateway(req.Panel).Return(m.client, nil)
			m.client.EXPECT().CreateClient(gomock.Any(), int64(7), gomock.Any()).Return(fixedUUID, nil)
			m.client.EXPECT().GetConfigURL(gomock.Any(), int64(7), fixedUUID).Return("")
			m.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			m.client.EXPECT().DeleteClient(gomock.Any(), int64(7), fixedUUID).
				DoAndReturn(func(ctx context.Context, _ int64, _ string) (bool, error) {
					_, ok := ctx.Deadline()
					assert.True(t, ok)
					return tt.deleteErr == nil, tt.deleteErr
				})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			got, err := service.Provision(ctx, req)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, domain.ErrPersistence)

			var compErr *domain.CompensationError
			assert.Equal(t, tt.wantCompError, errors.As(err, &compErr))
			if tt.wantCompError {
				assert.Equal(t, fixedUUID, compErr.RemoteUUID)
			}
			after := testutil.ToFloat64(compensations.WithLabelValues("provision", tt.wantResult))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestProvision_CompensatesAfterCancel(t *testing.T) {
	service, m := NewMock(t)
	req := request()
	ctx, cancel := context.WithCancel(context.Background())

	m.gateways.EXPECT().Gateway(req.Panel).Return(m.client, nil)
	m.client.EXPECT().CreateClient(gomock.Any(), int64(7), gomock.Any()).Return(fixedUUID, nil)
	m.client.EXPECT().GetConfigURL(gomock.Any(), int64(7), fixedUUID).Return("")
	m.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.ClientAccount) (*domain.ClientAccount, error) {
			cancel()
			return nil, ctx.Err()
		})
	m.client.EXPECT().DeleteClient(gomock.Any(), int64(7), fixedUUID).
		DoAndReturn(func(ctx context.Context, _ int64, _ string) (bool, error) {
			assert.NoError(t, ctx.Err())
			return true, nil
		})

	_, err := service.Provision(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenew(t *testing.T) {
	tests := []struct {
		name        string
		status      domain.AccountStatus
		expires     time.Time
		wantExpires time.Time
	}{
		{
			name:        "Active account extends from its expiry",
			status:      domain.AccountActive,
			expires:     now.AddDate(0, 0, 10),
			wantExpires: now.AddDate(0, 0, 40),
		},
		{
			name:        "Expired account extends from now",
			status:      domain.AccountExpired,
			expires:     now.AddDate(0, 0, -5),
			wantExpires: now.AddDate(0, 0, 30),
		},
		{
			name:        "Disabled account is reactivated",
			status:      domain.AccountDisabled,
			expires:     now.AddDate(0, 0, 2),
			wantExpires: now.AddDate(0, 0, 32),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			plan := &domain.Plan{ID: 5, DurationDays: 30, TrafficGB: 100}
			m.expectTarget()
			m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ int64, _ string, spec domain.ClientSpec) (bool, error) {
					assert.True(t, spec.Enabled)
					assert.Equal(t, tt.wantExpires, spec.ExpiresAt)
					assert.Equal(t, int64(100<<30), spec.TotalBytes)
					assert.Equal(t, int64(1001), spec.TelegramID)
					return true, nil
				})
			m.accounts.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

			got, err := service.Renew(context.Background(), account(tt.status, tt.expires), plan)
			require.NoError(t, err)
			assert.Equal(t, domain.AccountActive, got.Status)
			assert.True(t, got.Enabled)
			assert.Equal(t, int64(5), got.PlanID)
			assert.Equal(t, tt.wantExpires, got.ExpiresAt)
		})
	}
}

func TestRenew_Errors(t *testing.T) {
	plan := &domain.Plan{ID: 5, DurationDays: 30}

	t.Run("Switched account", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Renew(context.Background(), account(domain.AccountSwitched, now), plan)
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})

	t.Run("Client missing on panel", func(t *testing.T) {
		service, m := NewMock(t)
		m.expectTarget()
		m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).Return(false, nil)

		_, err := service.Renew(context.Background(), account(domain.AccountActive, now), plan)
		assert.True(t, domain.IsExternalKind(err, domain.ExternalOperationFailed))
	})

	t.Run("Local write fails, previous state restored", func(t *testing.T) {
		service, m := NewMock(t)
		acc := account(domain.AccountActive, now.AddDate(0, 0, 3))
		m.expectTarget()
		gomock.InOrder(
			m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).Return(true, nil),
			m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ int64, _ string, spec domain.ClientSpec) (bool, error) {
					assert.Equal(t, acc.ExpiresAt, spec.ExpiresAt)
					assert.Equal(t, acc.DataLimit, spec.TotalBytes)
					return true, nil
				}),
		)
		m.accounts.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := service.Renew(context.Background(), acc, plan)
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("Inbound missing", func(t *testing.T) {
		service, m := NewMock(t)
		m.catalog.EXPECT().GetInbound(gomock.Any(), int64(3)).Return(nil, nil)

		_, err := service.Renew(context.Background(), account(domain.AccountActive, now), plan)
		assert.ErrorIs(t, err, domain.ErrIntegrity)
	})
}

func TestRestore(t *testing.T) {
	cause := errors.New("commit tx: connection reset")
	acc := account(domain.AccountActive, now.AddDate(0, 0, 3))

	tests := []struct {
		name      string
		mockSetup func(m *mocks)
		wantComp  bool
	}{
		{
			name: "Previous state pushed back",
			mockSetup: func(m *mocks) {
				m.expectTarget()
				m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ int64, _ string, spec domain.ClientSpec) (bool, error) {
						assert.Equal(t, acc.ExpiresAt, spec.ExpiresAt)
						assert.Equal(t, acc.DataLimit, spec.TotalBytes)
						assert.Equal(t, int64(1001), spec.TelegramID)
						assert.True(t, spec.Enabled)
						return true, nil
					})
			},
		},
		{
			name: "Panel unreachable",
			mockSetup: func(m *mocks) {
				m.expectTarget()
				m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).
					Return(false, &domain.ExternalServiceError{Kind: domain.ExternalConnection, Op: "updateClient"})
			},
			wantComp: true,
		},
		{
			name: "Client gone from panel",
			mockSetup: func(m *mocks) {
				m.expectTarget()
				m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).Return(false, nil)
			},
			wantComp: true,
		},
		{
			name: "Inbound lookup fails",
			mockSetup: func(m *mocks) {
				m.catalog.EXPECT().GetInbound(gomock.Any(), int64(3)).Return(nil, errors.New("db down"))
			},
			wantComp: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.mockSetup(m)

			err := service.Restore(context.Background(), acc, cause)
			assert.ErrorIs(t, err, cause)
			var comp *domain.CompensationError
			assert.Equal(t, tt.wantComp, errors.As(err, &comp))
		})
	}
}

func TestDisable(t *testing.T) {
	tests := []struct {
		name       string
		expire     bool
		found      bool
		wantStatus domain.AccountStatus
	}{
		{name: "Deactivate", found: true, wantStatus: domain.AccountDisabled},
		{name: "Expire", expire: true, found: true, wantStatus: domain.AccountExpired},
		{name: "Expire with client gone from panel", expire: true, wantStatus: domain.AccountExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			m.expectTarget()
			m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ int64, _ string, spec domain.ClientSpec) (bool, error) {
					assert.False(t, spec.Enabled)
					assert.Equal(t, int64(1001), spec.TelegramID)
					return tt.found, nil
				})
			m.accounts.EXPECT().Update(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, a *domain.ClientAccount) error {
					assert.Equal(t, tt.wantStatus, a.Status)
					assert.False(t, a.Enabled)
					return nil
				})

			acc := account(domain.AccountActive, now)
			var (
				got *domain.ClientAccount
				err error
			)
			if tt.expire {
				got, err = service.Expire(context.Background(), acc)
			} else {
				got, err = service.Deactivate(context.Background(), acc)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, domain.AccountActive, acc.Status)
		})
	}
}

func TestDisable_Errors(t *testing.T) {
	t.Run("Remote failure leaves the account alone", func(t *testing.T) {
		service, m := NewMock(t)
		m.expectTarget()
		m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).
			Return(false, &domain.ExternalServiceError{Kind: domain.ExternalAuthentication, Op: "login"})

		_, err := service.Expire(context.Background(), account(domain.AccountActive, now))
		assert.True(t, domain.IsExternalKind(err, domain.ExternalAuthentication))
	})

	t.Run("Switched account can't expire", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Expire(context.Background(), account(domain.AccountSwitched, now))
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})

	t.Run("Local failure re-enables the client", func(t *testing.T) {
		service, m := NewMock(t)
		m.expectTarget()
		gomock.InOrder(
			m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).Return(true, nil),
			m.client.EXPECT().UpdateClient(gomock.Any(), int64(7), fixedUUID, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ int64, _ string, spec domain.ClientSpec) (bool, error) {
					assert.True(t, spec.Enabled)
					return false, errors.New("timeout")
				}),
		)
		m.accounts.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := service.Deactivate(context.Background(), account(domain.AccountActive, now))
		var compErr *domain.CompensationError
		assert.ErrorAs(t, err, &compErr)
	})
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name      string
		remoteErr error
		found     bool
	}{
		{name: "Removed everywhere", found: true},
		{name: "Already gone from panel"},
		{name: "Panel unreachable", remoteErr: errors.New("refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			m.expectTarget()
			m.client.EXPECT().DeleteClient(gomock.Any(), int64(7), fixedUUID).Return(tt.found, tt.remoteErr)
			m.accounts.EXPECT().Delete(gomock.Any(), int64(10)).Return(true, nil)

			err := service.Delete(context.Background(), account(domain.AccountActive, now))
			assert.NoError(t, err)
		})
	}
}

func TestDelete_LocalFailure(t *testing.T) {
	service, m := NewMock(t)
	m.catalog.EXPECT().GetInbound(gomock.Any(), int64(3)).Return(nil, errors.New("db down"))
	m.accounts.EXPECT().Delete(gomock.Any(), int64(10)).Return(false, errors.New("db down"))

	err := service.Delete(context.Background(), account(domain.AccountActive, now))
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
