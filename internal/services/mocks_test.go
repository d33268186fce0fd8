package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wavelinknet/darajapay-gobackend/internal/config"
	"github.com/wavelinknet/darajapay-gobackend/internal/models"
)

type TransactionStoreMock struct {
	mock.Mock
	TransactionStore
}

func (m *TransactionStoreMock) Insert(ctx context.Context, tx *models.PendingTransaction) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *TransactionStoreMock) MarkSubmitted(ctx context.Context, id, status string, respStatus int, respBody map[string]interface{}, checkoutRequestID string) error {
	args := m.Called(ctx, id, status, respStatus, respBody, checkoutRequestID)
	return args.Error(0)
}

func (m *TransactionStoreMock) MarkResolved(ctx context.Context, id, status string, resultCode *int, resultDesc string, at time.Time) error {
	args := m.Called(ctx, id, status, resultCode, resultDesc, at)
	return args.Error(0)
}

func (m *TransactionStoreMock) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.PendingTransaction, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingTransaction), args.Error(1)
}

func (m *TransactionStoreMock) List(ctx context.Context, status string) ([]models.PendingTransaction, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingTransaction), args.Error(1)
}

func (m *TransactionStoreMock) Get(ctx context.Context, id string) (*models.PendingTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingTransaction), args.Error(1)
}

type CallbackStoreMock struct {
	mock.Mock
	CallbackStore
}

func (m *CallbackStoreMock) Save(ctx context.Context, res *models.CallbackResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

type CustomerStoreMock struct {
	mock.Mock
	CustomerStore
}

func (m *CustomerStoreMock) Upsert(ctx context.Context, c *models.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type DarajaGatewayMock struct {
	mock.Mock
	DarajaGateway
}

func (m *DarajaGatewayMock) FetchToken(ctx context.Context, creds *config.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *DarajaGatewayMock) STKPush(ctx context.Context, creds *config.Credentials, token string, payload map[string]interface{}) (*PushResult, error) {
	args := m.Called(ctx, creds, token, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PushResult), args.Error(1)
}

func testCredentials() *config.Credentials {
	return &config.Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		Passkey:        "pk",
		Shortcode:      "600123",
		OAuthURL:       "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials",
		StkURL:         "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest",
		CallbackURL:    "https://bridge.example.com/api/daraja/callback",
	}
}

func staticResolver(creds *config.Credentials, err error) CredentialResolver {
	return func(ctx context.Context) (*config.Credentials, error) {
		return creds, err
	}
}
