package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
	"github.com/wavelinknet/darajapay-gobackend/internal/services"
)

type PaymentServiceMock struct {
	mock.Mock
	PaymentServiceContract
}

func (m *PaymentServiceMock) InitiateSTKPush(ctx context.Context, req services.StkPushRequest) (*services.StkPushResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StkPushResult), args.Error(1)
}

func (m *PaymentServiceMock) ListTransactions(ctx context.Context, status string) ([]models.PendingTransaction, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingTransaction), args.Error(1)
}

func (m *PaymentServiceMock) GetTransaction(ctx context.Context, id string) (*models.PendingTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingTransaction), args.Error(1)
}

type CallbackProcessorMock struct {
	mock.Mock
	CallbackProcessorContract
}

func (m *CallbackProcessorMock) HandleCallback(ctx context.Context, payload map[string]interface{}) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type CustomerSyncerMock struct {
	mock.Mock
	CustomerSyncerContract
}

func (m *CustomerSyncerMock) SyncCustomers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
