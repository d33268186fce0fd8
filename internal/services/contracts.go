package services

import (
	"context"
	"time"

	"github.com/wavelinknet/darajapay-gobackend/internal/config"
	"github.com/wavelinknet/darajapay-gobackend/internal/models"
)

// TransactionStore persists pending transactions and their state transitions.
type TransactionStore interface {
	Insert(ctx context.Context, tx *models.PendingTransaction) (string, error)
	MarkSubmitted(ctx context.Context, id, status string, respStatus int, respBody map[string]interface{}, checkoutRequestID string) error
	MarkResolved(ctx context.Context, id, status string, resultCode *int, resultDesc string, at time.Time) error
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.PendingTransaction, error)
	List(ctx context.Context, status string) ([]models.PendingTransaction, error)
	Get(ctx context.Context, id string) (*models.PendingTransaction, error)
}

// CallbackStore persists the raw gateway notifications.
type CallbackStore interface {
	Save(ctx context.Context, res *models.CallbackResult) error
}

// CustomerStore persists synced ISP customers.
type CustomerStore interface {
	Upsert(ctx context.Context, c *models.Customer) error
}

// DarajaGateway abstracts the upstream payment gateway calls.
type DarajaGateway interface {
	FetchToken(ctx context.Context, creds *config.Credentials) (string, error)
	STKPush(ctx context.Context, creds *config.Credentials, token string, payload map[string]interface{}) (*PushResult, error)
}

// CredentialResolver produces the credential bundle for one request.
type CredentialResolver func(ctx context.Context) (*config.Credentials, error)
