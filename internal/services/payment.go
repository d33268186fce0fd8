package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
)

// ErrInvalidInput marks client-side validation failures (HTTP 400 territory).
var ErrInvalidInput = errors.New("invalid input")

// StkPushRequest is one push-initiation attempt as received from the caller.
// Amount arrives as a string because it may come from query parameters.
type StkPushRequest struct {
	Phone       string
	Amount      string
	UserID      string
	AccountRef  string
	Description string
}

// StkPushResult reports the submission outcome. A failed upstream response is
// still a result: Status and Body carry whatever the gateway said.
type StkPushResult struct {
	TransactionID     string
	Status            int
	Body              map[string]interface{}
	CheckoutRequestID string
}

type PaymentService struct {
	transactions TransactionStore
	gateway      DarajaGateway
	resolve      CredentialResolver
	now          func() time.Time
}

func NewPaymentService(transactions TransactionStore, gateway DarajaGateway, resolve CredentialResolver) *PaymentService {
	return &PaymentService{
		transactions: transactions,
		gateway:      gateway,
		resolve:      resolve,
		now:          time.Now,
	}
}

// InitiateSTKPush validates the request, obtains a token, persists the
// pending record and submits the push. The pending record is written before
// the upstream call so a crash in between still leaves an auditable trail,
// and it is updated again once the call resolves, on every path.
func (s *PaymentService) InitiateSTKPush(ctx context.Context, req StkPushRequest) (*StkPushResult, error) {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(req.Amount), 10, 64)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive integer", ErrInvalidInput)
	}

	msisdn, err := normalizePhoneForDaraja(phone)
	if err != nil {
		return nil, err
	}

	creds, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	token, err := s.gateway.FetchToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	timestamp := darajaTimestamp(s.now())
	password := darajaPassword(creds.Shortcode, creds.Passkey, timestamp)

	accountRef := req.AccountRef
	if accountRef == "" {
		accountRef = msisdn
	}
	description := req.Description
	if description == "" {
		description = defaultDescription
	}

	payload := map[string]interface{}{
		"BusinessShortCode": creds.Shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   transactionType,
		"Amount":            amount,
		"PartyA":            msisdn,
		"PartyB":            creds.Shortcode,
		"PhoneNumber":       msisdn,
		"CallBackURL":       creds.CallbackURL,
		"AccountReference":  accountRef,
		"TransactionDesc":   description,
	}

	tx := &models.PendingTransaction{
		UserID:      req.UserID,
		Msisdn:      msisdn,
		Amount:      amount,
		AccountRef:  accountRef,
		Description: description,
		Status:      models.StatusInitiated,
		Request:     payload,
	}
	id, err := s.transactions.Insert(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("persist pending transaction: %w", err)
	}

	result, pushErr := s.gateway.STKPush(ctx, creds, token, payload)
	if pushErr != nil {
		// Transport-level failure: record it before bubbling up so the
		// create-before-call / update-after-call ordering holds.
		respBody := map[string]interface{}{"error": pushErr.Error()}
		if err := s.transactions.MarkSubmitted(ctx, id, models.StatusFailed, 0, respBody, ""); err != nil {
			log.Printf("failed to record stk push transport error on transaction %s: %v", id, err)
		}
		return nil, pushErr
	}

	checkoutRequestID := extractCheckoutRequestID(result.Body)
	status := models.StatusFailed
	if result.Accepted() {
		status = models.StatusPending
	}
	if err := s.transactions.MarkSubmitted(ctx, id, status, result.Status, result.Body, checkoutRequestID); err != nil {
		return nil, fmt.Errorf("update pending transaction %s: %w", id, err)
	}

	log.Printf("stk push submitted: transaction=%s msisdn=%s amount=%d status=%d checkoutRequestId=%s",
		id, msisdn, amount, result.Status, checkoutRequestID)

	return &StkPushResult{
		TransactionID:     id,
		Status:            result.Status,
		Body:              result.Body,
		CheckoutRequestID: checkoutRequestID,
	}, nil
}

// ListTransactions returns transactions newest first, optionally filtered by
// lifecycle status.
func (s *PaymentService) ListTransactions(ctx context.Context, status string) ([]models.PendingTransaction, error) {
	return s.transactions.List(ctx, status)
}

// GetTransaction fetches a single transaction by id.
func (s *PaymentService) GetTransaction(ctx context.Context, id string) (*models.PendingTransaction, error) {
	return s.transactions.Get(ctx, id)
}
