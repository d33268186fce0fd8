package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
	"github.com/wavelinknet/darajapay-gobackend/internal/repository"
)

type CallbackService struct {
	transactions TransactionStore
	callbacks    CallbackStore
	now          func() time.Time
}

func NewCallbackService(transactions TransactionStore, callbacks CallbackStore) *CallbackService {
	return &CallbackService{
		transactions: transactions,
		callbacks:    callbacks,
		now:          time.Now,
	}
}

// HandleCallback persists the notification unconditionally and then
// reconciles the matching pending transaction when one exists. A missing
// match is not an error; only a persistence failure is returned, which the
// handler turns into a 500 so the gateway retries.
func (s *CallbackService) HandleCallback(ctx context.Context, payload map[string]interface{}) error {
	cb := locateStkCallback(payload)
	checkoutRequestID := stringField(cb, "CheckoutRequestID", "checkoutRequestID")
	resultCode := intField(cb, "ResultCode", "resultCode")
	resultDesc := stringField(cb, "ResultDesc", "resultDesc")

	res := &models.CallbackResult{
		Raw:               payload,
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        resultCode,
		ResultDesc:        resultDesc,
		ReceivedAt:        s.now().UTC(),
	}
	if err := s.callbacks.Save(ctx, res); err != nil {
		return fmt.Errorf("persist callback result: %w", err)
	}

	if checkoutRequestID == "" {
		log.Printf("callback without CheckoutRequestID stored as %s", res.ID)
		return nil
	}

	tx, err := s.transactions.FindByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("no pending transaction matches CheckoutRequestID %s", checkoutRequestID)
			return nil
		}
		return fmt.Errorf("lookup pending transaction for %s: %w", checkoutRequestID, err)
	}

	status := models.StatusFailed
	if resultCode != nil && *resultCode == 0 {
		status = models.StatusSuccess
	}
	if err := s.transactions.MarkResolved(ctx, tx.ID, status, resultCode, resultDesc, res.ReceivedAt); err != nil {
		return fmt.Errorf("resolve transaction %s: %w", tx.ID, err)
	}

	log.Printf("callback reconciled: transaction=%s checkoutRequestId=%s status=%s", tx.ID, checkoutRequestID, status)
	return nil
}

// locateStkCallback finds the stkCallback payload inside any of the shapes
// the gateway has been seen to send: nested under Body, at the top level in
// either casing, or the body already being the payload itself. First
// structural match wins.
func locateStkCallback(payload map[string]interface{}) map[string]interface{} {
	if body, ok := payload["Body"].(map[string]interface{}); ok {
		if cb, ok := body["stkCallback"].(map[string]interface{}); ok {
			return cb
		}
	}
	if cb, ok := payload["StkCallback"].(map[string]interface{}); ok {
		return cb
	}
	if cb, ok := payload["stkCallback"].(map[string]interface{}); ok {
		return cb
	}
	return payload
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s
		}
	}
	return ""
}

// intField reads a numeric field under any of the given spellings. Numeric
// strings are deliberately not coerced.
func intField(m map[string]interface{}, keys ...string) *int {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			i := int(n)
			return &i
		case int:
			i := n
			return &i
		case int32:
			i := int(n)
			return &i
		case int64:
			i := int(n)
			return &i
		case json.Number:
			if i64, err := n.Int64(); err == nil {
				i := int(i64)
				return &i
			}
		}
	}
	return nil
}
