package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
	"github.com/wavelinknet/darajapay-gobackend/internal/repository"
)

func stkCallbackBody(checkoutRequestID string, resultCode interface{}, resultDesc string) map[string]interface{} {
	return map[string]interface{}{
		"Body": map[string]interface{}{
			"stkCallback": map[string]interface{}{
				"CheckoutRequestID": checkoutRequestID,
				"ResultCode":        resultCode,
				"ResultDesc":        resultDesc,
			},
		},
	}
}

func TestLocateStkCallback(t *testing.T) {
	inner := map[string]interface{}{"CheckoutRequestID": "abc"}

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{name: "nested under Body", payload: map[string]interface{}{"Body": map[string]interface{}{"stkCallback": inner}}},
		{name: "top-level PascalCase", payload: map[string]interface{}{"StkCallback": inner}},
		{name: "top-level camelCase", payload: map[string]interface{}{"stkCallback": inner}},
		{name: "already flattened", payload: inner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := locateStkCallback(tt.payload)
			require.Equal(t, "abc", stringField(cb, "CheckoutRequestID", "checkoutRequestID"))
		})
	}
}

func TestIntField(t *testing.T) {
	code := intField(map[string]interface{}{"ResultCode": float64(0)}, "ResultCode", "resultCode")
	require.NotNil(t, code)
	require.Equal(t, 0, *code)

	code = intField(map[string]interface{}{"resultCode": 1032}, "ResultCode", "resultCode")
	require.NotNil(t, code)
	require.Equal(t, 1032, *code)

	// A numeric string is not coerced.
	require.Nil(t, intField(map[string]interface{}{"ResultCode": "0"}, "ResultCode", "resultCode"))
	require.Nil(t, intField(map[string]interface{}{}, "ResultCode", "resultCode"))
}

func TestHandleCallback_SuccessfulReconciliation(t *testing.T) {
	ctx := context.Background()
	transactions := new(TransactionStoreMock)
	callbacks := new(CallbackStoreMock)

	var saved *models.CallbackResult
	callbacks.On("Save", ctx, mock.AnythingOfType("*models.CallbackResult")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.CallbackResult) }).
		Return(nil)

	tx := &models.PendingTransaction{ID: "tx1", CheckoutRequestID: "abc123", Status: models.StatusPending}
	transactions.On("FindByCheckoutRequestID", ctx, "abc123").Return(tx, nil)
	transactions.On("MarkResolved", ctx, "tx1", models.StatusSuccess, mock.Anything, "Success", mock.Anything).Return(nil)

	svc := NewCallbackService(transactions, callbacks)
	err := svc.HandleCallback(ctx, stkCallbackBody("abc123", float64(0), "Success"))
	require.NoError(t, err)

	require.NotNil(t, saved)
	require.Equal(t, "abc123", saved.CheckoutRequestID)
	require.NotNil(t, saved.ResultCode)
	require.Equal(t, 0, *saved.ResultCode)
	require.Equal(t, "Success", saved.ResultDesc)
	require.NotNil(t, saved.Raw["Body"], "the full raw payload is retained")

	transactions.AssertExpectations(t)
	callbacks.AssertExpectations(t)
}

func TestHandleCallback_FailureResultCode(t *testing.T) {
	ctx := context.Background()
	transactions := new(TransactionStoreMock)
	callbacks := new(CallbackStoreMock)

	callbacks.On("Save", ctx, mock.Anything).Return(nil)
	tx := &models.PendingTransaction{ID: "tx1", CheckoutRequestID: "abc123"}
	transactions.On("FindByCheckoutRequestID", ctx, "abc123").Return(tx, nil)
	transactions.On("MarkResolved", ctx, "tx1", models.StatusFailed, mock.Anything, "Request cancelled by user", mock.Anything).Return(nil)

	svc := NewCallbackService(transactions, callbacks)
	err := svc.HandleCallback(ctx, stkCallbackBody("abc123", float64(1032), "Request cancelled by user"))
	require.NoError(t, err)
	transactions.AssertExpectations(t)
}

func TestHandleCallback_NumericStringResultCodeIsNotSuccess(t *testing.T) {
	ctx := context.Background()
	transactions := new(TransactionStoreMock)
	callbacks := new(CallbackStoreMock)

	callbacks.On("Save", ctx, mock.Anything).Return(nil)
	tx := &models.PendingTransaction{ID: "tx1", CheckoutRequestID: "abc123"}
	transactions.On("FindByCheckoutRequestID", ctx, "abc123").Return(tx, nil)
	transactions.On("MarkResolved", ctx, "tx1", models.StatusFailed, (*int)(nil), "Success", mock.Anything).Return(nil)

	svc := NewCallbackService(transactions, callbacks)
	err := svc.HandleCallback(ctx, stkCallbackBody("abc123", "0", "Success"))
	require.NoError(t, err)
	transactions.AssertExpectations(t)
}

func TestHandleCallback_NoMatchingTransaction(t *testing.T) {
	ctx := context.Background()
	transactions := new(TransactionStoreMock)
	callbacks := new(CallbackStoreMock)

	callbacks.On("Save", ctx, mock.Anything).Return(nil)
	transactions.On("FindByCheckoutRequestID", ctx, "unknown").Return(nil, repository.ErrNotFound)

	svc := NewCallbackService(transactions, callbacks)
	err := svc.HandleCallback(ctx, stkCallbackBody("unknown", float64(0), "Success"))
	require.NoError(t, err, "an unknown callback is not an error")

	// The raw result was still persisted; nothing was resolved.
	callbacks.AssertCalled(t, "Save", ctx, mock.Anything)
	transactions.AssertNotCalled(t, "MarkResolved", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_NoCheckoutRequestID(t *testing.T) {
	ctx := context.Background()
	transactions := new(TransactionStoreMock)
	callbacks := new(CallbackStoreMock)

	var saved *models.CallbackResult
	callbacks.On("Save", ctx, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.CallbackResult) }).
		Return(nil)

	svc := NewCallbackService(transactions, callbacks)
	err := svc.HandleCallback(ctx, map[string]interface{}{"something": "else"})
	require.NoError(t, err)
	require.Equal(t, "", saved.CheckoutRequestID)

	// No lookup without a join key.
	transactions.AssertNotCalled(t, "FindByCheckoutRequestID", mock.Anything, mock.Anything)
}

func TestHandleCallback_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	transactions := new(TransactionStoreMock)
	callbacks := new(CallbackStoreMock)

	saveErr := errors.New("write concern error")
	callbacks.On("Save", ctx, mock.Anything).Return(saveErr)

	svc := NewCallbackService(transactions, callbacks)
	err := svc.HandleCallback(ctx, stkCallbackBody("abc123", float64(0), "Success"))
	require.ErrorIs(t, err, saveErr)
	transactions.AssertNotCalled(t, "FindByCheckoutRequestID", mock.Anything, mock.Anything)
}
