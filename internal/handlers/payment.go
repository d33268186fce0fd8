package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
	"github.com/wavelinknet/darajapay-gobackend/internal/repository"
	"github.com/wavelinknet/darajapay-gobackend/internal/services"
)

type PaymentServiceContract interface {
	InitiateSTKPush(ctx context.Context, req services.StkPushRequest) (*services.StkPushResult, error)
	ListTransactions(ctx context.Context, status string) ([]models.PendingTransaction, error)
	GetTransaction(ctx context.Context, id string) (*models.PendingTransaction, error)
}

type PaymentHandler struct {
	service PaymentServiceContract
}

func NewPaymentHandler(service PaymentServiceContract) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// StkPush accepts phone/amount (plus optional uid, accountRef, description)
// from the JSON body or, failing that, the query string. An upstream rejection
// still answers 200 with the gateway's verdict as data; only validation (400)
// and infrastructure failures (502) use error statuses.
func (h *PaymentHandler) StkPush(w http.ResponseWriter, r *http.Request) {
	fields := parseRequestFields(r)
	req := services.StkPushRequest{
		Phone:       fields.Get("phone"),
		Amount:      fields.Get("amount"),
		UserID:      fields.Get("uid"),
		AccountRef:  fields.Get("accountRef"),
		Description: fields.Get("description"),
	}

	result, err := h.service.InitiateSTKPush(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
			return
		}
		log.Printf("stk push failed: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":   "stk_push_failed",
			"details": err.Error(),
		})
		return
	}

	resp := map[string]interface{}{
		"ok":     true,
		"status": result.Status,
		"data":   result.Body,
	}
	if result.CheckoutRequestID != "" {
		resp["checkoutRequestId"] = result.CheckoutRequestID
	} else {
		resp["checkoutRequestId"] = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTransactions lists transactions, optionally filtered by status.
func (h *PaymentHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", models.StatusInitiated, models.StatusPending, models.StatusSuccess, models.StatusFailed:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid status filter"})
		return
	}

	txs, err := h.service.ListTransactions(r.Context(), status)
	if err != nil {
		log.Printf("failed to list transactions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "failed to fetch transactions"})
		return
	}
	if txs == nil {
		txs = []models.PendingTransaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// GetTransaction fetches one transaction by id.
func (h *PaymentHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["transactionID"]
	tx, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "transaction not found"})
			return
		}
		log.Printf("failed to fetch transaction %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "failed to fetch transaction"})
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Preflight answers CORS preflight for the public endpoints.
func Preflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusNoContent)
}

// requestFields reads a field from the JSON body first and the query string
// second, rendering JSON numbers back to text so "amount": 100 and
// ?amount=100 behave the same.
type requestFields struct {
	body  map[string]interface{}
	query map[string][]string
}

func parseRequestFields(r *http.Request) requestFields {
	f := requestFields{query: r.URL.Query()}
	if r.Body != nil {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			f.body = body
		}
	}
	return f
}

func (f requestFields) Get(key string) string {
	if v, ok := f.body[key]; ok && v != nil {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	if vs := f.query[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
