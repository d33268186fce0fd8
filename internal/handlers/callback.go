package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type CallbackProcessorContract interface {
	HandleCallback(ctx context.Context, payload map[string]interface{}) error
}

type CallbackHandler struct {
	service CallbackProcessorContract
}

func NewCallbackHandler(service CallbackProcessorContract) *CallbackHandler {
	return &CallbackHandler{service: service}
}

// Receive acknowledges every gateway notification with 200 so the gateway
// stops retrying; only an internal failure answers 500, which asks the
// gateway to deliver again. A body that is not JSON is still preserved.
func (h *CallbackHandler) Receive(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("failed to read callback body: %v", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		payload = map[string]interface{}{"_raw": string(raw)}
	}

	if err := h.service.HandleCallback(r.Context(), payload); err != nil {
		log.Printf("callback processing failed: %v", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
