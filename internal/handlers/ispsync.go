package handlers

import (
	"context"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
)

type CustomerSyncerContract interface {
	SyncCustomers(ctx context.Context) (int, error)
}

type ISPSyncHandler struct {
	service CustomerSyncerContract
}

func NewISPSyncHandler(service CustomerSyncerContract) *ISPSyncHandler {
	return &ISPSyncHandler{service: service}
}

// Sync triggers one customer sync run. Guarded by a shared token so only the
// scheduler can call it.
func (h *ISPSyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("x-sync-token")
	if token == "" || token != os.Getenv("ISP_SYNC_TOKEN") {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "unauthorized"})
		return
	}

	synced, err := h.service.SyncCustomers(r.Context())
	if err != nil {
		log.Printf("isp sync failed: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":   "isp_sync_failed",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "synced": synced})
}
