package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
)

// ISPSyncService mirrors the ISP customer-management API into the customers
// collection. Plain fetch-map-write, no state of its own.
type ISPSyncService struct {
	customers CustomerStore
	client    *http.Client
	baseURL   string
	apiKey    string
	now       func() time.Time
}

func NewISPSyncService(customers CustomerStore, baseURL, apiKey string) *ISPSyncService {
	return &ISPSyncService{
		customers: customers,
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   baseURL,
		apiKey:    apiKey,
		now:       time.Now,
	}
}

type ispCustomer struct {
	AccountNumber string `json:"account_number"`
	FullName      string `json:"full_name"`
	Msisdn        string `json:"msisdn"`
	Plan          string `json:"plan"`
	Status        string `json:"status"`
	BalanceCents  int64  `json:"balance_cents"`
}

// SyncCustomers fetches the customer list and upserts every record, keyed by
// account number. One bad record does not abort the run.
func (s *ISPSyncService) SyncCustomers(ctx context.Context) (int, error) {
	if s.baseURL == "" {
		return 0, errors.New("ISP_API_URL not set")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/customers", nil)
	if err != nil {
		return 0, fmt.Errorf("build isp customers request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("isp customers request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("isp customers request failed with status %d: %s", resp.StatusCode, body)
	}

	var customers []ispCustomer
	if err := json.NewDecoder(resp.Body).Decode(&customers); err != nil {
		return 0, fmt.Errorf("decode isp customers: %w", err)
	}

	syncedAt := s.now().UTC()
	synced := 0
	for _, c := range customers {
		if c.AccountNumber == "" {
			log.Printf("skipping isp customer without account number (msisdn=%s)", c.Msisdn)
			continue
		}
		err := s.customers.Upsert(ctx, &models.Customer{
			AccountNumber: c.AccountNumber,
			FullName:      c.FullName,
			Msisdn:        c.Msisdn,
			Plan:          c.Plan,
			Status:        c.Status,
			BalanceCents:  c.BalanceCents,
			SyncedAt:      syncedAt,
		})
		if err != nil {
			log.Printf("failed to upsert customer %s: %v", c.AccountNumber, err)
			continue
		}
		synced++
	}

	log.Printf("isp sync complete: %d/%d customers upserted", synced, len(customers))
	return synced, nil
}
