package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
)

func TestSyncCustomers(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"account_number":"ACC-1","full_name":"Jane Wanjiku","msisdn":"254712345678","plan":"home-10","status":"active","balance_cents":150000},
			{"account_number":"","full_name":"no account","msisdn":"254700000000"},
			{"account_number":"ACC-2","full_name":"Ali Yusuf","msisdn":"254722000111","plan":"biz-50","status":"suspended","balance_cents":-20000}
		]`))
	}))
	defer srv.Close()

	customers := new(CustomerStoreMock)
	var upserted []string
	customers.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Customer")).
		Run(func(args mock.Arguments) {
			upserted = append(upserted, args.Get(1).(*models.Customer).AccountNumber)
		}).
		Return(nil)

	svc := NewISPSyncService(customers, srv.URL, "api-key")
	synced, err := svc.SyncCustomers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, synced, "records without an account number are skipped")
	require.Equal(t, []string{"ACC-1", "ACC-2"}, upserted)
	require.Equal(t, "/customers", gotPath)
	require.Equal(t, "Bearer api-key", gotAuth)
}

func TestSyncCustomers_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance window", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	customers := new(CustomerStoreMock)
	svc := NewISPSyncService(customers, srv.URL, "api-key")
	_, err := svc.SyncCustomers(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
	customers.AssertExpectations(t)
}

func TestSyncCustomers_NoBaseURL(t *testing.T) {
	svc := NewISPSyncService(new(CustomerStoreMock), "", "key")
	_, err := svc.SyncCustomers(context.Background())
	require.Error(t, err)
}
