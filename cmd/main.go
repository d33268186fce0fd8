package main

import (
	"context"
	"net/http"
	"os"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/wavelinknet/darajapay-gobackend/internal/config"
	"github.com/wavelinknet/darajapay-gobackend/internal/db"
	"github.com/wavelinknet/darajapay-gobackend/internal/handlers"
	"github.com/wavelinknet/darajapay-gobackend/internal/repository"
	"github.com/wavelinknet/darajapay-gobackend/internal/services"
)

func main() {
	// Load .env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}

	uri := os.Getenv("MONGOURI")
	if uri == "" {
		log.Fatal("MONGOURI environment variable not set")
	}

	// A single startup secret may carry the whole daraja bundle. A malformed
	// value is a configuration mistake, not something to limp along with.
	if raw := os.Getenv("MPESA_CREDENTIALS_JSON"); raw != "" {
		if err := config.SeedFromJSON(raw); err != nil {
			log.Fatalf("Invalid MPESA_CREDENTIALS_JSON: %v", err)
		}
	}

	client, err := db.Connect(uri)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	database := client.Database("darajapaydb")

	txRepo := repository.NewTransactionRepository(database)
	cbRepo := repository.NewCallbackRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	customerRepo := repository.NewCustomerRepository(database)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := txRepo.EnsureIndexes(ctx); err != nil {
			log.Printf("Warning: %v", err)
		}
		cancel()
	}

	resolve := func(ctx context.Context) (*config.Credentials, error) {
		return config.Resolve(ctx, settingsRepo)
	}

	paymentService := services.NewPaymentService(txRepo, services.NewDarajaClient(), resolve)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	callbackService := services.NewCallbackService(txRepo, cbRepo)
	callbackHandler := handlers.NewCallbackHandler(callbackService)

	ispService := services.NewISPSyncService(customerRepo, os.Getenv("ISP_API_URL"), os.Getenv("ISP_API_KEY"))
	ispHandler := handlers.NewISPSyncHandler(ispService)

	// Set up router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/api/stkpush", paymentHandler.StkPush).Methods("POST")
	router.HandleFunc("/api/stkpush", handlers.Preflight).Methods("OPTIONS")
	router.HandleFunc("/api/daraja/callback", callbackHandler.Receive).Methods("POST")
	router.HandleFunc("/api/daraja/callback", handlers.Preflight).Methods("OPTIONS")
	router.HandleFunc("/api/isp/sync", ispHandler.Sync).Methods("POST")
	router.HandleFunc("/api/transactions", paymentHandler.GetTransactions).Methods("GET")
	router.HandleFunc("/api/transaction/{transactionID}", paymentHandler.GetTransaction).Methods("GET")

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "x-sync-token"}),
	)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      cors(router),
		ReadTimeout:  25 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(server.ListenAndServe())
}
