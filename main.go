// main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/providers"
	"github.com/visiq-ai/visiq-workflows/internal/providers/mock"
	"github.com/visiq-ai/visiq-workflows/internal/repos"
	"github.com/visiq-ai/visiq-workflows/services"
	"github.com/visiq-ai/visiq-workflows/workflows"
)

// createDatabaseClient creates a database connection using our config structure
func createDatabaseClient(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Models: %v", cfg.Models)
	log.Printf("Dispatch: batch=%d cooldown=%dms retries=%d", cfg.Dispatch.BatchSize, cfg.Dispatch.CooldownMs, cfg.Dispatch.MaxRetries)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	} else {
		log.Printf("OpenAI API key loaded (length: %d)", len(cfg.OpenAIAPIKey))
	}
	if cfg.AnthropicAPIKey == "" {
		log.Printf("WARNING: Anthropic API key not loaded!")
	} else {
		log.Printf("Anthropic API key loaded (length: %d)", len(cfg.AnthropicAPIKey))
	}
	if cfg.Mock.ForceMock {
		log.Printf("MOCK_MODE enabled - all model calls are synthetic")
	}

	ctx := context.Background()

	// The pipeline itself never touches the database; without one the service
	// still fingerprints, it just can't load stored businesses or persist.
	var repoManager *repos.Manager
	if cfg.Database.Configured {
		db, err := createDatabaseClient(ctx, cfg.Database)
		if err != nil {
			log.Printf("WARNING: Database unavailable, running without persistence: %v", err)
		} else {
			defer db.Close()
			log.Printf("Successfully connected to database")

			repoManager = repos.NewManager(db)
			if err := repoManager.EnsureSchema(ctx); err != nil {
				log.Printf("WARNING: Schema setup failed, running without persistence: %v", err)
				repoManager = nil
			} else {
				log.Printf("Repository manager initialized")
			}
		}
	} else {
		log.Printf("No database configured, running without persistence")
	}

	var businessStore services.BusinessStore
	var fingerprintStore services.FingerprintStore
	if repoManager != nil {
		businessStore = repoManager.Businesses
		fingerprintStore = repoManager.Fingerprints
	}

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	// Initialize the fingerprint pipeline
	costService := services.NewCostService()

	factory := func(modelName string) (services.ModelClient, error) {
		return providers.NewProvider(modelName, cfg, costService)
	}
	mockClient := mock.NewProvider(cfg)

	var cache *services.ResponseCache
	if cfg.Cache.Enabled {
		cache = services.NewResponseCache(time.Duration(cfg.Cache.TTLMinutes) * time.Minute)
		log.Printf("Response cache enabled (TTL %dm)", cfg.Cache.TTLMinutes)
	}

	dispatcher := services.NewQueryDispatcher(factory, mockClient, cache, cfg.Dispatch)
	analyzer := services.NewResponseAnalyzer()
	analyticsService := services.NewAnalyticsService()
	leaderboardService := services.NewLeaderboardService()
	promptService := services.NewPromptService()

	fingerprintService := services.NewFingerprintService(cfg, promptService, dispatcher, analyzer, analyticsService, leaderboardService)
	log.Printf("Fingerprint service initialized")

	// Create Inngest client
	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "visiq-workflows",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	// Initialize and register workflows
	log.Printf("Initializing and registering workflows...")

	log.Printf("Initializing FingerprintProcessor workflow...")
	fingerprintProcessor := workflows.NewFingerprintProcessor(fingerprintService, businessStore, fingerprintStore, cfg)
	fingerprintProcessor.SetClient(client)
	fingerprintProcessor.ProcessFingerprint()

	log.Printf("Initializing ScheduledProcessor workflow...")
	scheduledProcessor := workflows.NewScheduledProcessor(businessStore)
	scheduledProcessor.SetClient(client)
	scheduledProcessor.DailyFingerprintScheduler()
	scheduledProcessor.WeeklyLoadAnalyzer()

	if cfg.Environment == "development" {
		log.Printf("Initializing DummyProcessor workflow (development only)...")
		dummyProcessor := workflows.NewDummyProcessor()
		dummyProcessor.SetClient(client)
		dummyProcessor.ProcessDummy()
	}

	log.Printf("All processors initialized and functions registered")

	log.Printf("Starting Inngest client...")
	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)
	log.Printf("Inngest client started successfully...")

	// Root endpoint for ALB health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"visiq-workflows","status":"running"}`))
	})

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/capabilities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(fingerprintService.GetCapabilities()); err != nil {
			log.Printf("Failed to encode capabilities: %v", err)
		}
	})

	mux.HandleFunc("/test/trigger-fingerprint", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var payload workflows.FingerprintRequestedEvent
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && err.Error() != "EOF" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(fmt.Sprintf(`{"error":"invalid payload: %v"}`, err)))
				return
			}
		}
		if payload.BusinessID == "" && payload.Name == "" {
			// Default demo business so the endpoint works with an empty body
			payload.Name = "Blue Bottle Coffee"
			payload.URL = "https://bluebottlecoffee.com"
			payload.Category = "Coffee Shop"
			payload.Country = "US"
			payload.City = "San Francisco"
		}
		payload.TriggeredBy = "manual_test"

		data := map[string]interface{}{
			"business_id":  payload.BusinessID,
			"name":         payload.Name,
			"url":          payload.URL,
			"category":     payload.Category,
			"country":      payload.Country,
			"region":       payload.Region,
			"city":         payload.City,
			"triggered_by": payload.TriggeredBy,
		}
		evt := inngestgo.Event{Name: "business.fingerprint.requested", Data: data}
		result, err := client.Send(r.Context(), evt)
		if err != nil {
			log.Printf("Failed to send test event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf(`{"error":"Failed to send event: %v"}`, err)))
			return
		}
		log.Printf("Test event sent successfully: %+v", result)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf(`{"status":"success","message":"Fingerprint requested for %s","event_ids":["%s"]}`, payload.Name, result)))
	})

	// Start server
	port := cfg.Port
	log.Printf("Starting Visiq Workflows service on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
