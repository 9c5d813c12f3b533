package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"habitLogAPI/handlers"
	"habitLogAPI/internal/guard"
	"habitLogAPI/internal/notification"
	"habitLogAPI/middleware"
	"habitLogAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	recordService       *services.RecordService
	markerService       *services.MarkerService
	notificationService *services.NotificationService
	dashboardService    *services.DashboardService
	fcmService          *notification.FCMService
	actionGuard         *guard.Guard
	scheduler           *services.SchedulerService
	authEnabled         bool
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey != "" {
		clerk.SetKey(clerkSecretKey)
		authEnabled = true
		log.Println("Clerk initialized successfully")
	} else {
		log.Println("Warning: CLERK_SECRET_KEY not set, API routes are unauthenticated")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	// A single-user tracker needs nothing close to the defaults.
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	recordService = services.NewRecordService(dbPool)
	markerService = services.NewMarkerService(dbPool)
	notificationService = services.NewNotificationService(dbPool)
	dashboardService = services.NewDashboardService(dbPool, recordService)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	actionGuard = guard.New(recordService, markerService, notificationService, dashboardService)
	scheduler = services.NewSchedulerService(actionGuard, services.SchedulerConfigFromEnv())

	if os.Getenv("SKIP_AUTO_INIT") == "" {
		if err := initializeStores(ctx); err != nil {
			log.Fatal("Failed to initialize stores:", err)
		}
		log.Println("Stores initialized")
	}

	middleware.InitPrometheus()
}

// initializeStores creates the tables when absent and makes sure today has a
// row. Safe to run on every start.
func initializeStores(ctx context.Context) error {
	if err := recordService.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := markerService.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := notificationService.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := dashboardService.EnsureSchema(ctx); err != nil {
		return err
	}
	return actionGuard.EnsureTodayRecord(ctx, time.Now())
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	recordHandler := handlers.NewRecordHandler(recordService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, recordService)
	actionHandler := handlers.NewActionHandler(actionGuard)
	adminHandler := handlers.NewAdminHandler(recordService, markerService, notificationService, dashboardService, actionGuard)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "habitLog-api"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	if authEnabled {
		protected.Use(middleware.ClerkAuthMiddleware)
	}

	protected.HandleFunc("/records", recordHandler.ListRecords).Methods("GET")
	protected.HandleFunc("/records/{date}", recordHandler.GetRecord).Methods("GET")
	protected.HandleFunc("/records/{date}", recordHandler.UpsertRecord).Methods("PUT")

	protected.HandleFunc("/stats", dashboardHandler.GetStreaks).Methods("GET")
	protected.HandleFunc("/stats/week", dashboardHandler.GetWeekSummary).Methods("GET")
	protected.HandleFunc("/stats/month", dashboardHandler.GetMonthSummary).Methods("GET")
	protected.HandleFunc("/dashboard", dashboardHandler.GetDashboard).Methods("GET")
	protected.HandleFunc("/dashboard/refresh", dashboardHandler.RefreshDashboard).Methods("POST")

	protected.HandleFunc("/actions/ensure-today", actionHandler.EnsureTodayRecord).Methods("POST")
	protected.HandleFunc("/actions/reminder", actionHandler.SendReminder).Methods("POST")
	protected.HandleFunc("/actions/weekly-summary", actionHandler.SendWeeklySummary).Methods("POST")

	protected.HandleFunc("/admin/initialize", adminHandler.Initialize).Methods("POST")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	scheduler.Start()

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
