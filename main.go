package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/storesight/console/internal/alerts"
	"github.com/storesight/console/internal/auth"
	"github.com/storesight/console/internal/billing"
	"github.com/storesight/console/internal/cameras"
	"github.com/storesight/console/internal/db"
	"github.com/storesight/console/internal/demo"
	"github.com/storesight/console/internal/employees"
	"github.com/storesight/console/internal/geocoding"
	"github.com/storesight/console/internal/journey"
	"github.com/storesight/console/internal/middleware"
	"github.com/storesight/console/internal/onboarding"
	"github.com/storesight/console/internal/reports"
	"github.com/storesight/console/internal/stores"
	"github.com/storesight/console/internal/webhooks"
	"go.uber.org/zap"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("LOG_FORMAT") == "console" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	return logger
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	logger := newLogger()
	defer logger.Sync()

	auth.Init()
	stores.Init()
	cameras.Init()
	alerts.Init()
	employees.Init()
	onboarding.Init()
	demo.Init()
	journey.Init()
	webhooks.Init()

	origins := middleware.AllowedOriginsFromEnv()
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	fetcher := auth.Fetcher()
	authStore := auth.DefaultStore()
	plans := auth.NewAccountPlans(authStore)

	loginLimiter := middleware.NewRateLimiter(envFloat("LOGIN_RATE_RPS", 0.5), envInt("LOGIN_RATE_BURST", 5), logger)
	publicLimiter := middleware.NewRateLimiter(1, 10, logger)

	var geo stores.Geocoder
	if gc, err := geocoding.NewClient(); err != nil {
		log.Printf("[geocoding] disabled: %v", err)
	} else if gc != nil {
		geo = gc
	}

	var forwarder journey.Publisher
	if cfg := journey.KafkaConfigFromEnv(); cfg != nil {
		kf, err := journey.NewKafkaForwarder(cfg)
		if err != nil {
			log.Fatal("Failed to start kafka forwarder: ", err)
		}
		defer kf.Close()
		forwarder = kf
	}

	camRepo := cameras.DefaultRepository()
	alertRepo := alerts.DefaultRepository()
	hub := alerts.NewHub(logger.Named("alerts"), func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	})
	alertSvc := alerts.NewService(alertRepo, hub)

	camHandler := cameras.NewHandler(camRepo)
	empHandler := employees.NewHandler(employees.DefaultRepository())

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORSMiddleware(origins))
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes(auth.NewHandler(authStore, envDuration("SESSION_TTL", auth.DefaultSessionTTL)), fetcher, loginLimiter))
	r.Mount("/stores", stores.SetupRoutes(
		stores.NewHandler(stores.DefaultRepository(), plans, geo), fetcher,
		cameras.StoreRoutes(camHandler),
		employees.StoreRoutes(empHandler),
	))
	r.Mount("/cameras", cameras.SetupRoutes(camHandler, fetcher))
	r.Mount("/alerts", alerts.SetupRoutes(alerts.NewHandler(alertSvc, alertRepo, hub), fetcher))
	r.Mount("/employees", employees.SetupRoutes(empHandler, fetcher))
	r.Mount("/onboarding", onboarding.SetupRoutes(onboarding.NewHandler(onboarding.DefaultRepository()), fetcher))
	r.Mount("/me", reports.SetupRoutes(reports.NewHandler(reports.DefaultRepository(), plans), fetcher))
	r.Mount("/demo", demo.SetupRoutes(demo.NewHandler(demo.DefaultRepository()), publicLimiter))
	r.Mount("/journey", journey.SetupRoutes(journey.NewHandler(journey.DefaultRepository(), forwarder), fetcher))
	r.Mount("/webhooks", webhooks.SetupRoutes(webhooks.NewHandler(
		os.Getenv("EDGE_WEBHOOK_SECRET"), camRepo, alertSvc, webhooks.DefaultDeliveryLog())))
	r.Mount("/billing", billing.SetupRoutes(billing.NewHandler(plans), fetcher))

	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening on port :%s...", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}
