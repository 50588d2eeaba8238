package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shared-house-backend/internal/config"
	"shared-house-backend/internal/handlers"
	"shared-house-backend/internal/middleware"
	"shared-house-backend/internal/repository"
	"shared-house-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	// Push notifications are optional; without a certificate every send is
	// a no-op.
	var notifier services.Notifier = services.NopNotifier{}
	if cfg.Push.Enabled {
		apns, err := services.NewAPNSNotifier(cfg.Push.CertPath, cfg.Push.CertPassword, cfg.Push.Topic, cfg.Push.Production)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push notifier")
		}
		notifier = apns
	}

	// Initialize services
	hub := services.NewHub()
	verifier := services.NewHMACTokenVerifier(cfg.Auth.ProviderSecret)
	authService := services.NewAuthService(userRepo, verifier, cfg.JWT.Secret, cfg.Auth.EnforceSingleDevice)
	bookingService := services.NewBookingService(bookingRepo, userRepo, notifier, hub)
	checklistService := services.NewChecklistService(checklistRepo, bookingRepo, userRepo, hub)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, userRepo, notifier, hub)
	photoService, err := services.NewPhotoService(
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create photo service")
	}
	scanner := services.NewReminderScanner(bookingRepo, userRepo, notifier, cfg.Scheduler.Interval)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	checklistHandler := handlers.NewChecklistHandler(checklistService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	dashboardHandler := handlers.NewDashboardHandler(bookingService, maintenanceService, checklistService)
	wsHandler := handlers.NewWebSocketHandler(hub, authService)

	loginLimiter := middleware.NewIPRateLimiter(rate.Every(time.Second), 5)
	dashboardCache := cache.New(30*time.Second, time.Minute)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.With(middleware.RateLimit(loginLimiter)).Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/verify", authHandler.Verify)
			r.Post("/auth/refresh", authHandler.Refresh)
			r.Put("/users/push-token", authHandler.UpdatePushToken)

			r.Post("/bookings", bookingHandler.Create)
			r.Get("/bookings", bookingHandler.List)
			r.Get("/bookings/{id}", bookingHandler.Get)
			r.Put("/bookings/{id}", bookingHandler.Update)
			r.Delete("/bookings/{id}", bookingHandler.Cancel)

			r.Post("/checklists", checklistHandler.Create)
			r.Get("/checklists", checklistHandler.List)
			r.Get("/checklists/{id}", checklistHandler.Get)
			r.Post("/checklists/{id}/entries", checklistHandler.AddEntry)
			r.Post("/checklists/{id}/submit", checklistHandler.Submit)

			r.Post("/maintenance", maintenanceHandler.Create)
			r.Get("/maintenance", maintenanceHandler.List)
			r.Get("/maintenance/{id}", maintenanceHandler.Get)
			r.Post("/maintenance/{id}/assign", maintenanceHandler.Assign)
			r.Post("/maintenance/{id}/complete", maintenanceHandler.Complete)
			r.Post("/maintenance/{id}/reopen", maintenanceHandler.Reopen)

			r.Post("/photos/upload-url", photoHandler.UploadURL)

			r.With(middleware.Cache(dashboardCache, 30*time.Second)).Get("/dashboard", dashboardHandler.Summary)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Start the exit-reminder scan loop
	scanCtx, stopScanner := context.WithCancel(context.Background())
	go scanner.Run(scanCtx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	stopScanner()
	hub.Close()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
