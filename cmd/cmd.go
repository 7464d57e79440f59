package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"party-photo-backend/internal/config"
	"party-photo-backend/internal/handlers"
	"party-photo-backend/internal/middleware"
	"party-photo-backend/internal/push"
	"party-photo-backend/internal/repository"
	"party-photo-backend/internal/services"
	"party-photo-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
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
	eventRepo := repository.NewEventRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	imageRepo := repository.NewImageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize blob storage
	blobs, err := storage.NewS3Store(cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}

	// Initialize the OIDC verifier; nil when no providers are configured
	oidcVerifier, err := services.NewOIDCVerifier(context.Background(), cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create OIDC verifier")
	}
	var verifier services.TokenVerifier
	if oidcVerifier != nil {
		verifier = oidcVerifier
	}

	// Initialize the APNs sender; nil when push is disabled
	apnsSender, err := push.NewAPNSSender(cfg.APNS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create APNs sender")
	}
	var pusher push.Sender
	if apnsSender != nil {
		pusher = apnsSender
	}

	// Initialize services
	wsHub := services.NewWSHub()
	userService := services.NewUserService(userRepo, verifier, cfg.JWT.Secret)
	participationService := services.NewParticipationService(participationRepo, wsHub)
	eventService := services.NewEventService(eventRepo, participationService, cfg.App.BaseURL, cfg.App.QREndpoint)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, wsHub, pusher)
	imageService := services.NewImageService(imageRepo, blobs, notificationService, wsHub)
	sessionService := services.NewSessionService(eventService, participationService)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService)
	participationHandler := handlers.NewParticipationHandler(participationService)
	imageHandler := handlers.NewImageHandler(imageService, userService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	displayHandler := handlers.NewDisplayHandler(eventService, imageService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, notificationService)

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
		r.Post("/users", userHandler.Register)
		r.Post("/users/login", userHandler.Login)
		r.Post("/users/oidc", userHandler.LoginWithProvider)
		r.Get("/events/code/{code}", eventHandler.GetEventByCode)
		r.Get("/display/{code}", displayHandler.GetDisplay)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/users/me", userHandler.GetMe)
			r.Put("/users/push-token", userHandler.UpdatePushToken)

			r.Post("/events", eventHandler.CreateEvent)
			r.Get("/events", eventHandler.GetMyEvents)
			r.Get("/events/active", eventHandler.GetActiveEvents)
			r.Post("/events/code/{code}/join", eventHandler.JoinEvent)
			r.Get("/events/{id}", eventHandler.GetEvent)
			r.Patch("/events/{id}", eventHandler.UpdateEvent)
			r.Delete("/events/{id}", eventHandler.DeactivateEvent)

			r.Get("/participations", participationHandler.GetMyParticipations)
			r.Delete("/participations/{id}", participationHandler.RemoveParticipation)

			r.Post("/images", imageHandler.UploadImage)
			r.Get("/images", imageHandler.GetImages)
			r.Delete("/images/{id}", imageHandler.DeleteImage)
			r.Post("/images/{id}/comments", imageHandler.AddComment)
			r.Put("/images/{id}/like", imageHandler.LikeImage)
			r.Delete("/images/{id}/like", imageHandler.UnlikeImage)

			r.Get("/notifications", notificationHandler.GetNotifications)
			r.Get("/notifications/unread-count", notificationHandler.GetUnreadCount)
			r.Put("/notifications/read-all", notificationHandler.MarkAllRead)
			r.Put("/notifications/{id}/read", notificationHandler.MarkRead)
			r.Delete("/notifications/{id}", notificationHandler.DeleteNotification)
			r.Delete("/notifications", notificationHandler.ClearAll)

			r.Post("/session/resolve", sessionHandler.ResolveSession)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

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
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
