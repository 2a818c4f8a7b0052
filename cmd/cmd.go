package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photoshare/internal/config"
	"photoshare/internal/handlers"
	"photoshare/internal/middleware"
	"photoshare/internal/repository"
	"photoshare/internal/services"
	"photoshare/internal/storage"
	"photoshare/internal/views"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
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

	// Connect to blob storage
	blobs, err := storage.NewS3Store(context.Background(), cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}

	// Parse view templates
	renderer, err := views.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Initialize services
	accountService := services.NewAccountService(
		accountRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.SessionTTLHours)*time.Hour,
	)
	albumService := services.NewAlbumService(albumRepo, photoRepo, blobs)
	photoService := services.NewPhotoService(
		photoRepo,
		albumRepo,
		likeRepo,
		commentRepo,
		blobs,
		cfg.Upload.MaxBytes,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountService, renderer)
	albumHandler := handlers.NewAlbumHandler(albumService, renderer)
	photoHandler := handlers.NewPhotoHandler(photoService, albumService, renderer, cfg.Upload.MaxBytes)
	homeHandler := handlers.NewHomeHandler(photoService, renderer)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Auth(accountService))

	// Public routes
	r.Get("/", homeHandler.Home)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.Login)
	r.Get("/register", authHandler.ShowRegister)
	r.Post("/register", authHandler.Register)
	r.Get("/albums/{albumID}/photos", photoHandler.Index)
	r.Get("/photos/{photoID}/comments", photoHandler.Comments)
	r.Get("/photos/{photoID}/raw", photoHandler.Raw)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccount)
		r.Post("/logout", authHandler.Logout)

		r.Get("/albums", albumHandler.Index)
		r.Get("/albums/new", albumHandler.New)
		r.Post("/albums", albumHandler.Create)
		r.Get("/albums/{albumID}/edit", albumHandler.Edit)
		r.Post("/albums/{albumID}", albumHandler.Update)
		r.Post("/albums/{albumID}/delete", albumHandler.Delete)

		r.Get("/photos/new", photoHandler.New)
		r.Post("/photos", photoHandler.Create)
		r.Get("/photos/{photoID}/edit", photoHandler.Edit)
		r.Post("/photos/{photoID}", photoHandler.Update)
		r.Post("/photos/{photoID}/delete", photoHandler.Delete)
		r.Post("/photos/{photoID}/like", photoHandler.Like)
		r.Post("/photos/{photoID}/comments", photoHandler.AddComment)
	})

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
