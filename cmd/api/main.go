package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gatherly/gatherly-api/internal/config"
	"github.com/gatherly/gatherly-api/internal/connect"
	"github.com/gatherly/gatherly-api/internal/container"
	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/mailer"
	"github.com/gatherly/gatherly-api/internal/metrics"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting Gatherly API server",
		"environment", cfg.Environment,
		"booking_mode", cfg.BookingMode,
		"upload_provider", cfg.UploadProvider,
	)

	ctx := context.Background()

	mongoClient, err := connect.MongoDBConnect(ctx, cfg.MongoDBURI, cfg.MongoDBPassword)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully", "database", cfg.MongoDBDatabase)

	repo := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase)
	if err := repo.EnsureIndexes(ctx, cfg.BookingMode == "atomic"); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	uploader, err := setupUploader(cfg)
	if err != nil {
		logger.Error("Failed to initialize uploads", "provider", cfg.UploadProvider, "error", err)
		os.Exit(1)
	}

	tokens, err := helpers.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("Failed to initialize tokens", "error", err)
		os.Exit(1)
	}
	if cfg.JWKSURL != "" {
		if err := tokens.WithJWKS(ctx, cfg.JWKSURL, logger); err != nil {
			logger.Error("Failed to load JWKS", "url", cfg.JWKSURL, "error", err)
			os.Exit(1)
		}
	}
	defer tokens.Close()

	appContainer := container.NewContainer(cfg, logger, mongoClient, uploader, setupMailer(cfg, logger), tokens, metrics.New())
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupUploader(cfg *config.Config) (helpers.Uploader, error) {
	if cfg.UploadProvider == "cloudinary" {
		cld, err := connect.CloudinaryCredentials(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, err
		}
		return helpers.NewCloudinaryUploader(cld, cfg.CloudinaryFolder), nil
	}

	client, err := connect.InitSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		return nil, err
	}
	return helpers.NewSupabaseUploader(client.Storage, cfg.SupabaseBucket), nil
}

// setupMailer logs codes instead of sending them when no Resend key is set.
func setupMailer(cfg *config.Config, logger *slog.Logger) mailer.Mailer {
	if cfg.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not set, verification emails will be logged")
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.LogLevel)

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
