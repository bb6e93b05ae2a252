package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/convene/backend/internal/api"
	"github.com/convene/backend/internal/auth"
	"github.com/convene/backend/internal/config"
	"github.com/convene/backend/internal/domain"
	"github.com/convene/backend/internal/fcm"
	"github.com/convene/backend/internal/repository"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Initialize logger
	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Starting Convene API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	// Connect to MongoDB
	ctx := context.Background()
	client, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := repository.Disconnect(client); err != nil {
			logger.Error("MongoDB disconnect error", zap.Error(err))
		}
	}()

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	db := client.Database(cfg.Mongo.Database)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Initialize repositories
	users := repository.NewUsers(db)
	posts := repository.NewPosts(db)
	comments := repository.NewComments(db)
	likes := repository.NewLikes(db)
	stories := repository.NewStories(db)
	storyViews := repository.NewStoryViews(db)

	// Initialize auth
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize Firebase
	fcmClient, err := fcm.NewClient(ctx, logger, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Warn("Failed to initialize Firebase client - push notifications will be disabled", zap.Error(err))
	} else {
		logger.Info("Firebase client initialized")
	}

	notifier := domain.NewPushNotifier(users, fcmClient, logger)

	// Initialize services
	userService := domain.NewUserService(users, jwtManager)
	postService := domain.NewPostService(posts, comments, likes, users, notifier)
	storyService := domain.NewStoryService(stories, storyViews, users, notifier)

	// Initialize handlers
	authHandler := api.NewAuthHandler(userService, logger)
	postHandler := api.NewPostHandler(postService, logger)
	storyHandler := api.NewStoryHandler(storyService, logger)
	healthHandler := api.NewHealthHandler(client, logger)

	// Initialize router
	router := api.NewRouter(authHandler, postHandler, storyHandler, healthHandler, jwtManager, logger)
	r := router.Setup()

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("ENV")
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
