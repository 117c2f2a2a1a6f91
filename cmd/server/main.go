package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/cache"
	"github.com/Dias221467/cometa-films-backend/internal/config"
	"github.com/Dias221467/cometa-films-backend/internal/database"
	"github.com/Dias221467/cometa-films-backend/internal/handlers"
	"github.com/Dias221467/cometa-films-backend/internal/jobs"
	"github.com/Dias221467/cometa-films-backend/internal/metadata"
	"github.com/Dias221467/cometa-films-backend/internal/payment"
	"github.com/Dias221467/cometa-films-backend/internal/realtime"
	"github.com/Dias221467/cometa-films-backend/internal/repository"
	"github.com/Dias221467/cometa-films-backend/internal/scheduler"
	"github.com/Dias221467/cometa-films-backend/internal/services"
	"github.com/Dias221467/cometa-films-backend/pkg/logger"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// TMDB allows roughly 40 requests per second per key.
const tmdbRateLimit = 40

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.Env, cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	handlers.SetErrorDetail(!cfg.IsProduction())

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	redisClient, err := cache.NewRedis(cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, movie metadata will not be cached")
		redisClient = nil
	}

	movies := metadata.NewClient(metadata.ClientConfig{
		BaseURL:   cfg.TMDBBaseURL,
		APIKey:    cfg.TMDBAPIKey,
		RateLimit: rate.Limit(tmdbRateLimit),
		Burst:     tmdbRateLimit / 4,
		Redis:     redisClient,
		Logger:    logger.Log,
	})

	gateway, err := payment.NewPayPalGateway(payment.PayPalConfig{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		Mode:         cfg.PayPalMode,
		Price:        cfg.PremiumPrice,
		Currency:     cfg.PremiumCurrency,
		BrandName:    "Cometa Films",
		ReturnURL:    cfg.FrontendURL + "/premium/success",
		CancelURL:    cfg.FrontendURL + "/premium/cancel",
	})
	if err != nil {
		log.Fatalf("Payment gateway error: %v", err)
	}

	hub := realtime.NewHub()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	activityService := services.NewActivityService(activityRepo, userRepo)
	notificationService := services.NewNotificationService(notificationRepo, hub)
	reviewService := services.NewReviewService(userRepo, reviewRepo, movies, notificationService, activityService)
	watchlistService := services.NewWatchlistService(userRepo, userRepo, movies, activityService)
	socialService := services.NewSocialService(userRepo, userRepo, notificationService, activityService)
	premiumService := services.NewPremiumService(userRepo, userRepo, gateway)

	// --- Background jobs ---
	cronJobs, err := scheduler.Start(
		cfg.ReconcileSchedule,
		jobs.NewFollowReconciler(socialService),
		jobs.NewNotificationPurger(notificationService),
	)
	if err != nil {
		log.Fatalf("Scheduler error: %v", err)
	}

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Handlers{
		Users:         handlers.NewUserHandler(userService, cfg),
		Movies:        handlers.NewMovieHandler(watchlistService, reviewService, userService),
		Comments:      handlers.NewCommentHandler(reviewService),
		Social:        handlers.NewSocialHandler(socialService),
		Premium:       handlers.NewPremiumHandler(premiumService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Activity:      handlers.NewActivityHandler(activityService),
		WS:            handlers.NewWSHandler(hub, cfg.JWTSecret),
	}, cfg.JWTSecret)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	<-cronJobs.Stop().Done()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Disconnect(ctx, db); err != nil {
		logger.Log.WithError(err).Error("MongoDB disconnect failed")
	}
}
