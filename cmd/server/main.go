package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bookmycut/booking-server-go/internal/booking"
	"github.com/bookmycut/booking-server-go/internal/config"
	"github.com/bookmycut/booking-server-go/internal/database"
	"github.com/bookmycut/booking-server-go/internal/dialog"
	"github.com/bookmycut/booking-server-go/internal/handler"
	"github.com/bookmycut/booking-server-go/internal/middleware"
	"github.com/bookmycut/booking-server-go/internal/redis"
	"github.com/bookmycut/booking-server-go/internal/repository"
	"github.com/bookmycut/booking-server-go/internal/session"
	"github.com/bookmycut/booking-server-go/internal/whatsapp"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	customerRepo := repository.NewCustomerRepository(db.DB)
	serviceRepo := repository.NewServiceRepository(db.DB)
	bookingRepo := repository.NewBookingRepository(db.DB)

	clock := booking.SystemClock()
	sessions := session.NewStore(redisClient.Client, clock)
	calculator := booking.NewCalculator(bookingRepo, clock)
	allocator := booking.NewAllocator(bookingRepo)

	machine := dialog.NewMachine(
		customerRepo, serviceRepo, bookingRepo, sessions, calculator, allocator, clock,
	)

	waClient := whatsapp.NewClient(cfg.GraphAPIVersion, cfg.GraphAPIToken)

	signatureMiddleware := middleware.NewSignatureMiddleware(cfg.AppSecret)

	webhookHandler := handler.NewWebhookHandler(machine, waClient, cfg.WebhookVerifyToken)
	adminHandler := handler.NewAdminHandler(db, customerRepo, serviceRepo, bookingRepo)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/webhook", func(r chi.Router) {
		r.Get("/", webhookHandler.Verify)
		r.With(signatureMiddleware.Handler).Post("/", webhookHandler.Receive)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/", adminHandler.Routes())
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
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
