package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"yarey/backend/internal/cache"
	"yarey/backend/internal/config"
	"yarey/backend/internal/events"
	"yarey/backend/internal/httpapi"
	"yarey/backend/internal/service"
	"yarey/backend/internal/store"
	fsstore "yarey/backend/internal/store/firestore"
	"yarey/backend/internal/store/memory"
	pgstore "yarey/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.BusinessTimezone).Msg("unknown business timezone")
	}
	tiers, err := config.LoadTiers(cfg.TiersFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.TiersFile).Msg("invalid tier table")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 3)

	switch {
	case cfg.FirestoreProjectID != "":
		fs, err := fsstore.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentials)
		if err != nil {
			log.Fatal().Err(err).Msg("firestore unavailable and FIRESTORE_PROJECT_ID is set; refusing to start with in-memory fallback")
		}
		repo = fs
		closers = append(closers, fs.Close)
		log.Info().Str("project", cfg.FirestoreProjectID).Msg("repository: firestore")
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Info().Msg("repository: postgres")
	default:
		repo = memory.NewSeeded()
		log.Info().Msg("repository: in-memory")
	}

	loyaltyCache := cache.LoyaltyCache(cache.NoopLoyaltyCache{})
	locker := cache.Locker(cache.NoopLocker{})
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using noop cache and lock")
			_ = client.Close()
		} else {
			loyaltyCache = cache.NewRedisLoyaltyCache(client)
			locker = cache.NewRedisLocker(client)
			closers = append(closers, client.Close)
			log.Info().Msg("cache: redis")
		}
	} else {
		log.Info().Msg("cache: noop")
	}

	publisher := events.Publisher(events.NoopPublisher{})
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.AMQPURL)
		log.Info().Msg("events: rabbitmq")
	} else {
		log.Info().Msg("events: noop")
	}

	svc := service.New(repo, service.Options{
		Cache:                 loyaltyCache,
		CacheTTL:              time.Duration(cfg.LoyaltyCacheTTLSeconds) * time.Second,
		Locker:                locker,
		SyncLockTTL:           time.Duration(cfg.SyncLockTTLSeconds) * time.Second,
		Publisher:             publisher,
		Tiers:                 tiers,
		OutsourceRateFallback: cfg.OutsourceRateFallback,
		Location:              loc,
		PhoneRegion:           cfg.PhoneRegion,
	})
	api := httpapi.New(svc, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Msg("spa backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func validateConfig(cfg config.Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if cfg.FirestoreProjectID != "" && cfg.DatabaseURL != "" {
		return fmt.Errorf("set only one of FIRESTORE_PROJECT_ID and DATABASE_URL")
	}
	if !cfg.OutsourceRateFallback.IsPositive() {
		return fmt.Errorf("OUTSOURCE_RATE_FALLBACK must be a positive number")
	}
	if strings.TrimSpace(cfg.AllowedOrigin) == "" {
		return fmt.Errorf("ALLOWED_ORIGIN must be set")
	}
	if !cfg.IsDevelopment() && cfg.AllowedOrigin == "*" {
		return fmt.Errorf("ALLOWED_ORIGIN must not be * outside development")
	}
	if cfg.AMQPURL != "" && !strings.HasPrefix(cfg.AMQPURL, "amqp://") && !strings.HasPrefix(cfg.AMQPURL, "amqps://") {
		return fmt.Errorf("AMQP_URL must start with amqp:// or amqps://")
	}
	return nil
}
