// @title                       Movie Service API
// @version                     1.0
// @description                 Multi-tenant movie catalogue with owner-scoped mutations.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/moviehub/movie-service/internal/api"
	"github.com/moviehub/movie-service/internal/api/handler"
	"github.com/moviehub/movie-service/internal/core/ports"
	"github.com/moviehub/movie-service/internal/core/service"
	"github.com/moviehub/movie-service/internal/infrastructure/db/memory"
	"github.com/moviehub/movie-service/internal/infrastructure/db/mongo"
	"github.com/moviehub/movie-service/internal/infrastructure/db/redis"
	"github.com/moviehub/movie-service/internal/infrastructure/http/handlers"
	"github.com/moviehub/movie-service/internal/infrastructure/queue"
	"github.com/moviehub/movie-service/internal/pkg/config"
	"github.com/moviehub/movie-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "movie-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	trustedProxies, err := cfg.TrustedProxyRanges()
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "movie-service",
	})

	backends, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.close()

	g, gctx := errgroup.WithContext(ctx)

	// The hash pool outlives gctx: requests drained by srv.Shutdown still
	// need it, so it is stopped only after Shutdown returns.
	poolCtx, cancelPool := context.WithCancel(context.Background())
	defer cancelPool()
	pool := queue.NewPool(cfg.Auth.HashWorkers, logger.Component("hash-pool"))
	pool.Start(poolCtx)
	defer pool.Stop()

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost, pool)
	identity := service.NewIdentityService(backends.users, hasher, logger.Component("identity"))
	tokens := service.NewTokenService(backends.users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	movies := service.NewMovieService(backends.movies, logger.Component("movies"))

	e := api.NewRouter(api.Deps{
		Identity:        identity,
		Tokens:          tokens,
		Movies:          movies,
		Throttle:        backends.throttle,
		ReadinessChecks: backends.checks,
		GeneralRPM:      cfg.RateLimit.GeneralRPM,
		AuthRPM:         cfg.RateLimit.AuthRPM,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		TrustedProxies:  trustedProxies,
		Log:             logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		pool.Stop()
		return err
	})

	return g.Wait()
}

type stores struct {
	users    ports.UserRepository
	movies   ports.MovieRepository
	throttle handler.LoginThrottle
	checks   map[string]handlers.Check
	closers  []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects the configured backends. Redis is optional: without it
// the login throttle is disabled.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{checks: map[string]handlers.Check{}}

	switch cfg.Store {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		s.users = memory.NewUserRepository()
		s.movies = memory.NewMovieRepository()
	case "mongo":
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			s.close()
			return nil, err
		}
		s.users = mongo.NewUserRepository(db)
		s.movies = mongo.NewMovieRepository(db)
		s.checks["mongodb"] = handlers.MongoCheck(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb ready")
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store)
	}

	if cfg.Redis.URL == "" && cfg.Redis.Addr == "" {
		return s, nil
	}
	rdb, err := redis.Connect(ctx, redis.Config{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; login throttle disabled")
		return s, nil
	}
	s.closers = append(s.closers, func() { _ = rdb.Close() })
	s.throttle = redis.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginLockout)
	s.checks["redis"] = handlers.RedisCheck(rdb)
	return s, nil
}
