package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"music-platform/internal/aggregate"
	"music-platform/internal/catalog"
	"music-platform/internal/config"
	"music-platform/internal/events"
	"music-platform/internal/httpapi"
	"music-platform/internal/identity"
	"music-platform/internal/playlist"
	"music-platform/internal/session"
	"music-platform/internal/store"
)

const shutdownTimeout = 10 * time.Second

func migrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	pool, err := store.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if err := store.AutoMigrate(ctx, pool); err != nil {
		return err
	}
	log.Info("schema is up to date")
	return nil
}

// grantRole sets the role of an existing account. Catalog edits over HTTP
// need the admin role, and granting it is only possible from here.
func grantRole(ctx context.Context, cfg *config.Config, log *zap.Logger, email string, role identity.Role) error {
	pool, err := store.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	// Hashing is never reached on this path.
	users := identity.NewStore(pool, identity.BcryptHasher{})
	if err := users.SetRole(ctx, email, role); err != nil {
		return fmt.Errorf("grant %s to %s: %w", role, email, err)
	}
	log.Info("role granted", zap.String("email", email), zap.String("role", string(role)))
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	if err := store.AutoMigrate(ctx, pool); err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Redis.Enabled {
		rdb, err := events.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb, cfg.Redis.Channel, log.Named("events"))
	}

	cat, err := catalog.NewStore(pool, cfg.Catalog.AlbumCacheSize)
	if err != nil {
		return err
	}
	cost := cfg.Auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	users := identity.NewStore(pool, identity.BcryptHasher{Cost: cost})
	sessions := session.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL).
		WithAccounts(users.Account, log.Named("session"))

	svc := aggregate.NewService(cat,
		users,
		playlist.NewEngine(pool),
		aggregate.Options{
			Tokens: sessions,
			Events: publisher,
			Paging: aggregate.Paging{Default: cfg.Catalog.DefaultPageSize, Max: cfg.Catalog.MaxPageSize},
			Logger: log.Named("aggregate"),
		},
	)

	api := httpapi.NewServer(svc, sessions, log.Named("http"), httpapi.Options{
		MaxBodyBytes:      cfg.Server.MaxBodyBytes,
		CORSAllowedOrigin: cfg.Server.CORSAllowedOrigin,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
