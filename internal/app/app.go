package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmarkhas/driftchat/internal/auth"
	"github.com/dmarkhas/driftchat/internal/config"
	"github.com/dmarkhas/driftchat/internal/core"
	"github.com/dmarkhas/driftchat/internal/media"
	"github.com/dmarkhas/driftchat/internal/store"
	transporthttp "github.com/dmarkhas/driftchat/internal/transport/http"

	"github.com/dmarkhas/driftchat/internal/store/sqlite"
)

// App wires together the session core, storage and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	registry        *core.Registry
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	uploader, err := media.NewLocalUploader(cfg.UploadDir, cfg.MaxImageBytes)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init uploader: %w", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// An ephemeral secret keeps dev setups working; every restart
		// invalidates outstanding sessions.
		secret = randomSecret()
		logger.Warn().Msg("jwt_secret not set, using a random ephemeral secret")
	}

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(secret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}

	authService := auth.NewService(st, uploader, jwtConfig)

	broadcaster := core.NewPresenceBroadcaster(logger)
	registry := core.NewRegistry(broadcaster, logger)
	router := core.NewRouter(st, registry, logger)

	server := transporthttp.NewServer(registry, router, authService, st, uploader, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		registry:        registry,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}
