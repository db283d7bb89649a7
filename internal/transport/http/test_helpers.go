package http

import (
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmarkhas/driftchat/internal/auth"
	"github.com/dmarkhas/driftchat/internal/config"
	"github.com/dmarkhas/driftchat/internal/core"
	"github.com/dmarkhas/driftchat/internal/store"
	"github.com/dmarkhas/driftchat/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	schema := `
	CREATE TABLE users (
		id            TEXT PRIMARY KEY,
		full_name     TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		profile_pic   TEXT NOT NULL DEFAULT '',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE messages (
		id           TEXT PRIMARY KEY,
		sender_id    TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		text         TEXT,
		image        TEXT,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (sender_id) REFERENCES users(id),
		FOREIGN KEY (recipient_id) REFERENCES users(id)
	);

	CREATE INDEX idx_messages_pair ON messages(sender_id, recipient_id, created_at);
	`

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, nil, jwtConfig)
}

// testEnv bundles everything a transport test needs.
type testEnv struct {
	ts          *httptest.Server
	store       store.Store
	authService *auth.Service
	registry    *core.Registry
}

// startTestServer spins up the full HTTP surface on an in-memory store.
func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	st := createTestStore(t)
	authService := createTestAuthService(t, st)

	logger := zerolog.Nop()
	broadcaster := core.NewPresenceBroadcaster(&logger)
	registry := core.NewRegistry(broadcaster, &logger)
	router := core.NewRouter(st, registry, &logger)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.UploadDir = "" // uploads disabled in tests

	server := NewServer(registry, router, authService, st, nil, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:          ts,
		store:       st,
		authService: authService,
		registry:    registry,
	}
}
