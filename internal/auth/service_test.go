package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmarkhas/driftchat/internal/core"
	"github.com/dmarkhas/driftchat/internal/store"
	"github.com/dmarkhas/driftchat/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(`
		CREATE TABLE users (
			id            TEXT PRIMARY KEY,
			full_name     TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			profile_pic   TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`)
		return err
	})
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	return NewService(st, nil, jwtConfig), st
}

func kindOf(t *testing.T, err error) core.Kind {
	t.Helper()

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		t.Fatalf("expected *core.Error, got %v", err)
	}
	return coreErr.Kind
}

func TestSignupShortPassword(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "Alice A", "alice@example.com", "12345")
	if kindOf(t, err) != core.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// No identity may be created on a failed signup.
	if _, err := st.GetUserByEmail(ctx, "alice@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("user was created despite validation failure: %v", err)
	}
}

func TestSignupMissingFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Signup(context.Background(), "", "alice@example.com", "123456")
	if kindOf(t, err) != core.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "Alice A", "alice@example.com", "123456"); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	_, _, err := svc.Signup(ctx, "Other Alice", "Alice@Example.com", "123456")
	if kindOf(t, err) != core.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, _, err := svc.Signup(ctx, "Alice A", "alice@example.com", "123456")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, token, err := svc.Login(ctx, "alice@example.com", "123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("login returned wrong user: %s != %s", user.ID, created.ID)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != created.ID {
		t.Fatalf("token user id: %s != %s", claims.UserID, created.ID)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "Alice A", "alice@example.com", "123456"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := svc.Login(ctx, "nobody@example.com", "123456"); kindOf(t, err) != core.KindAuth {
		t.Fatalf("expected auth error for unknown email, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "wrongpass"); kindOf(t, err) != core.KindAuth {
		t.Fatalf("expected auth error for bad password, got %v", err)
	}
}
