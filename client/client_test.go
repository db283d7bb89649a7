package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dmarkhas/driftchat/internal/auth"
	"github.com/dmarkhas/driftchat/internal/config"
	"github.com/dmarkhas/driftchat/internal/core"
	"github.com/dmarkhas/driftchat/internal/store/sqlite"
	transporthttp "github.com/dmarkhas/driftchat/internal/transport/http"
)

// startServer boots the real HTTP surface on an in-memory store so the
// client is exercised against the exact server it targets.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, nil, jwtConfig)

	logger := zerolog.Nop()
	broadcaster := core.NewPresenceBroadcaster(&logger)
	registry := core.NewRegistry(broadcaster, &logger)
	router := core.NewRouter(st, registry, &logger)

	cfg := config.Default()
	cfg.UploadDir = ""

	server := transporthttp.NewServer(registry, router, authService, st, nil, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	logger := zerolog.Nop()
	c, err := New(baseURL, &logger, nil)
	require.NoError(t, err)
	t.Cleanup(c.Session.DisconnectSocket)
	return c
}

// eventually polls cond until it holds or the deadline passes. Socket
// events arrive asynchronously, so state assertions need a grace period.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func signup(t *testing.T, c *Client, fullName, email string) {
	t.Helper()
	require.NoError(t, c.Session.Signup(context.Background(), fullName, email, "secret123"))
}

func TestSignupConnectsSocket(t *testing.T) {
	ts := startServer(t)
	c := newTestClient(t, ts.URL)

	signup(t, c, "Alice A", "alice@example.com")

	user := c.Session.User()
	require.NotNil(t, user)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, Connected, c.Session.State())

	eventually(t, func() bool {
		ids := c.Session.OnlineUserIDs()
		return len(ids) == 1 && ids[0] == user.ID
	}, "never saw own presence")
}

func TestConnectSocketIsIdempotent(t *testing.T) {
	ts := startServer(t)
	c := newTestClient(t, ts.URL)

	signup(t, c, "Alice A", "alice@example.com")
	require.Equal(t, Connected, c.Session.State())

	// Repeated connects while already connected change nothing.
	require.NoError(t, c.Session.ConnectSocket(context.Background()))
	require.NoError(t, c.Session.ConnectSocket(context.Background()))
	require.Equal(t, Connected, c.Session.State())

	eventually(t, func() bool {
		return len(c.Session.OnlineUserIDs()) == 1
	}, "presence set wrong after repeated connects")
}

func TestConnectSocketWithoutIdentityIsNoop(t *testing.T) {
	ts := startServer(t)
	c := newTestClient(t, ts.URL)

	require.NoError(t, c.Session.ConnectSocket(context.Background()))
	require.Equal(t, Disconnected, c.Session.State())
}

func TestLogoutTearsDownSession(t *testing.T) {
	ts := startServer(t)
	c := newTestClient(t, ts.URL)

	signup(t, c, "Alice A", "alice@example.com")
	eventually(t, func() bool {
		return len(c.Session.OnlineUserIDs()) == 1
	}, "never connected")

	require.NoError(t, c.Session.Logout(context.Background()))
	require.Nil(t, c.Session.User())
	require.Empty(t, c.Session.OnlineUserIDs())
	require.Equal(t, Disconnected, c.Session.State())

	// DisconnectSocket after logout must not panic or change anything.
	c.Session.DisconnectSocket()
	require.Equal(t, Disconnected, c.Session.State())
}

func TestCheckAuthWithoutCookieFails(t *testing.T) {
	ts := startServer(t)
	c := newTestClient(t, ts.URL)

	err := c.Session.CheckAuth(context.Background())
	require.Error(t, err)
	require.Nil(t, c.Session.User())
	require.Equal(t, Disconnected, c.Session.State())
}

func TestPresenceSeesOtherClients(t *testing.T) {
	ts := startServer(t)
	alice := newTestClient(t, ts.URL)
	bob := newTestClient(t, ts.URL)

	signup(t, alice, "Alice A", "alice@example.com")
	signup(t, bob, "Bob B", "bob@example.com")

	eventually(t, func() bool {
		return len(alice.Session.OnlineUserIDs()) == 2
	}, "alice never saw bob online")

	require.NoError(t, bob.Session.Logout(context.Background()))
	eventually(t, func() bool {
		return len(alice.Session.OnlineUserIDs()) == 1
	}, "alice never saw bob leave")
}

func TestSubscriptionFiltersBySender(t *testing.T) {
	ts := startServer(t)
	alice := newTestClient(t, ts.URL)
	bob := newTestClient(t, ts.URL)
	carol := newTestClient(t, ts.URL)

	signup(t, alice, "Alice A", "alice@example.com")
	signup(t, bob, "Bob B", "bob@example.com")
	signup(t, carol, "Carol C", "carol@example.com")

	ctx := context.Background()
	aliceID := alice.Session.User().ID
	bobID := bob.Session.User().ID

	// Bob opens the conversation with Alice and subscribes to her.
	require.NoError(t, bob.Chat.SelectUser(ctx, aliceID))
	bob.Chat.Subscribe(aliceID)

	// Both Alice and Carol message Bob; only Alice's must surface.
	require.NoError(t, alice.Chat.SelectUser(ctx, bobID))
	require.NoError(t, alice.Chat.SendMessage(ctx, "from alice", ""))
	require.NoError(t, carol.Chat.SelectUser(ctx, bobID))
	require.NoError(t, carol.Chat.SendMessage(ctx, "from carol", ""))

	eventually(t, func() bool {
		return len(bob.Chat.Messages()) == 1
	}, "bob never received alice's message")

	msgs := bob.Chat.Messages()
	require.Equal(t, "from alice", msgs[0].Text)
	require.Equal(t, SendConfirmed, msgs[0].Status)

	// Carol's message was persisted, it was just filtered out of this view.
	require.NoError(t, bob.Chat.SelectUser(ctx, carol.Session.User().ID))
	require.Len(t, bob.Chat.Messages(), 1)
	require.Equal(t, "from carol", bob.Chat.Messages()[0].Text)
}

func TestSubscribeReplacesPreviousFilter(t *testing.T) {
	ts := startServer(t)
	alice := newTestClient(t, ts.URL)
	bob := newTestClient(t, ts.URL)
	carol := newTestClient(t, ts.URL)

	signup(t, alice, "Alice A", "alice@example.com")
	signup(t, bob, "Bob B", "bob@example.com")
	signup(t, carol, "Carol C", "carol@example.com")

	ctx := context.Background()
	bobID := bob.Session.User().ID

	// Bob subscribes to Alice, then switches to Carol without an explicit
	// unsubscribe. Only the latest filter may be active.
	bob.Chat.Subscribe(alice.Session.User().ID)
	require.NoError(t, bob.Chat.SelectUser(ctx, carol.Session.User().ID))
	bob.Chat.Subscribe(carol.Session.User().ID)

	require.NoError(t, alice.Chat.SelectUser(ctx, bobID))
	require.NoError(t, alice.Chat.SendMessage(ctx, "stale filter?", ""))
	require.NoError(t, carol.Chat.SelectUser(ctx, bobID))
	require.NoError(t, carol.Chat.SendMessage(ctx, "fresh filter", ""))

	eventually(t, func() bool {
		return len(bob.Chat.Messages()) == 1
	}, "bob never received carol's message")
	require.Equal(t, "fresh filter", bob.Chat.Messages()[0].Text)

	// After unsubscribing nothing more arrives.
	bob.Chat.Unsubscribe()
	require.NoError(t, carol.Chat.SendMessage(ctx, "after unsubscribe", ""))
	time.Sleep(200 * time.Millisecond)
	require.Len(t, bob.Chat.Messages(), 1)
}

func TestSendMessageOptimisticLifecycle(t *testing.T) {
	ts := startServer(t)
	alice := newTestClient(t, ts.URL)
	bob := newTestClient(t, ts.URL)

	signup(t, alice, "Alice A", "alice@example.com")
	signup(t, bob, "Bob B", "bob@example.com")

	ctx := context.Background()
	require.NoError(t, alice.Chat.SelectUser(ctx, bob.Session.User().ID))
	require.NoError(t, alice.Chat.SendMessage(ctx, "hello", ""))

	msgs := alice.Chat.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, SendConfirmed, msgs[0].Status)
	require.Equal(t, "hello", msgs[0].Text)
	// The optimistic local id was replaced by the server's.
	require.NotEmpty(t, msgs[0].ID)
}

func TestSendMessageFailureKeepsEntry(t *testing.T) {
	ts := startServer(t)
	alice := newTestClient(t, ts.URL)
	bob := newTestClient(t, ts.URL)

	signup(t, alice, "Alice A", "alice@example.com")
	signup(t, bob, "Bob B", "bob@example.com")

	ctx := context.Background()
	require.NoError(t, alice.Chat.SelectUser(ctx, bob.Session.User().ID))

	// An empty message is rejected server-side; the optimistic entry must
	// flip to failed instead of disappearing.
	err := alice.Chat.SendMessage(ctx, "", "")
	require.Error(t, err)

	msgs := alice.Chat.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, SendFailed, msgs[0].Status)
}

func TestSendMessageWithoutSelection(t *testing.T) {
	ts := startServer(t)
	alice := newTestClient(t, ts.URL)
	signup(t, alice, "Alice A", "alice@example.com")

	err := alice.Chat.SendMessage(context.Background(), "hello", "")
	require.Error(t, err)
	require.Empty(t, alice.Chat.Messages())
}

func TestGetUsersExcludesSelf(t *testing.T) {
	ts := startServer(t)
	alice := newTestClient(t, ts.URL)
	bob := newTestClient(t, ts.URL)

	signup(t, alice, "Alice A", "alice@example.com")
	signup(t, bob, "Bob B", "bob@example.com")

	require.NoError(t, alice.Chat.GetUsers(context.Background()))
	users := alice.Chat.Users()
	require.Len(t, users, 1)
	require.Equal(t, "bob@example.com", users[0].Email)
}
