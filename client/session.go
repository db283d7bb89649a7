package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/dmarkhas/driftchat/internal/proto"
)

// ConnState is the socket's position in its lifecycle.
type ConnState int

const (
	// Disconnected means no live socket exists.
	Disconnected ConnState = iota
	// Connecting means a dial is in flight.
	Connecting
	// Connected means a live socket is bound to the current identity.
	Connected
)

// Session mirrors authentication state and keeps the live socket in
// lockstep with it: a successful signup/login/check connects, a logout or
// transport closure disconnects. All fields are owned by this struct;
// callers interact only through methods.
type Session struct {
	c *Client

	mu         sync.Mutex
	user       *proto.User
	state      ConnState
	online     []string
	sock       *socket
	generation int

	checkingAuth    bool
	signingUp       bool
	loggingIn       bool
	updatingProfile bool
}

func newSession(c *Client) *Session {
	return &Session{c: c}
}

// ==== in-flight flags, consumed by the presentation layer ====

func (s *Session) IsCheckingAuth() bool    { s.mu.Lock(); defer s.mu.Unlock(); return s.checkingAuth }
func (s *Session) IsSigningUp() bool       { s.mu.Lock(); defer s.mu.Unlock(); return s.signingUp }
func (s *Session) IsLoggingIn() bool       { s.mu.Lock(); defer s.mu.Unlock(); return s.loggingIn }
func (s *Session) IsUpdatingProfile() bool { s.mu.Lock(); defer s.mu.Unlock(); return s.updatingProfile }

// User returns the authenticated identity, or nil.
func (s *Session) User() *proto.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// State returns the socket lifecycle state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnlineUserIDs returns the last presence snapshot received from the
// server. Eventually consistent: it may lag the server by one broadcast.
func (s *Session) OnlineUserIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.online))
	copy(out, s.online)
	return out
}

// CheckAuth asks the server who we are (cookie-borne credential) and, on
// success, connects the socket. On failure the identity is cleared.
func (s *Session) CheckAuth(ctx context.Context) error {
	s.setFlag(&s.checkingAuth, true)
	defer s.setFlag(&s.checkingAuth, false)

	gen := s.currentGeneration()

	var user proto.User
	if err := s.c.doJSON(ctx, http.MethodGet, "/api/auth/check", nil, &user); err != nil {
		s.installUser(gen, nil)
		return err
	}

	if !s.installUser(gen, &user) {
		return nil
	}
	return s.ConnectSocket(ctx)
}

// Signup creates an account and connects the socket.
func (s *Session) Signup(ctx context.Context, fullName, email, password string) error {
	s.setFlag(&s.signingUp, true)
	defer s.setFlag(&s.signingUp, false)

	gen := s.currentGeneration()

	var user proto.User
	err := s.c.doJSON(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		s.c.notify.Error("could not create account")
		return err
	}

	s.c.notify.Success("account created successfully")
	if !s.installUser(gen, &user) {
		return nil
	}
	return s.ConnectSocket(ctx)
}

// Login authenticates and connects the socket.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.setFlag(&s.loggingIn, true)
	defer s.setFlag(&s.loggingIn, false)

	gen := s.currentGeneration()

	var user proto.User
	err := s.c.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		s.c.notify.Error("could not log in")
		return err
	}

	s.c.notify.Success("logged in successfully")
	if !s.installUser(gen, &user) {
		return nil
	}
	return s.ConnectSocket(ctx)
}

// Logout clears the identity and presence set and tears down the socket.
// Bumping the generation makes any auth call still in flight install
// nothing when it completes.
func (s *Session) Logout(ctx context.Context) error {
	err := s.c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)

	s.mu.Lock()
	s.generation++
	s.user = nil
	s.online = nil
	s.mu.Unlock()

	s.DisconnectSocket()

	if err != nil {
		s.c.notify.Error("something went wrong")
		return err
	}
	s.c.notify.Success("logged out successfully")
	return nil
}

// UpdateProfile uploads a new profile picture (base64 data-URL).
func (s *Session) UpdateProfile(ctx context.Context, profilePicDataURL string) error {
	s.setFlag(&s.updatingProfile, true)
	defer s.setFlag(&s.updatingProfile, false)

	gen := s.currentGeneration()

	var user proto.User
	err := s.c.doJSON(ctx, http.MethodPut, "/api/auth/update-profile", map[string]string{
		"profilePic": profilePicDataURL,
	}, &user)
	if err != nil {
		s.c.notify.Error("could not update profile")
		return err
	}

	s.installUser(gen, &user)
	s.c.notify.Success("profile updated successfully")
	return nil
}

// ConnectSocket establishes the live socket for the current identity.
// Safe to call repeatedly: it is a no-op unless authenticated and
// currently disconnected.
func (s *Session) ConnectSocket(ctx context.Context) error {
	s.mu.Lock()
	if s.user == nil || s.state != Disconnected {
		s.mu.Unlock()
		return nil
	}
	s.state = Connecting
	s.mu.Unlock()

	sock, err := s.dialSocket(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = Disconnected
		s.mu.Unlock()
		s.c.log.Warn().Err(err).Msg("socket connect failed")
		return err
	}

	s.mu.Lock()
	if s.user == nil {
		// Logged out while the dial was in flight.
		s.mu.Unlock()
		sock.close()
		s.mu.Lock()
		s.state = Disconnected
		s.mu.Unlock()
		return nil
	}
	s.sock = sock
	s.state = Connected
	s.mu.Unlock()

	go s.runSocket(sock)
	return nil
}

// DisconnectSocket tears down the live socket. Idempotent.
func (s *Session) DisconnectSocket() {
	s.mu.Lock()
	sock := s.sock
	s.sock = nil
	s.state = Disconnected
	s.mu.Unlock()

	if sock != nil {
		sock.close()
	}
}

// ==== internals ====

func (s *Session) setFlag(flag *bool, v bool) {
	s.mu.Lock()
	*flag = v
	s.mu.Unlock()
}

func (s *Session) currentGeneration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// installUser sets the identity unless a logout happened since gen was
// captured. Reports whether the identity was installed.
func (s *Session) installUser(gen int, user *proto.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.user = user
	return user != nil
}

func (s *Session) setOnline(ids []string) {
	s.mu.Lock()
	s.online = ids
	s.mu.Unlock()
}

// socketClosed is called by the read loop when the transport goes away.
// Only the currently tracked socket may flip the state: a stale loop from
// a replaced connection must not disturb its successor.
func (s *Session) socketClosed(sock *socket) {
	s.mu.Lock()
	if s.sock == sock {
		s.sock = nil
		s.state = Disconnected
	}
	s.mu.Unlock()
}
