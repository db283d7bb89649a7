package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"testing"

	"github.com/dmarkhas/driftchat/internal/proto"
)

func newJarClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func signupUser(t *testing.T, env *testEnv, client *http.Client, fullName, email string) proto.User {
	t.Helper()

	resp := postJSON(t, client, env.ts.URL+"/api/auth/signup", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": "secret123",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status: %d", resp.StatusCode)
	}

	var user proto.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	return user
}

func TestSignupSetsCookieAndReturnsIdentity(t *testing.T) {
	env := startTestServer(t)
	client := newJarClient(t)

	user := signupUser(t, env, client, "Alice A", "alice@example.com")
	if user.ID == "" || user.Email != "alice@example.com" || user.FullName != "Alice A" {
		t.Fatalf("unexpected identity: %+v", user)
	}

	// The cookie must authenticate /auth/check.
	resp, err := client.Get(env.ts.URL + "/api/auth/check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("check status: %d", resp.StatusCode)
	}

	var checked proto.User
	if err := json.NewDecoder(resp.Body).Decode(&checked); err != nil {
		t.Fatalf("decode check response: %v", err)
	}
	if checked.ID != user.ID {
		t.Fatalf("check returned wrong identity: %s != %s", checked.ID, user.ID)
	}
}

func TestSignupValidationFailures(t *testing.T) {
	env := startTestServer(t)
	client := newJarClient(t)

	// Short password.
	resp := postJSON(t, client, env.ts.URL+"/api/auth/signup", map[string]string{
		"fullName": "Bob B", "email": "bob@example.com", "password": "123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("short password status: %d", resp.StatusCode)
	}

	// Missing fields.
	resp = postJSON(t, client, env.ts.URL+"/api/auth/signup", map[string]string{
		"email": "bob@example.com", "password": "secret123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing fields status: %d", resp.StatusCode)
	}

	// Duplicate email.
	signupUser(t, env, newJarClient(t), "Carol C", "carol@example.com")
	resp = postJSON(t, client, env.ts.URL+"/api/auth/signup", map[string]string{
		"fullName": "Carol Clone", "email": "carol@example.com", "password": "secret123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate email status: %d", resp.StatusCode)
	}
}

func TestLoginFailuresAnswer400(t *testing.T) {
	env := startTestServer(t)
	signupUser(t, env, newJarClient(t), "Alice A", "alice@example.com")

	client := newJarClient(t)

	resp := postJSON(t, client, env.ts.URL+"/api/auth/login", map[string]string{
		"email": "ghost@example.com", "password": "secret123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown user status: %d", resp.StatusCode)
	}

	resp = postJSON(t, client, env.ts.URL+"/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad credentials status: %d", resp.StatusCode)
	}
}

func TestCheckWithoutCookieIsUnauthorized(t *testing.T) {
	env := startTestServer(t)

	resp, err := http.Get(env.ts.URL + "/api/auth/check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without cookie: %d", resp.StatusCode)
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	env := startTestServer(t)
	client := newJarClient(t)
	signupUser(t, env, client, "Alice A", "alice@example.com")

	resp := postJSON(t, client, env.ts.URL+"/api/auth/logout", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status: %d", resp.StatusCode)
	}

	// The jar dropped the expired cookie, so check must now fail.
	resp, err := client.Get(env.ts.URL + "/api/auth/check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("check after logout status: %d", resp.StatusCode)
	}
}
