// Package client is the Go client for a DriftChat server. It mirrors
// server-side truth on the client: the authenticated identity, the live
// socket bound to it, the online-user set, and the active conversation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"
)

// Notifier receives transient user-visible notifications, the moral
// equivalent of the toast layer in a UI. Implementations must not block.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client bundles the HTTP plumbing with the two state mirrors: Session
// (identity + socket + presence) and Chat (conversation).
type Client struct {
	baseURL string
	hc      *http.Client
	log     *zerolog.Logger
	notify  Notifier

	Session *Session
	Chat    *Chat
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
// The session credential is a cookie, so the HTTP client carries a jar.
func New(baseURL string, logger *zerolog.Logger, notifier Notifier) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	c := &Client{
		baseURL: baseURL,
		hc: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		log:    logger,
		notify: notifier,
	}
	c.Session = newSession(c)
	c.Chat = newChat(c)
	return c, nil
}

// doJSON performs a JSON request against the API. Non-2xx answers come
// back as *APIError with the server's error message.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
