// Package apiclient issues authenticated JSON requests against the EPOL REST backend
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"epol-dashboard/internal/models"
	"epol-dashboard/internal/session"
)

// Client attaches the session's bearer token to every request
type Client struct {
	baseURL    string
	session    *session.Session
	httpClient *http.Client
	ids        *RequestIDs
	log        *zap.SugaredLogger
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithRequestIDs(ids *RequestIDs) Option {
	return func(c *Client) { c.ids = ids }
}

// New creates a client for baseURL bound to sess
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    sess,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ids:        NewRequestIDs(1),
		log:        zap.NewNop().Sugar(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *session.Session { return c.session }

func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) Delete(ctx context.Context, endpoint string) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Do sends an authenticated request and decodes the envelope's data into out.
// out may be nil.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	token, ok := c.session.Token()
	if !ok {
		return ErrAuthenticationRequired
	}
	if c.session.Expired(c.now()) {
		c.expire(method, endpoint)
		return ErrSessionExpired
	}
	return c.send(ctx, method, endpoint, token, body, out)
}

func (c *Client) send(ctx context.Context, method, endpoint, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return &RequestError{Method: method, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	reqID := c.ids.Next()
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("request failed", "method", method, "endpoint", endpoint, "request_id", reqID, "error", err)
		return &RequestError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	c.log.Debugw("response", "method", method, "endpoint", endpoint, "status", resp.StatusCode, "request_id", reqID)

	var env models.Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode,
				Message: "malformed response body", Err: err}
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && token != "":
		c.expire(method, endpoint)
		return ErrSessionExpired
	case resp.StatusCode == http.StatusUnprocessableEntity && len(env.Errors) > 0:
		return &ValidationError{Message: env.Message, Fields: env.Errors}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode,
			Message: "malformed response data", Err: err}
	}
	return nil
}

func (c *Client) expire(method, endpoint string) {
	if c.session.Expire() {
		c.log.Warnw("⚠️ session expired, cached session state discarded", "method", method, "endpoint", endpoint)
	}
}

type loginResponse struct {
	Token string          `json:"token"`
	User  *models.Profile `json:"user"`
}

// Login exchanges credentials for a token and starts the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if out.Token == "" {
		return fmt.Errorf("login failed: %w", &RequestError{Method: http.MethodPost, Endpoint: "/login",
			StatusCode: http.StatusOK, Message: "no token in response"})
	}
	c.session.Login(out.Token, out.User)
	c.log.Infow("✅ logged in", "email", email)
	return nil
}

// Logout tells the backend (best effort) and invalidates the session.
func (c *Client) Logout(ctx context.Context) {
	if token, ok := c.session.Token(); ok {
		if err := c.send(ctx, http.MethodPost, "/logout", token, nil, nil); err != nil {
			c.log.Debugw("logout request failed", "error", err)
		}
	}
	c.session.Logout()
}
