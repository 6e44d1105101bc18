// Package storefront is a Go client for the Storefront REST API.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout   = 30 * time.Second
	refreshTokenPath = "/auth/refresh-token"
	maxErrorBody     = 1 << 20
)

// Client attaches the bearer token to every request. When a request is
// rejected with 401 or 403 it refreshes the session exactly once and
// retries the request once; a second rejection is returned to the caller.
// A 403 that is a genuine permission denial, such as a customer calling an
// admin route, therefore costs one token rotation and a resend before the
// error is returned.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string

	refreshes singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokens(access, refresh string) Option {
	return func(c *Client) {
		c.accessToken = access
		c.refreshToken = refresh
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.accessToken, c.refreshToken
}

func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accessToken = access
	c.refreshToken = refresh
}

// Login exchanges credentials for a token pair and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair

	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &pair); err != nil {
		return nil, err
	}

	c.SetTokens(pair.AccessToken, pair.RefreshToken)

	return &pair, nil
}

// do sends a JSON request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte

	contentType := ""

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("storefront: encode request: %w", err)
		}

		payload = encoded
		contentType = "application/json"
	}

	return c.send(ctx, method, path, payload, contentType, out)
}

// upload posts a single file as multipart/form-data.
func (c *Client) upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("storefront: build upload: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("storefront: read upload: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("storefront: build upload: %w", err)
	}

	return c.send(ctx, http.MethodPost, path, buf.Bytes(), writer.FormDataContentType(), out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, contentType string, out any) error {
	resp, usedToken, err := c.roundTrip(ctx, method, path, payload, contentType)
	if err != nil {
		return err
	}

	if c.shouldRefresh(resp.StatusCode, path) {
		drain(resp)

		if err := c.refresh(ctx, usedToken); err != nil {
			return err
		}

		resp, _, err = c.roundTrip(ctx, method, path, payload, contentType)
		if err != nil {
			return err
		}
	}

	defer resp.Body.Close()

	return decode(resp, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, contentType string) (*http.Response, string, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, "", fmt.Errorf("storefront: build request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	access, _ := c.Tokens()
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("storefront: %s %s: %w", method, path, err)
	}

	return resp, access, nil
}

func (c *Client) shouldRefresh(status int, path string) bool {
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return false
	}

	if strings.HasPrefix(path, "/auth/") {
		return false
	}

	_, refresh := c.Tokens()

	return refresh != ""
}

// refresh rotates the token pair. Concurrent callers that were rejected
// with the same access token share one refresh call. The shared call is
// detached from any one caller's cancellation; a cancelled caller stops
// waiting while the others still get the result.
func (c *Client) refresh(ctx context.Context, usedToken string) error {
	shared := context.WithoutCancel(ctx)

	ch := c.refreshes.DoChan("refresh", func() (any, error) {
		access, refresh := c.Tokens()
		if access != usedToken {
			return nil, nil
		}

		if refresh == "" {
			return nil, ErrNotLoggedIn
		}

		payload, err := json.Marshal(map[string]string{"refresh_token": refresh})
		if err != nil {
			return nil, err
		}

		resp, _, err := c.roundTrip(shared, http.MethodPost, refreshTokenPath, payload, "application/json")
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var pair TokenPair
		if err := decode(resp, &pair); err != nil {
			c.logger.Warn("Session refresh rejected", slog.Any("error", err))
			return nil, fmt.Errorf("storefront: refresh session: %w", err)
		}

		c.SetTokens(pair.AccessToken, pair.RefreshToken)
		c.logger.Debug("Session refreshed")

		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("storefront: read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < http.StatusBadRequest {
			return fmt.Errorf("storefront: decode response: %w", err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}

		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("storefront: decode data: %w", err)
	}

	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
