// Package apiclient is the HTTP client of the restaurant REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
)

// Error is a non-2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// TokenSource is the session the client authenticates with.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetTokenSource binds the session used by admin calls. The session itself
// talks to the server through this client, so it is bound after both exist.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	body, err := encode(in)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, q, body, "", out)
}

// doAuth sends a bearer request. A 401 runs one refresh and one retry; if
// either fails the session is over.
func (c *Client) doAuth(ctx context.Context, method, path string, q url.Values, in, out any) error {
	if c.tokens == nil {
		return ErrNotAuthenticated
	}
	token := c.tokens.AccessToken()
	if token == "" {
		return ErrNotAuthenticated
	}
	body, err := encode(in)
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, q, body, token, out)
	if StatusOf(err) != http.StatusUnauthorized {
		return err
	}

	if rerr := c.tokens.Refresh(ctx); rerr != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return fmt.Errorf("%w: %v", ErrSessionExpired, rerr)
	}

	err = c.send(ctx, method, path, q, body, c.tokens.AccessToken(), out)
	if StatusOf(err) == http.StatusUnauthorized {
		_ = c.tokens.Logout(ctx)
		return fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	return err
}

func encode(in any) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body []byte, token string, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Detail
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

// UserMessage turns any API error into text safe to show to a customer.
// Server details are not leaked except for the login banner and
// conflict messages, which the server words for users.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNotAuthenticated) {
		return "Sesiunea a expirat. Vă rugăm să vă autentificați din nou."
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusConflict, http.StatusLocked, http.StatusTooManyRequests:
			if apiErr.Message != "" {
				return apiErr.Message
			}
		case http.StatusNotFound:
			return "Resursa nu a fost găsită."
		}
	}
	return "A apărut o eroare. Vă rugăm să încercați din nou."
}
