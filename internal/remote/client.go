// Package remote is the HTTP client for the external YouTube backend.
// Every request carries the session's bearer token; a 401 triggers one
// shared token refresh and a single retry of the failed request.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tubedesk/tubedesk/internal/auth"
	"github.com/tubedesk/tubedesk/pkg/log"
)

// ErrSessionExpired is returned when a token refresh fails and the
// session has been cleared.
var ErrSessionExpired = errors.New("session expired")

// Config carries the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func (c Config) validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("backend base URL is required")
	}
	return nil
}

// Client talks to the backend service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *auth.Session

	refreshGroup singleflight.Group
	onExpire     func()
}

// Option configures a Client.
type Option func(*Client)

// WithOnExpire registers a callback invoked after a failed token
// refresh clears the session.
func WithOnExpire(fn func()) Option {
	return func(c *Client) {
		c.onExpire = fn
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg Config, session *auth.Session, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		session: session,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// do sends the request built by build, retrying exactly once with a
// fresh token when the backend answers 401. build receives the current
// access token so the retry can carry the new one.
func (c *Client) do(ctx context.Context, build func(token string) (*http.Request, error)) (*http.Response, error) {
	resp, err := c.send(ctx, build, c.session.AccessToken())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	token, err := c.refreshToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, build, token)
}

func (c *Client) send(ctx context.Context, build func(token string) (*http.Request, error), token string) (*http.Response, error) {
	req, err := build(token)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshToken performs the token refresh. Concurrent callers share one
// in-flight refresh through the singleflight group.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	token, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refreshToken := c.session.RefreshToken()
		if refreshToken == "" {
			return "", fmt.Errorf("no refresh token")
		}

		body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
		if err != nil {
			return "", err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("token refresh failed: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
		}

		var refreshed refreshResponse
		if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
			return "", fmt.Errorf("invalid refresh response: %w", err)
		}
		c.session.SetTokens(refreshed.AccessToken, refreshed.RefreshToken)
		return refreshed.AccessToken, nil
	})
	if err != nil {
		c.session.Clear()
		if c.onExpire != nil {
			c.onExpire()
		}
		log.Warn("Token refresh failed, session cleared: %v", err)
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	return token.(string), nil
}

// postJSON posts payload to path and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, func(string) (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postBlob posts payload to path and returns the binary response body
// with the filename from Content-Disposition, when present.
func (c *Client) postBlob(ctx context.Context, path string, payload any) (*Blob, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, func(string) (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Blob{
		Filename: dispositionFilename(resp.Header.Get("Content-Disposition")),
		Data:     data,
	}, nil
}

// dispositionFilename extracts the filename parameter from a
// Content-Disposition header value, returning "" when absent or
// malformed.
func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
