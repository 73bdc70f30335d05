package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"newsdesk/internal/domain"
)

const (
	verifyPath = "/api/auth/verify"
	logoutPath = "/api/auth/logout"

	maxBodySize = 1 << 20
)

// Config holds auth service connection settings. SessionCookie and
// SessionToken seed the cookie jar with an existing session.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	SessionCookie string
	SessionToken  string
}

// Client talks to the remote cookie-session service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if cfg.SessionCookie != "" && cfg.SessionToken != "" {
		jar.SetCookies(base, []*http.Cookie{{
			Name:     cfg.SessionCookie,
			Value:    cfg.SessionToken,
			Path:     "/",
			HttpOnly: true,
		}})
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		baseURL: base.String(),
		logger:  logger.With("component", "auth"),
	}, nil
}

// Verify asks the server whether the ambient session is valid. A non-2xx
// answer is reported as an unsuccessful response, not an error.
func (c *Client) Verify(ctx context.Context) (*domain.VerifyResponse, error) {
	var resp domain.VerifyResponse
	status, err := c.do(ctx, http.MethodGet, verifyPath, &resp)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return &domain.VerifyResponse{Success: false}, nil
	}
	return &resp, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) (*domain.LogoutResponse, error) {
	var resp domain.LogoutResponse
	status, err := c.do(ctx, http.MethodPost, logoutPath, &resp)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		resp.Success = false
		if resp.Message == "" {
			resp.Message = http.StatusText(status)
		}
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Newsdesk/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out)
	switch {
	case err == nil:
	case !isSuccess(resp.StatusCode):
		// Error pages are often not JSON; the status is what matters.
		c.logger.Debug("ignoring undecodable error body", "path", path, "status", resp.StatusCode)
	case errors.Is(err, io.EOF):
		return resp.StatusCode, fmt.Errorf("decode response: empty body")
	default:
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}

	return resp.StatusCode, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
