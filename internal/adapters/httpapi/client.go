package httpapi

// Package httpapi implements ports.AuthAPI against the school-administration
// REST backend.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
	apperrors "github.com/escolaweb/portal-core/internal/errors"
	"github.com/escolaweb/portal-core/internal/ports"
)

// Config holds configuration for the REST client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client // optional, defaults to a 15s-timeout client
	Logger     *slog.Logger
}

// Client talks JSON to the backend's auth endpoints. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.AuthAPI = (*Client)(nil)

// NewClient constructs a Client from Config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("httpapi: base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type darkModeResponse struct {
	DarkMode bool `json:"dark_mode"`
}

// Login exchanges credentials for a token pair via POST /api/v1/auth/login.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (ports.TokenPair, error) {
	body := loginRequest{Username: creds.Identifier, Password: creds.Secret}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &resp); err != nil {
		return ports.TokenPair{}, err
	}
	if resp.AccessToken == "" {
		return ports.TokenPair{}, apperrors.Transient("login response missing access token")
	}
	return ports.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// FetchCurrentUser returns the profile via GET /api/v1/users/me.
func (c *Client) FetchCurrentUser(ctx context.Context, accessToken string) (domainsession.UserProfile, error) {
	var profile domainsession.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", accessToken, nil, &profile); err != nil {
		return domainsession.UserProfile{}, err
	}
	if !profile.Role.Valid() {
		return domainsession.UserProfile{}, apperrors.Validation(fmt.Sprintf("unknown role %q in profile", profile.Role))
	}
	return profile, nil
}

// ToggleServerDarkMode flips the account-level flag via
// POST /api/v1/users/me/dark-mode.
func (c *Client) ToggleServerDarkMode(ctx context.Context, accessToken string) (bool, error) {
	var resp darkModeResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/users/me/dark-mode", accessToken, nil, &resp); err != nil {
		return false, err
	}
	return resp.DarkMode, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTransient, "backend unreachable")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("httpapi: closing response body failed", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTransient, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTransient, "decode response")
	}
	return nil
}

// errorFromResponse maps a non-2xx response into the application taxonomy,
// preserving the server-provided message when one exists.
func (c *Client) errorFromResponse(status int, raw []byte) error {
	var er errorResponse
	_ = json.Unmarshal(raw, &er)

	msg := er.Message
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			msg = "invalid credentials"
		}
		return apperrors.Unauthorized(msg)
	case http.StatusNotFound:
		if msg == "" {
			msg = "resource not found"
		}
		return apperrors.NotFound(msg)
	default:
		if msg == "" {
			msg = fmt.Sprintf("backend error (status %d)", status)
		}
		return apperrors.Transient(msg)
	}
}
