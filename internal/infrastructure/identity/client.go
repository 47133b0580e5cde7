// Package identity implements the HTTP client for the external Identity
// Service (a GoTrue-style auth API). Two credential tiers exist: the public
// anonymous key used for sign-in/sign-up/sign-out, and the elevated
// service-role key used for the admin surface (listing users, updating
// roles). The service-role key must never reach browser-side code.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/launchkit/boilerplate/internal/api/metrics"
	"github.com/launchkit/boilerplate/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for talking to the Identity Service.
type Config struct {
	// BaseURL is the public endpoint of the provider, e.g. https://xyz.identity.example.
	BaseURL string
	// AnonKey is the public anonymous API key.
	AnonKey string
	// ServiceRoleKey is the elevated server-only API key.
	ServiceRoleKey string
	Timeout        time.Duration
}

// Client is the concrete ports.IdentityProvider.
type Client struct {
	baseURL        string
	anonKey        string
	serviceRoleKey string
	http           *http.Client
	logger         zerolog.Logger
}

// NewClient returns a Client with a shared http.Client. A default timeout is
// applied when none is provided.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		anonKey:        cfg.AnonKey,
		serviceRoleKey: cfg.ServiceRoleKey,
		http:           &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

// --- Provider wire types ---

type providerUser struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	AppMetadata map[string]any `json:"app_metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (pu providerUser) toDomain() domain.User {
	return domain.User{
		ID:        pu.ID,
		Email:     pu.Email,
		Role:      domain.RoleFromMetadata(pu.AppMetadata),
		CreatedAt: pu.CreatedAt,
		UpdatedAt: pu.UpdatedAt,
	}
}

type listUsersResponse struct {
	Users []providerUser `json:"users"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        providerUser `json:"user"`
}

// providerError is the provider's error envelope; field names vary by
// endpoint so all known variants are collected.
type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e providerError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return "unknown provider error"
}

// --- Operations ---

// VerifyToken resolves a bearer token to the current user. Tokens that fail
// a local structural check (unparseable, or already expired by their own exp
// claim) are rejected without a network round-trip; otherwise the provider is
// the authority.
func (c *Client) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	if err := precheckToken(token); err != nil {
		return nil, err
	}

	var pu providerUser
	status, err := c.send(ctx, "verify", http.MethodGet, "/auth/v1/user", c.anonKey, token, nil, &pu)
	if err != nil {
		return nil, err
	}
	if status >= 400 && status < 500 {
		return nil, domain.ErrInvalidToken
	}
	if status >= 500 {
		return nil, fmt.Errorf("verify token: status %d: %w", status, domain.ErrIdentityUnavailable)
	}
	user := pu.toDomain()
	return &user, nil
}

// ListUsers returns a single snapshot of every user record, using the
// elevated credential.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var res listUsersResponse
	status, err := c.send(ctx, "list_users", http.MethodGet, "/auth/v1/admin/users", c.serviceRoleKey, c.serviceRoleKey, nil, &res)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("list users: status %d: %w", status, domain.ErrIdentityUnavailable)
	}

	users := make([]domain.User, 0, len(res.Users))
	for _, pu := range res.Users {
		users = append(users, pu.toDomain())
	}
	return users, nil
}

// UpdateUserRole writes the role into the target user's app_metadata bag.
func (c *Client) UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	body := map[string]any{
		"app_metadata": map[string]any{"role": string(role)},
	}

	var pu providerUser
	path := "/auth/v1/admin/users/" + url.PathEscape(userID)
	status, perr, err := c.sendExpectingError(ctx, "update_role", http.MethodPut, path, c.serviceRoleKey, c.serviceRoleKey, body, &pu)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, domain.ErrUserNotFound
	case status >= 400:
		// The upstream message is forwarded to the caller for update failures.
		return nil, fmt.Errorf("%s: %w", perr.text(), domain.ErrIdentityUnavailable)
	}

	user := pu.toDomain()
	return &user, nil
}

// SignIn exchanges email/password credentials for an access token.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	body := map[string]string{"email": email, "password": password}

	var res tokenResponse
	status, err := c.send(ctx, "sign_in", http.MethodPost, "/auth/v1/token?grant_type=password", c.anonKey, "", body, &res)
	if err != nil {
		return "", nil, err
	}
	if status >= 400 && status < 500 {
		return "", nil, domain.ErrInvalidCredentials
	}
	if status >= 500 {
		return "", nil, fmt.Errorf("sign in: status %d: %w", status, domain.ErrIdentityUnavailable)
	}

	user := res.User.toDomain()
	return res.AccessToken, &user, nil
}

// SignUp registers a new account. New users carry no role in their metadata
// and therefore map to the default authenticated role.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	body := map[string]string{"email": email, "password": password}

	var pu providerUser
	status, perr, err := c.sendExpectingError(ctx, "sign_up", http.MethodPost, "/auth/v1/signup", c.anonKey, "", body, &pu)
	if err != nil {
		return nil, err
	}
	if status >= 400 && status < 500 {
		return nil, fmt.Errorf("%s: %w", perr.text(), domain.ErrSignUpRejected)
	}
	if status >= 500 {
		return nil, fmt.Errorf("sign up: status %d: %w", status, domain.ErrIdentityUnavailable)
	}

	user := pu.toDomain()
	return &user, nil
}

// SignOut revokes the session behind the token. Best effort: a 4xx from the
// provider (token already dead) is not an error worth surfacing.
func (c *Client) SignOut(ctx context.Context, token string) error {
	status, err := c.send(ctx, "sign_out", http.MethodPost, "/auth/v1/logout", c.anonKey, token, nil, nil)
	if err != nil {
		return err
	}
	if status >= 500 {
		return fmt.Errorf("sign out: status %d: %w", status, domain.ErrIdentityUnavailable)
	}
	return nil
}

// --- Transport plumbing ---

// send issues one request and decodes a 2xx body into out (when non-nil).
// Transport-level failures map to domain.ErrIdentityUnavailable. The caller
// interprets the returned status code.
func (c *Client) send(ctx context.Context, op, method, path, apiKey, bearer string, body, out any) (int, error) {
	status, _, err := c.sendExpectingError(ctx, op, method, path, apiKey, bearer, body, out)
	return status, err
}

func (c *Client) sendExpectingError(ctx context.Context, op, method, path, apiKey, bearer string, body, out any) (int, providerError, error) {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, providerError{}, fmt.Errorf("identity %s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, providerError{}, fmt.Errorf("identity %s: build request: %w", op, err)
	}
	req.Header.Set("apikey", apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IdentityRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		c.logger.Error().Err(err).Str("operation", op).Msg("identity request failed")
		return 0, providerError{}, fmt.Errorf("identity %s: %v: %w", op, err, domain.ErrIdentityUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IdentityRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		return 0, providerError{}, fmt.Errorf("identity %s: read body: %w", op, domain.ErrIdentityUnavailable)
	}

	outcome := "ok"
	if resp.StatusCode >= 400 {
		outcome = "error"
	}
	metrics.IdentityRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())

	if resp.StatusCode >= 400 {
		var perr providerError
		_ = json.Unmarshal(raw, &perr)
		return resp.StatusCode, perr, nil
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, providerError{}, fmt.Errorf("identity %s: decode response: %w", op, domain.ErrIdentityUnavailable)
		}
	}
	return resp.StatusCode, providerError{}, nil
}

// precheckToken rejects tokens that cannot possibly verify upstream: not a
// JWT at all, or expired by their own exp claim. The signature is NOT checked
// here; the provider remains the authority on validity.
func precheckToken(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return domain.ErrInvalidToken
	}
	if exp != nil && exp.Before(time.Now()) {
		return domain.ErrInvalidToken
	}
	return nil
}
