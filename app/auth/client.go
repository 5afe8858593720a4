package auth

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
)

// User-facing failure messages.
const (
	msgTimeout   = "La requête a expiré. Vérifiez que le backend est démarré et accessible."
	msgDuplicate = "Un compte avec cet email existe déjà. Veuillez vous connecter ou utiliser un autre email."
)

// apiResponse is the backend's uniform response envelope.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    *User           `json:"user"`
	Errors  []apiFieldError `json:"errors"`
}

type apiFieldError struct {
	Message string `json:"message"`
}

// Client speaks JSON REST to the account backend. It carries no session
// state of its own; the token for authenticated calls is passed explicitly
// by the Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewClient(baseURL string, httpClient *http.Client, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (c *Client) Register(ctx context.Context, credentials RegisterCredentials) (*apiResponse, error) {
	return c.request(ctx, http.MethodPost, "/auth/register", "", credentials)
}

func (c *Client) Login(ctx context.Context, credentials LoginCredentials) (*apiResponse, error) {
	return c.request(ctx, http.MethodPost, "/auth/login", "", credentials)
}

func (c *Client) Me(ctx context.Context, token string) (*apiResponse, error) {
	return c.request(ctx, http.MethodGet, "/auth/me", token, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*apiResponse, error) {
	return c.request(ctx, http.MethodPut, "/auth/update-profile", token, update)
}

func (c *Client) DeleteAccount(ctx context.Context, token string) (*apiResponse, error) {
	return c.request(ctx, http.MethodDelete, "/auth/delete-account", token, nil)
}

// CheckHealth pre-flights backend reachability against the unauthenticated
// health endpoint at the API root.
func (c *Client) CheckHealth(ctx context.Context) bool {
	healthURL := strings.TrimSuffix(c.baseURL, "/api") + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Backend health check failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// request performs one backend round-trip. A non-2xx response becomes an
// error carrying the backend's message; field-level validation failures are
// joined into a single composite message.
func (c *Client) request(ctx context.Context, method, endpoint, token string, body any) (*apiResponse, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.New(msgTimeout)
		}
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(parsed.Errors) > 0 {
			messages := make([]string, 0, len(parsed.Errors))
			for _, fieldErr := range parsed.Errors {
				messages = append(messages, fieldErr.Message)
			}
			return nil, fmt.Errorf("%s: %s", parsed.Message, strings.Join(messages, ", "))
		}
		if parsed.Message != "" {
			return nil, errors.New(parsed.Message)
		}
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return &parsed, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
