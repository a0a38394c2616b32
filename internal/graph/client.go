package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// DefaultUserAgent is sent when the caller does not configure one.
const DefaultUserAgent = "onedrive-client/0.1"

// maxErrorBody caps how much of a failed response body is kept in an
// UpstreamError.
const maxErrorBody = 64 << 10

// TokenSource provides OAuth2 bearer tokens. Defined at the consumer
// (graph package) so tests can substitute a fixed or failing token.
// Token may block while an interactive sign-in completes.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is an HTTP client for the Microsoft Graph API.
// It attaches a bearer token to every request, classifies failures into
// AuthenticationError, UpstreamError and ContractError, and never retries.
// All fields are set at construction, so a Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	userAgent  string
}

// NewClient creates a Graph API client.
// baseURL is typically DefaultBaseURL; a trailing slash is ignored.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger, userAgent string) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		userAgent:  userAgent,
	}
}

// Do executes a single GET-style request against the Graph API.
// The path is appended to the client's base URL. A token is acquired before
// anything touches the network; if that fails the result is an
// *AuthenticationError. Non-2xx responses become *UpstreamError.
// The caller is responsible for closing the response body on success.
func (c *Client) Do(ctx context.Context, method, path string) (*http.Response, error) {
	tok, err := c.token.Token(ctx)
	if err != nil {
		c.logger.Warn("token acquisition failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return nil, &AuthenticationError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("graph: creating request: %w", err)
	}

	requestID := uuid.NewString()

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("client-request-id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("graph: request canceled: %w", ctx.Err())
		}

		return nil, fmt.Errorf("graph: %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("client_request_id", requestID),
		)

		return resp, nil
	}

	defer resp.Body.Close()

	errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	ue := newUpstreamError(resp.StatusCode, resp.Header.Get("request-id"), errBody)

	c.logger.Warn("request failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("code", ue.Code),
		slog.String("request_id", ue.RequestID),
		slog.String("client_request_id", requestID),
	)

	return nil, ue
}

// getJSON performs a GET and decodes the body into v. Decode failures are
// reported as *ContractError tagged with resource.
func (c *Client) getJSON(ctx context.Context, path, resource string, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &ContractError{Resource: resource, Detail: "decoding body", Err: err}
	}

	return nil
}

// requireArg returns ErrInvalidArgument when value is empty.
func requireArg(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, name)
	}

	return nil
}
