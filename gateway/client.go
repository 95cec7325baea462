// Package gateway is the HTTP client for the Kasyus API gateway. One Client
// carries the base URL, transport, and credentials; the per-backend services
// (auth, users, products, carts) share it.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the local development address of the API gateway.
	DefaultBaseURL = "http://localhost:8072"

	defaultTimeout  = 15 * time.Second
	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-Id"
)

// APIError is a non-success response from the gateway: a non-2xx status or a
// 2xx envelope with success=false. Message carries the backend-provided text,
// falling back to the raw body when the envelope cannot be parsed.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.Status, e.Message)
}

// envelope is the response wrapper every Kasyus backend except the auth
// token endpoint uses.
type envelope struct {
	Data         json.RawMessage `json:"data"`
	Success      *bool           `json:"success"`
	Message      string          `json:"message"`
	ResponseDate string          `json:"responseDate"`
}

// Client is the shared HTTP core for all gateway services.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  oauth2.TokenSource
	log     zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the default transport (15s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokenSource sets the bearer credential source. Requests without a
// source, or whose source has no live token, go out unauthenticated.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a gateway client for the given base URL. An empty baseURL
// falls back to DefaultBaseURL.
func New(baseURL string, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Auth returns the auth-service client.
func (c *Client) Auth() *AuthService {
	return &AuthService{client: c}
}

// Users returns the user-service client.
func (c *Client) Users() *UserService {
	return &UserService{client: c}
}

// Products returns the product-service client.
func (c *Client) Products() *ProductService {
	return &ProductService{client: c}
}

// Carts returns the cart-service client.
func (c *Client) Carts() *CartService {
	return &CartService{client: c}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "[newRequest] building request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(requestIDHeader, uuid.New().String())

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			// No live session; the request proceeds unauthenticated and the
			// backend decides whether that is acceptable for the endpoint.
			c.log.Debug().Err(err).Str("path", path).Msg("sending unauthenticated request")
		} else if tok.AccessToken != "" {
			tok.SetAuthHeader(req)
		}
	}

	return req, nil
}

// doJSON issues a request with an optional JSON body and decodes the
// enveloped response data into out. A nil out discards the response data.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[doJSON] encoding %s %s body", method, path)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, query, reader, contentTypeJSON)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[send] %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "[send] reading %s %s response", req.Method, req.URL.Path)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("gateway request")

	var env envelope
	envParsed := json.Unmarshal(raw, &env) == nil

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := string(raw)
		if envParsed && env.Message != "" {
			message = env.Message
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if envParsed && env.Success != nil && !*env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}

	// Enveloped payloads carry the entity under "data"; the auth token
	// endpoint and a few legacy routes respond with the bare entity.
	payload := raw
	if envParsed && len(env.Data) > 0 {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "[send] decoding %s %s response", req.Method, req.URL.Path)
	}
	return nil
}
