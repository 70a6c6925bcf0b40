// Package backend talks to the research generation service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/research"
)

const (
	// DefaultBaseURL is where a locally started backend listens.
	DefaultBaseURL = "http://localhost:8000"

	// ResearchPath is the generation endpoint.
	ResearchPath = "/api/research"

	// DefaultTimeout covers retrieval, summarization and drafting, which
	// routinely take minutes.
	DefaultTimeout = 5 * time.Minute

	// DefaultRateLimit is requests per second.
	DefaultRateLimit = 1.0

	// DefaultMaxPapers matches the backend's own default.
	DefaultMaxPapers = 50

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 4096
)

// Paper lengths understood by the generator.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Request is the body of a generation call.
type Request struct {
	Topic         string   `json:"topic"`
	CitationStyle string   `json:"citation_style"`
	Length        string   `json:"length,omitempty"`
	FocusAreas    []string `json:"focus_areas,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	MaxPapers     int      `json:"max_papers,omitempty"`
}

// NewRequest returns a request for topic with default settings.
func NewRequest(topic string, style citation.Style) Request {
	return Request{
		Topic:         strings.TrimSpace(topic),
		CitationStyle: style.String(),
		Length:        LengthMedium,
		MaxPapers:     DefaultMaxPapers,
	}
}

// Client is a rate-limited HTTP client for the research backend.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key sent as a bearer token.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets the backend base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit sets the request rate in requests per second. Non-positive
// values disable limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a backend client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    DefaultBaseURL,
	}

	if key := os.Getenv("PV_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	msg := readErrorMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAuthError, &APIError{StatusCode: resp.StatusCode, Message: msg})
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, &APIError{StatusCode: resp.StatusCode, Message: msg})
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// readErrorMessage extracts a message from a FastAPI-style {"detail": ...}
// body, falling back to the raw text.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if s, ok := payload.Detail.(string); ok && s != "" {
			return s
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// Generate asks the backend for a research document on req.Topic.
//
// A document whose status is "error" is returned together with an error
// wrapping research.ErrGenerationFailed.
func (c *Client) Generate(ctx context.Context, req Request) (*research.Document, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ErrEmptyTopic
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ResearchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	doc, err := research.Decode(resp.Body)
	if err != nil {
		if errors.Is(err, research.ErrGenerationFailed) {
			return doc, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return doc, nil
}
