package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/logger"
	"github.com/meronoumer/moodreads/internal/metrics"
)

const maxBodyBytes = 4 << 20

// Client talks to the recommendation backend. Endpoints are tried in the
// configured order until one of them answers with a usable body.
type Client struct {
	httpClient *http.Client
	endpoints  []*endpoint
	breaker    BreakerSettings
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBreakerSettings(s BreakerSettings) Option {
	return func(c *Client) { c.breaker = s }
}

// NewClient resolves relative endpoints against baseURL.
func NewClient(endpoints []string, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("no backend endpoints configured")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    DefaultBreakerSettings(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, raw := range endpoints {
		resolved, err := resolveEndpoint(raw, baseURL)
		if err != nil {
			return nil, err
		}
		c.endpoints = append(c.endpoints, newEndpoint(resolved, c.breaker))
	}
	return c, nil
}

// Endpoints returns the resolved endpoint URLs in attempt order.
func (c *Client) Endpoints() []string {
	out := make([]string, len(c.endpoints))
	for i, ep := range c.endpoints {
		out[i] = ep.url
	}
	return out
}

// Recommend posts {mood, limit} and returns the decoded books together with
// the endpoint that served them. When every endpoint fails the last
// *domain.TransportError is returned.
func (c *Client) Recommend(ctx context.Context, mood string, limit int) (*domain.RecommendationResult, error) {
	body, err := json.Marshal(domain.RecommendRequest{Mood: mood, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for i, ep := range c.endpoints {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &domain.TransportError{Endpoint: ep.url, Err: ctxErr}
		}

		books, err := ep.call(func() ([]domain.Book, error) {
			return c.post(ctx, ep.url, body)
		})
		if err == nil {
			return &domain.RecommendationResult{Books: books, Endpoint: ep.url}, nil
		}

		lastErr = err
		entry := logger.Component(ctx, "model").WithError(err).WithField("endpoint", ep.url)
		if i < len(c.endpoints)-1 {
			entry.Warn("backend attempt failed, trying next endpoint")
		} else {
			entry.Error("backend attempt failed, no endpoints left")
		}
	}

	if !domain.IsTransportError(lastErr) {
		lastErr = &domain.TransportError{Endpoint: c.endpoints[len(c.endpoints)-1].url, Err: lastErr}
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]domain.Book, error) {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &domain.TransportError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.TransportError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	books, err := DecodeRecommendations(data)
	if err != nil {
		return nil, &domain.TransportError{Endpoint: endpoint, Err: fmt.Errorf("decode body: %w", err)}
	}
	return books, nil
}

// DecodeRecommendations extracts the recommendations array from a backend
// body. A missing or non-array field yields an empty, non-nil slice; books
// without a title are dropped.
func DecodeRecommendations(data []byte) ([]domain.Book, error) {
	var envelope struct {
		Recommendations json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(envelope.Recommendations)
	if len(raw) == 0 || raw[0] != '[' {
		return []domain.Book{}, nil
	}

	var decoded []domain.Book
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}

	books := make([]domain.Book, 0, len(decoded))
	for _, b := range decoded {
		if strings.TrimSpace(b.Title) == "" {
			continue
		}
		books = append(books, b)
	}
	return books, nil
}

func resolveEndpoint(raw, baseURL string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", raw, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if baseURL == "" {
		return "", fmt.Errorf("relative endpoint %q needs a base url", raw)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}
