// Package enrich implements the optional external merchant directory
// client. The engine treats it as best effort: lookups are rate limited,
// cached, and failures never surface past the coordinator.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/centime-app/centime/internal/common"
	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/service"
)

// Config holds the merchant directory connection settings.
type Config struct {
	URL               string
	APIKey            string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerMinute int
}

// Client queries a merchant directory over HTTP and caches its answers.
type Client struct {
	httpClient *http.Client
	limiter    *rateLimiter
	cache      *hintCache
	baseURL    string
	apiKey     string
}

var _ service.Enricher = (*Client)(nil)

// New creates a directory client. An empty URL means enrichment is not
// configured; callers should treat ErrEnrichmentDisabled as "run without".
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, common.ErrEnrichmentDisabled
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: invalid enrichment URL: %v", common.ErrInvalidConfig, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		limiter: newRateLimiter(cfg.RequestsPerMinute),
		cache:   newHintCache(cfg.CacheTTL),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// directoryResponse is the wire format of a merchant lookup.
type directoryResponse struct {
	Tag         string  `json:"tag"`
	ExpenseType string  `json:"expense_type"`
	Confidence  float64 `json:"confidence"`
}

// Lookup resolves a normalized merchant key to a classification hint. A nil
// hint with nil error means the directory doesn't know the merchant.
func (c *Client) Lookup(ctx context.Context, merchantKey string) (*service.EnrichmentHint, error) {
	if merchantKey == "" {
		return nil, nil
	}

	if hint, ok := c.cache.get(merchantKey); ok {
		return hint, nil
	}

	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}

	hint, err := c.fetch(ctx, merchantKey)
	if err != nil {
		return nil, err
	}

	c.cache.set(merchantKey, hint)
	return hint, nil
}

func (c *Client) fetch(ctx context.Context, merchantKey string) (*service.EnrichmentHint, error) {
	endpoint := c.baseURL + "/v1/merchants?q=" + url.QueryEscape(merchantKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decode
	case http.StatusNotFound:
		return nil, nil
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: merchant directory throttled the request", common.ErrRateLimit)
	default:
		return nil, fmt.Errorf("merchant directory error (status %d): %s", resp.StatusCode, string(body))
	}

	var response directoryResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if response.Tag == "" {
		return nil, nil
	}

	return &service.EnrichmentHint{
		Tag:         response.Tag,
		ExpenseType: parseExpenseType(response.ExpenseType),
		Confidence:  clampConfidence(response.Confidence),
	}, nil
}

// CacheSize reports how many merchant lookups are currently cached.
func (c *Client) CacheSize() int {
	return c.cache.size()
}

// Close releases the limiter and cache goroutines.
func (c *Client) Close() {
	c.limiter.Close()
	c.cache.Close()
}

func parseExpenseType(s string) model.ExpenseType {
	if strings.EqualFold(s, string(model.ExpenseFixed)) {
		return model.ExpenseFixed
	}
	return model.ExpenseVariable
}

func clampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
