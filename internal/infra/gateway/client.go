// Package gateway is the resilient client for the prediction service.
// Requests consult the health tracker before going out, retry transient
// failures, and fall back to cached responses when the service is down.
package gateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/vietddude/apiwatch/internal/core/domain"
	"github.com/vietddude/apiwatch/internal/monitor/classify"
	"github.com/vietddude/apiwatch/internal/monitor/metrics"
)

const (
	// DefaultRequestTimeout bounds a single upstream attempt.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultCacheTTL is how long responses stay servable from cache.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultMaxAttempts counts the first try plus retries.
	DefaultMaxAttempts = 3

	retryBaseDelay = 500 * time.Millisecond
)

// Config holds gateway configuration.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	MaxAttempts    int           `yaml:"max_attempts"`
}

// StatusSource reports whether the prediction service is believed
// reachable. The report is advisory; a stale offline verdict must not
// wedge the gateway, so misses still go upstream.
type StatusSource interface {
	Status() domain.Status
}

// Cache stores raw response payloads keyed by request shape.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// APIError is a non-2xx reply from the prediction service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prediction api: http %d: %s", e.StatusCode, e.Body)
}

// Client calls the prediction service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      Cache
	status     StatusSource
	log        *slog.Logger
}

// NewClient creates a gateway client. cache and status may be nil; the
// client then skips fallbacks and advisory checks respectively.
func NewClient(cfg Config, cache Cache, status StatusSource) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache:  cache,
		status: status,
		log:    slog.Default().With("component", "gateway"),
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// PredictPrice asks the service which price band the device falls into.
func (c *Client) PredictPrice(ctx context.Context, specs domain.DeviceSpecs) (*domain.PricePrediction, error) {
	var out domain.PricePrediction
	if err := c.do(ctx, http.MethodPost, "/predict/price", specs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictRAM asks the service to estimate the device's RAM.
func (c *Client) PredictRAM(ctx context.Context, specs domain.DeviceSpecs) (*domain.RAMPrediction, error) {
	var out domain.RAMPrediction
	if err := c.do(ctx, http.MethodPost, "/predict/ram", specs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictBattery asks the service to estimate the device's battery capacity.
func (c *Client) PredictBattery(ctx context.Context, specs domain.DeviceSpecs) (*domain.BatteryPrediction, error) {
	var out domain.BatteryPrediction
	if err := c.do(ctx, http.MethodPost, "/predict/battery", specs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictBrand asks the service to guess the device's brand.
func (c *Client) PredictBrand(ctx context.Context, specs domain.DeviceSpecs) (*domain.BrandPrediction, error) {
	var out domain.BrandPrediction
	if err := c.do(ctx, http.MethodPost, "/predict/brand", specs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search looks up known devices matching the query.
func (c *Client) Search(ctx context.Context, query string) ([]domain.DeviceMatch, error) {
	var out []domain.DeviceMatch
	path := "/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	endpoint := endpointLabel(path)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}
	key := cacheKey(method, path, payload)

	if c.status != nil && !c.status.Status().Online {
		if c.serveCached(ctx, key, endpoint, out) {
			c.log.Debug("Served cached response while service offline", "endpoint", endpoint)
			return nil
		}
		// Nothing cached; the verdict may be stale, so try anyway.
	}

	raw, err := c.doWithRetry(ctx, method, path, payload)
	if err != nil {
		if retryableFailure(err) && c.serveCached(ctx, key, endpoint, out) {
			c.log.Warn("Serving cached response after request failure",
				"endpoint", endpoint,
				"error", err,
			)
			return nil
		}
		metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "failure").Inc()
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "failure").Inc()
		return fmt.Errorf("parse response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, raw, c.cfg.CacheTTL); err != nil {
			c.log.Warn("Cache write failed", "endpoint", endpoint, "error", err)
		}
	}
	metrics.GatewayRequestsTotal.WithLabelValues(endpoint, "success").Inc()
	return nil
}

// doWithRetry runs attempts with exponential backoff. Only transient
// failures retry; a malformed request fails on the first answer.
func (c *Client) doWithRetry(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var raw []byte
	b := retry.WithMaxRetries(uint64(c.cfg.MaxAttempts-1), retry.NewExponential(retryBaseDelay))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		raw, err = c.doOnce(ctx, method, path, payload)
		if err != nil && retryableFailure(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return raw, err
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}

// serveCached loads and decodes a cached payload into out. Any cache
// trouble is a miss, never an error surfaced to the caller.
func (c *Client) serveCached(ctx context.Context, key, endpoint string, out any) bool {
	if c.cache == nil {
		return false
	}
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("Cache read failed", "endpoint", endpoint, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("Cached payload unreadable", "endpoint", endpoint, "error", err)
		return false
	}
	metrics.GatewayCacheHitsTotal.WithLabelValues(endpoint).Inc()
	return true
}

// retryableFailure reports whether err is transient: worth retrying and,
// failing that, worth serving from cache.
func retryableFailure(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	kind, _ := classify.Classify(err)
	return classify.Retryable(kind)
}

// cacheKey derives a stable key from the request shape.
func cacheKey(method, path string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(" "))
	h.Write([]byte(path))
	h.Write([]byte(" "))
	h.Write(payload)
	return "gateway:" + hex.EncodeToString(h.Sum(nil))
}

// endpointLabel normalizes a request path into a metrics label.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.TrimPrefix(path, "/")
}
