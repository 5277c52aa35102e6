package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HealthResponse is the payload the service's health endpoint returns.
// Only Status and Message drive the probe outcome; the rest is carried
// for logging.
type HealthResponse struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
	Version   string  `json:"version"`
	Uptime    float64 `json:"uptime"`
}

// HTTPProber probes the service's REST health endpoint.
type HTTPProber struct {
	healthURL  string
	httpClient *http.Client
}

// NewHTTPProber creates a prober for the service at baseURL. healthPath
// defaults to "/health" and timeout to DefaultTimeout.
func NewHTTPProber(baseURL, healthPath string, timeout time.Duration) *HTTPProber {
	if healthPath == "" {
		healthPath = "/health"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPProber{
		healthURL: strings.TrimRight(baseURL, "/") + healthPath,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Probe runs one health check round trip.
func (p *HTTPProber) Probe(ctx context.Context) Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL, nil)
	if err != nil {
		return Result{Latency: time.Since(start), Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Result{Latency: time.Since(start), Err: fmt.Errorf("health request: %w", err)}
	}
	defer resp.Body.Close()

	latency := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Latency: latency, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Latency: latency, Err: fmt.Errorf("health endpoint returned http %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return Result{Latency: latency, Err: fmt.Errorf("parse health response: %w", err)}
	}

	// A reachable service that does not call itself healthy is a failure.
	if health.Status != "healthy" {
		msg := health.Message
		if msg == "" {
			msg = "no detail provided"
		}
		return Result{Latency: latency, Err: fmt.Errorf("service reported status %q: %s", health.Status, msg)}
	}

	return Result{Latency: latency}
}

// Close cleans up idle connections.
func (p *HTTPProber) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
