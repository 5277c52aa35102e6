package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/apiwatch/internal/control"
	"github.com/vietddude/apiwatch/internal/core/config"
	"github.com/vietddude/apiwatch/internal/core/domain"
	"github.com/vietddude/apiwatch/internal/monitor"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

// newUpstream fakes the prediction service. While healthy is set it
// serves /health and /predict/price; otherwise everything is a 500.
func newUpstream(healthy *atomic.Bool) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "message": "ok"})
	})
	mux.HandleFunc("/predict/price", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(domain.PricePrediction{PriceBand: 2, Label: "upper mid-range", Confidence: 0.81})
	})
	return httptest.NewServer(mux)
}

func TestGracefulShutdown(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	upstream := newUpstream(&healthy)
	defer upstream.Close()

	port := freePort(t)
	cfg := config.Default()
	cfg.Server.Port = port
	cfg.Target.URL = upstream.URL
	cfg.Gateway.BaseURL = upstream.URL
	cfg.Monitor.Interval = 100 * time.Millisecond

	app, err := control.NewService(cfg)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Failed to start service: %v", err)
	}

	if !waitFor(t, 3*time.Second, func() bool { return app.Tracker().Status().Online }) {
		t.Fatal("Service never reported the upstream as online")
	}

	// The status server answers on the configured port.
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/status", port))
	if err != nil {
		t.Fatalf("Failed to query status server: %v", err)
	}
	var st monitor.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	resp.Body.Close()
	if !st.Status.Online || st.Summary.State != "online" {
		t.Errorf("Status endpoint reported %+v", st.Summary)
	}

	// The gateway reaches the same upstream.
	pred, err := app.Gateway().PredictPrice(ctx, domain.DeviceSpecs{RAMMB: 4096, BatteryMAh: 4000})
	if err != nil {
		t.Fatalf("Gateway request failed: %v", err)
	}
	if pred.PriceBand != 2 {
		t.Errorf("Prediction = %+v", pred)
	}

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	// The port is released once Stop returns.
	if _, err := http.Get(fmt.Sprintf("http://localhost:%d/status", port)); err == nil {
		t.Error("Status server still answering after Stop")
	}
}

func TestOfflineDetectionAndRecovery(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	upstream := newUpstream(&healthy)
	defer upstream.Close()

	port := freePort(t)
	cfg := config.Default()
	cfg.Server.Port = port
	cfg.Target.URL = upstream.URL
	cfg.Gateway.BaseURL = upstream.URL
	cfg.Monitor.Interval = 50 * time.Millisecond

	app, err := control.NewService(cfg)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Failed to start service: %v", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	}()

	if !waitFor(t, 3*time.Second, func() bool { return app.Tracker().Status().Online }) {
		t.Fatal("Service never came online")
	}

	// A cached prediction while healthy keeps the gateway usable later.
	if _, err := app.Gateway().PredictPrice(ctx, domain.DeviceSpecs{RAMMB: 2048}); err != nil {
		t.Fatalf("Priming request failed: %v", err)
	}

	// Break the upstream. Three consecutive failures take it offline and
	// schedule a recovery retry.
	healthy.Store(false)
	if !waitFor(t, 5*time.Second, func() bool {
		s := app.Tracker().Status()
		return !s.Online && s.Retrying
	}) {
		t.Fatalf("Service never armed a retry; status %+v", app.Tracker().Status())
	}

	snap := app.Tracker().Status()
	if snap.ErrorKind != domain.FailureServer {
		t.Errorf("ErrorKind = %q, want %q", snap.ErrorKind, domain.FailureServer)
	}
	if snap.ConsecutiveFailures < 3 {
		t.Errorf("ConsecutiveFailures = %d, want >= 3", snap.ConsecutiveFailures)
	}

	// The gateway still answers from cache while the upstream is down.
	pred, err := app.Gateway().PredictPrice(ctx, domain.DeviceSpecs{RAMMB: 2048})
	if err != nil {
		t.Fatalf("Cached fallback failed: %v", err)
	}
	if pred.PriceBand != 2 {
		t.Errorf("Cached prediction = %+v", pred)
	}

	// Heal the upstream and reset through the admin endpoint.
	healthy.Store(true)
	resp, err := http.Post(fmt.Sprintf("http://localhost:%d/reset", port), "application/json", nil)
	if err != nil {
		t.Fatalf("Reset request failed: %v", err)
	}
	var st monitor.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("Failed to decode reset response: %v", err)
	}
	resp.Body.Close()

	if !st.Status.Online || st.Status.RetryCount != 0 {
		t.Errorf("Reset left status %+v", st.Status)
	}
}
