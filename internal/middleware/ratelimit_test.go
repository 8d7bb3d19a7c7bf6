package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(t *testing.T, r rate.Limit, burst int) (*RateLimiter, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            r,
		Burst:           burst,
		CleanupInterval: time.Minute,
	}, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(rl.Stop)
	return rl, &buf
}

func postFrom(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat/messages", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_AllowsRequestsWithinBurst(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1, 3)
	handler := rl.Middleware()(okHandler())

	for i := 0; i < 3; i++ {
		if w := postFrom(handler, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i, w.Code)
		}
	}
}

func TestRateLimiter_Returns429WithRetryAfter(t *testing.T) {
	rl, logs := newTestRateLimiter(t, rate.Limit(0.5), 1)
	handler := rl.Middleware()(okHandler())

	postFrom(handler, "10.0.0.1:1234")
	w := postFrom(handler, "10.0.0.1:5678")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retry != 2 {
		t.Errorf("Retry-After = %q, want 2", w.Header().Get("Retry-After"))
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", body.Code)
	}
	if logs.Len() == 0 {
		t.Error("レート制限超過がログに記録されていない")
	}
}

func TestRateLimiter_IsolatesClients(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1, 1)
	handler := rl.Middleware()(okHandler())

	postFrom(handler, "10.0.0.1:1")
	if w := postFrom(handler, "10.0.0.1:2"); w.Code != http.StatusTooManyRequests {
		t.Errorf("same client: status = %d, want 429", w.Code)
	}
	if w := postFrom(handler, "10.0.0.2:1"); w.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", w.Code)
	}
	if rl.LimiterCount() != 2 {
		t.Errorf("LimiterCount = %d, want 2", rl.LimiterCount())
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1, 1)
	base := time.Now()
	rl.now = func() time.Time { return base }
	handler := rl.Middleware()(okHandler())

	postFrom(handler, "10.0.0.1:1")
	rl.now = func() time.Time { return base.Add(90 * time.Second) }
	postFrom(handler, "10.0.0.2:1")

	rl.now = func() time.Time { return base.Add(150 * time.Second) }
	rl.cleanup()

	if rl.LimiterCount() != 1 {
		t.Errorf("LimiterCount = %d, want 1", rl.LimiterCount())
	}
}

func TestChatRateLimiterConfig(t *testing.T) {
	cfg := ChatRateLimiterConfig(30)
	if cfg.Rate != rate.Limit(0.5) || cfg.Burst != 30 {
		t.Errorf("cfg = %+v", cfg)
	}
	if d := ChatRateLimiterConfig(0); d.Burst != 30 {
		t.Errorf("default burst = %d, want 30", d.Burst)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1, 1)
	rl.Stop()
	rl.Stop()
}
