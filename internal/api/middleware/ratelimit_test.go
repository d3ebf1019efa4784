package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"sgci.io/catalog/internal/metrics"
	"sgci.io/catalog/models"
)

func TestRateLimiter_AllowBurstThenBlock(t *testing.T) {
	rl := NewRateLimiter(1, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("Request %d within burst was rejected", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Expected request beyond burst to be rejected")
	}

	// Buckets are per identifier.
	if !rl.Allow("10.0.0.2") {
		t.Error("Expected a different identifier to have its own bucket")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(10, 10, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(2 * time.Minute)
	rl.Allow("fresh")

	if removed := rl.Sweep(); removed != 1 {
		t.Errorf("Expected 1 idle bucket removed, got %d", removed)
	}
	if rl.Len() != 1 {
		t.Errorf("Expected 1 bucket left, got %d", rl.Len())
	}
}

func TestRateLimiter_RunStops(t *testing.T) {
	rl := NewRateLimiter(10, 10, time.Millisecond)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		rl.Run(done, time.Millisecond)
		close(finished)
	}()
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after done was closed")
	}
}

func TestRateLimiter_RunReportsTrackedClients(t *testing.T) {
	rl := NewRateLimiter(10, 10, time.Hour)
	rl.Allow("192.0.2.1")
	rl.Allow("192.0.2.2")

	done := make(chan struct{})
	defer close(done)
	go rl.Run(done, time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for testutil.ToFloat64(metrics.RateLimitTrackedClients) != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected tracked clients gauge 2, got %v", testutil.ToFloat64(metrics.RateLimitTrackedClients))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestLogger(zap.NewNop()))
	router.Use(RateLimitByIP(NewRateLimiter(1, 2, time.Minute)))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("Expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("Expected third request to be limited, got %d", codes[2])
	}

	var body models.ErrorResponse
	if err := json.Unmarshal(last.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.Error != "rate_limit_exceeded" {
		t.Errorf("Expected error code rate_limit_exceeded, got %q", body.Error)
	}
	if body.RequestID == "" {
		t.Error("Expected request id in error body")
	}
}
