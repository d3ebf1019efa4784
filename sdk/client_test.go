package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"sgci.io/catalog/models"
)

const resourcesBody = `{"data":[
	{"id":"r1","name":"scratch","resourceType":"STORAGE",
	 "resource":{"storageType":"lustre","capacity":{"totalBytes":9007199254740993}}},
	{"id":"r2","name":"cluster","resourceType":"COMPUTE",
	 "resource":{"schedulerType":"slurm"}}
]}`

func newTestClient(t *testing.T, urls ...string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURLs:     urls,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewClient() with no URLs error = %v, want ErrInvalidConfig", err)
	}

	client, err := NewClient(ClientConfig{BaseURLs: []string{"https://catalog.example.org"}})
	if err != nil {
		t.Fatalf("NewClient() unexpected error = %v", err)
	}
	if client.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want 3", client.RetryAttempts)
	}
}

func TestClient_ListResources(t *testing.T) {
	var gotQuery, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/resources" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotQuery = r.URL.RawQuery
		gotRequestID = r.Header.Get(HeaderRequestID)
		writeJSON(w, http.StatusOK, resourcesBody)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	resources, err := client.ListResources(context.Background(), ResourceQuery{ResourceType: "STORAGE", Name: "scratch"})
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}

	if gotQuery != "name=scratch&resourceType=STORAGE" {
		t.Errorf("query = %q", gotQuery)
	}
	if _, err := uuid.Parse(gotRequestID); err != nil {
		t.Errorf("request ID %q is not a UUID", gotRequestID)
	}

	if len(resources) != 2 {
		t.Fatalf("got %d resources, want 2", len(resources))
	}
	r1 := resources[0].Resource
	if r1.Variant != models.VariantStorage || r1.Storage.StorageType != "lustre" {
		t.Errorf("r1 payload = %+v, want storage/lustre", r1)
	}
	if r1.Storage.Capacity.TotalBytes != 9007199254740993 {
		t.Errorf("large total lost precision: %d", r1.Storage.Capacity.TotalBytes)
	}
	r2 := resources[1].Resource
	if r2.Variant != models.VariantCompute || r2.Compute.SchedulerType != "slurm" {
		t.Errorf("r2 payload = %+v, want compute/slurm", r2)
	}
}

func TestClient_ListResourcesNoFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	}))
	defer server.Close()

	resources, err := newTestClient(t, server.URL).ListResources(context.Background(), ResourceQuery{})
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if len(resources) != 0 {
		t.Errorf("got %d resources, want 0", len(resources))
	}
}

func TestClient_ListResourcesUndecodableRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"id":"r3","name":"odd","resourceType":"STORAGE",
			"resource":{"storageType":"nfs","schedulerType":"slurm"}}]}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).ListResources(context.Background(), ResourceQuery{})

	var recErr *models.RecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("error = %v, want *models.RecordError", err)
	}
	if recErr.ID != "r3" || recErr.Index != 0 {
		t.Errorf("RecordError = %+v", recErr)
	}
	if !errors.Is(err, models.ErrTypeResolution) {
		t.Errorf("error = %v, want ErrTypeResolution", err)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"bad request", http.StatusBadRequest, `{"error":"invalid_request","message":"bad query"}`, ErrBadRequest},
		{"rate limited", http.StatusTooManyRequests, `{"error":"rate_limit_exceeded"}`, ErrRateLimited},
		{"invalid record", http.StatusInternalServerError, `{"error":"invalid_record","request_id":"abc"}`, ErrInvalidRecord},
		{"internal", http.StatusInternalServerError, `{"error":"internal_error"}`, ErrServerError},
		{"plain text", http.StatusNotFound, "404 page not found", ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				writeJSON(w, tt.status, tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).ListResources(context.Background(), ResourceQuery{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("APIError = %+v, want status %d", apiErr, tt.status)
			}
			if n := atomic.LoadInt32(&calls); n != 1 {
				t.Errorf("server called %d times, want 1 (no retry)", n)
			}
		})
	}
}

func TestClient_RetriesUnavailable(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, `{"error":"service_unavailable"}`)
			return
		}
		writeJSON(w, http.StatusOK, resourcesBody)
	}))
	defer server.Close()

	resources, err := newTestClient(t, server.URL).ListResources(context.Background(), ResourceQuery{})
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if len(resources) != 2 {
		t.Errorf("got %d resources, want 2", len(resources))
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("server called %d times, want 3", n)
	}
}

func TestClient_Failover(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"error":"service_unavailable"}`)
	}))
	defer down.Close()

	var upCalls int32
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upCalls, 1)
		writeJSON(w, http.StatusOK, resourcesBody)
	}))
	defer up.Close()

	client := newTestClient(t, down.URL, up.URL)
	if _, err := client.ListResources(context.Background(), ResourceQuery{}); err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if client.getPreferred() != up.URL {
		t.Errorf("preferred = %q, want %q", client.getPreferred(), up.URL)
	}

	urls := client.buildURLList()
	if len(urls) != 2 || urls[0] != up.URL || urls[1] != down.URL {
		t.Errorf("buildURLList() = %v", urls)
	}
}

func TestClient_AllInstancesFailed(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"error":"service_unavailable","message":"Resource store unavailable"}`)
	}))
	defer down.Close()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	_, err := newTestClient(t, closedURL, down.URL).ListResources(context.Background(), ResourceQuery{})
	if !errors.Is(err, ErrAllInstancesFailed) {
		t.Fatalf("error = %v, want ErrAllInstancesFailed", err)
	}
	if !IsNotReady(err) {
		t.Error("IsNotReady() = false")
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{}`)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{
		BaseURLs:     []string{server.URL},
		RetryWaitMin: time.Second,
		RetryWaitMax: time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.ListResources(ctx, ResourceQuery{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("client kept retrying after the context expired")
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health/ready" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := json.Marshal(map[string]any{
			"data": HealthStatus{Status: "ready", InstanceID: "i-1", Store: "connected"},
		})
		writeJSON(w, http.StatusOK, string(body))
	}))
	defer server.Close()

	status, err := newTestClient(t, server.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if status.Status != "ready" || status.InstanceID != "i-1" {
		t.Errorf("Health() = %+v", status)
	}
}

func TestCalculateBackoff(t *testing.T) {
	client := &Client{RetryWaitMin: 10 * time.Millisecond, RetryWaitMax: 80 * time.Millisecond}

	for attempt := 0; attempt < 6; attempt++ {
		d := client.calculateBackoff(attempt)
		if d < client.RetryWaitMin || d > client.RetryWaitMax {
			t.Errorf("attempt %d: backoff %v outside [%v, %v]", attempt, d, client.RetryWaitMin, client.RetryWaitMax)
		}
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 503, Code: "service_unavailable", Message: "down", RequestID: "req-1"}
	want := "catalog API error 503 (service_unavailable): down [request req-1]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
