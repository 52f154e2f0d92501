package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/renderdash/rdash/internal/domain"
	"github.com/renderdash/rdash/internal/store/filecache"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("test-key", WithBaseURL(srv.URL))
	t.Cleanup(client.Close)
	return srv, client
}

func TestGetService(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/services/srv-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id": "srv-1", "name": "chat", "type": "web_service", "status": "available"}`))
	})

	svc, err := client.GetService(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	if svc.ID != "srv-1" || svc.Name != "chat" || svc.Status != domain.StatusAvailable {
		t.Errorf("service = %+v", svc)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind ErrorKind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: ErrAuth},
		{name: "not found", status: http.StatusNotFound, wantKind: ErrNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, wantKind: ErrRateLimited},
		{name: "server error", status: http.StatusInternalServerError, wantKind: ErrHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			_, err := client.GetService(context.Background(), "srv-1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type = %T, want *APIError", err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", apiErr.Kind, tt.wantKind)
			}
		})
	}
}

func TestNetworkErrorMapped(t *testing.T) {
	client := NewClient("test-key", WithBaseURL("http://127.0.0.1:1"))
	defer client.Close()

	_, err := client.GetService(context.Background(), "srv-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Kind != ErrNetwork {
		t.Errorf("Kind = %v, want ErrNetwork", apiErr.Kind)
	}
}

func TestGetLatestDeployAbsorbsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "empty list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"deploys": []}`))
			},
		},
		{
			name: "endpoint error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "unusable payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"message": "not a list"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, tt.handler)
			deploy, err := client.GetLatestDeploy(context.Background(), "srv-1")
			if err != nil {
				t.Fatalf("GetLatestDeploy returned error: %v", err)
			}
			if deploy != nil {
				t.Errorf("deploy = %+v, want nil", deploy)
			}
		})
	}
}

func TestGetServiceWithDeploy(t *testing.T) {
	tests := []struct {
		name         string
		deployStatus string
		wantStatus   domain.ServiceStatus
	}{
		{name: "in-progress deploy forces deploying", deployStatus: "build_in_progress", wantStatus: domain.StatusDeploying},
		{name: "live deploy leaves status alone", deployStatus: "live", wantStatus: domain.StatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/services/srv-1":
					w.Write([]byte(`{"id": "srv-1", "name": "chat", "status": "available"}`))
				case "/services/srv-1/deploys":
					if got := r.URL.Query().Get("limit"); got != "1" {
						t.Errorf("limit = %q, want 1", got)
					}
					w.Write([]byte(`{"deploys": [{"id": "dep-1", "status": "` + tt.deployStatus + `"}]}`))
				default:
					http.NotFound(w, r)
				}
			})

			svc, err := client.GetServiceWithDeploy(context.Background(), "srv-1")
			if err != nil {
				t.Fatalf("GetServiceWithDeploy failed: %v", err)
			}
			if svc.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", svc.Status, tt.wantStatus)
			}
			if svc.LatestDeploy == nil || svc.LatestDeploy.ID != "dep-1" {
				t.Errorf("LatestDeploy = %+v", svc.LatestDeploy)
			}
		})
	}
}

func TestGetServiceWithDeployNoDeploys(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/srv-1":
			w.Write([]byte(`{"id": "srv-1", "status": "available"}`))
		case "/services/srv-1/deploys":
			w.Write([]byte(`{"deploys": []}`))
		default:
			http.NotFound(w, r)
		}
	})

	svc, err := client.GetServiceWithDeploy(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("GetServiceWithDeploy failed: %v", err)
	}
	if svc.LatestDeploy != nil {
		t.Errorf("LatestDeploy = %+v, want nil", svc.LatestDeploy)
	}
	if svc.Status != domain.StatusAvailable {
		t.Errorf("Status = %v, want unmodified Available", svc.Status)
	}
}

func TestListServicesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"services": [
			{"service": {"id": "srv-1", "name": "chat", "type": "web_service", "status": "available",
				"serviceDetails": {"url": "https://chat.onrender.com"},
				"customDomains": [{"name": "chat.example.com"}]}}
		]}`))
	}))
	defer srv.Close()

	cache, err := filecache.New(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("cache setup failed: %v", err)
	}
	client := NewClient("test-key", WithBaseURL(srv.URL), WithCache(cache))
	defer client.Close()

	first, err := client.ListServices(context.Background(), 100, true)
	if err != nil {
		t.Fatalf("ListServices failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("network hits = %d, want 1", hits.Load())
	}

	// Second call must be served from cache without a network call,
	// and reconstruct field-for-field equal services.
	second, err := client.ListServices(context.Background(), 100, true)
	if err != nil {
		t.Fatalf("cached ListServices failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("network hits = %d after cached call, want 1", hits.Load())
	}
	if len(second) != 1 {
		t.Fatalf("cached list has %d services, want 1", len(second))
	}
	a, b := first[0], second[0]
	if a.ID != b.ID || a.Name != b.Name || a.Type != b.Type ||
		a.Status != b.Status || a.URL != b.URL || a.CustomDomain != b.CustomDomain {
		t.Errorf("round-trip mismatch: %+v vs %+v", a, b)
	}

	// A different limit is a different key.
	if _, err := client.ListServices(context.Background(), 50, true); err != nil {
		t.Fatalf("ListServices(50) failed: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("network hits = %d, want 2 after different limit", hits.Load())
	}

	// Cache disabled always goes to the network.
	if _, err := client.ListServices(context.Background(), 100, false); err != nil {
		t.Fatalf("uncached ListServices failed: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("network hits = %d, want 3 with cache disabled", hits.Load())
	}
}

func TestGetEnvVars(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/srv-1/env-vars" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"envVar": {"key": "PORT", "value": "8080"}}]`))
	})

	vars, err := client.GetEnvVars(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("GetEnvVars failed: %v", err)
	}
	if len(vars) != 1 || vars[0].Key != "PORT" {
		t.Errorf("vars = %+v", vars)
	}
}
