package factcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"truthbot/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func TestCheck_Success(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/fact-check" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}

		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}

		var req models.FactCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}

		if req.Claim != "The moon is made of cheese" {
			t.Errorf("Expected trimmed claim, got %q", req.Claim)
		}

		_ = json.NewEncoder(w).Encode(models.FactCheckResponse{
			Claim:              req.Claim,
			SearchResultsCount: 8,
			Verdict:            "**VERDICT:** FALSE",
			Success:            true,
		})
	})

	resp, err := New(srv.URL+"/").Check(context.Background(), "  The moon is made of cheese  ")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if resp.SearchResultsCount != 8 || resp.Verdict != "**VERDICT:** FALSE" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestCheck_EmptyClaimMakesNoRequest(t *testing.T) {
	var calls atomic.Int32

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := New(srv.URL).Check(context.Background(), " \t\n ")
	if !errors.Is(err, ErrEmptyClaim) {
		t.Fatalf("Expected ErrEmptyClaim, got %v", err)
	}

	if calls.Load() != 0 {
		t.Errorf("Expected no requests, got %d", calls.Load())
	}
}

func TestCheck_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"detail", http.StatusBadRequest, `{"detail":"Claim cannot be empty"}`, "Claim cannot be empty"},
		{"error field", http.StatusBadGateway, `{"error":"upstream down"}`, "upstream down"},
		{"detail wins", http.StatusInternalServerError, `{"detail":"d","error":"e"}`, "d"},
		{"non-json body", http.StatusInternalServerError, `<html>oops</html>`, "API Error: 500 Internal Server Error"},
		{"empty body", http.StatusServiceUnavailable, ``, "API Error: 503 Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := New(srv.URL).Check(context.Background(), "claim")
			if err == nil {
				t.Fatal("Expected error")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %T", err)
			}

			if apiErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, apiErr.StatusCode)
			}

			if apiErr.Message != tt.expected {
				t.Errorf("Expected message %q, got %q", tt.expected, apiErr.Message)
			}

			if !errors.Is(err, ErrFactCheckFailed) {
				t.Error("Expected error to wrap ErrFactCheckFailed")
			}
		})
	}
}

func TestCheck_SuccessFalse(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"claim":"x","search_results_count":0,"verdict":"","success":false,"error":"agent unavailable"}`))
	})

	_, err := New(srv.URL).Check(context.Background(), "x")
	if err == nil || err.Error() != "agent unavailable" {
		t.Fatalf("Expected 'agent unavailable', got %v", err)
	}

	if !errors.Is(err, ErrFactCheckFailed) {
		t.Error("Expected error to wrap ErrFactCheckFailed")
	}
}

func TestCheck_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"claim":`))
	})

	_, err := New(srv.URL).Check(context.Background(), "x")
	if !errors.Is(err, ErrFactCheckFailed) {
		t.Fatalf("Expected ErrFactCheckFailed, got %v", err)
	}
}

func TestCheck_ContextCancelled(t *testing.T) {
	release := make(chan struct{})

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL).Check(ctx, "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}

	if !errors.Is(err, ErrFactCheckFailed) {
		t.Error("Expected error to wrap ErrFactCheckFailed")
	}
}

func TestHealth(t *testing.T) {
	healthy := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		_, _ = w.Write([]byte(`{"status":"healthy","service":"TruthBot API"}`))
	})

	if !New(healthy.URL).Health(context.Background()) {
		t.Error("Expected healthy")
	}

	failing := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if New(failing.URL).Health(context.Background()) {
		t.Error("Expected unhealthy on 500")
	}

	if New("http://127.0.0.1:1").Health(context.Background()) {
		t.Error("Expected unhealthy when unreachable")
	}
}

func TestHistory(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/history":
			if r.URL.Query().Get("limit") != "5" {
				t.Errorf("Expected limit=5, got %q", r.URL.RawQuery)
			}

			_, _ = w.Write([]byte(`[{"id":"a","claim":"c1"},{"id":"b","claim":"c2"}]`))
		case "/history/a":
			_, _ = w.Write([]byte(`{"id":"a","claim":"c1","verdict_type":"FALSE"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Check not found"}`))
		}
	})

	c := New(srv.URL)

	records, err := c.History(context.Background(), 5)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(records) != 2 || records[1].Claim != "c2" {
		t.Errorf("Unexpected records: %+v", records)
	}

	rec, err := c.HistoryRecord(context.Background(), "a")
	if err != nil || rec.VerdictType != models.VerdictFalse {
		t.Errorf("Unexpected record %+v, err %v", rec, err)
	}

	_, err = c.HistoryRecord(context.Background(), "missing")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 APIError, got %v", err)
	}
}

func TestCheck_UserAgent(t *testing.T) {
	var agents []string

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		_ = json.NewEncoder(w).Encode(models.FactCheckResponse{Verdict: "**VERDICT:** TRUE", Success: true})
	})

	for _, c := range []*Client{New(srv.URL), New(srv.URL, WithUserAgent("TruthBot-CLI/1.0"))} {
		if _, err := c.Check(context.Background(), "Water is wet"); err != nil {
			t.Fatalf("Check failed: %v", err)
		}
	}

	if len(agents) != 2 || agents[0] != "TruthBot/1.0" || agents[1] != "TruthBot-CLI/1.0" {
		t.Errorf("Unexpected user agents: %v", agents)
	}
}
