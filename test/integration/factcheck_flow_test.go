package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"truthbot/internal/agent"
	_ "truthbot/internal/agent/providers"
	"truthbot/internal/cache"
	"truthbot/internal/checker"
	"truthbot/internal/config"
	"truthbot/internal/factcheck"
	"truthbot/internal/formatter"
	"truthbot/internal/history"
	"truthbot/internal/models"
	"truthbot/internal/search"
	"truthbot/internal/server"
	"truthbot/internal/session"
	"truthbot/internal/validator"
	"truthbot/internal/verdict"
)

const claim = "The moon is made of cheese"

func readFixture(t *testing.T) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("..", "fixtures", "canonical_verdict.md"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	return strings.TrimRight(string(content), "\n")
}

// upstreams fakes the search and model APIs.
type upstreams struct {
	search     *httptest.Server
	model      *httptest.Server
	modelCalls atomic.Int32
}

func startUpstreams(t *testing.T, reply string, results int) *upstreams {
	t.Helper()

	u := &upstreams{}

	u.search = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{"query": claim}

		items := make([]map[string]string, 0, results)
		for i := 0; i < results; i++ {
			items = append(items, map[string]string{
				"title":   "Lunar fact sheet",
				"url":     "https://www.nasa.gov/moon",
				"content": "The Moon is a rocky body.",
			})
		}

		out["results"] = items
		_ = json.NewEncoder(w).Encode(out)
	}))

	u.model = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.modelCalls.Add(1)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
		})
	}))

	t.Cleanup(func() {
		u.search.Close()
		u.model.Close()
	})

	return u
}

func startAPI(t *testing.T, u *upstreams) (*httptest.Server, *history.Store) {
	t.Helper()

	cfg := config.Default()
	cfg.Search.Endpoint = u.search.URL
	cfg.Search.APIKey = "tvly-test"
	cfg.Search.Retry.InitialDelayMs = 1
	cfg.Agent.Endpoint = u.model.URL
	cfg.Agent.OpenAIKey = "sk-test"

	a, err := agent.New(agent.FromConfig(cfg.Agent, nil))
	if err != nil {
		t.Fatalf("agent.New failed: %v", err)
	}

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open failed: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	svc := checker.NewService(search.NewClient(cfg.Search, nil), a,
		checker.WithCache(cache.NewMemory(time.Hour)),
		checker.WithRecorder(store),
		checker.WithValidator(validator.NewVerdictValidator(cfg)),
	)

	api := httptest.NewServer(server.New(cfg.Server, svc, server.WithHistory(store)).Handler())
	t.Cleanup(api.Close)

	return api, store
}

func TestFactCheckFlow_EndToEnd(t *testing.T) {
	fixture := readFixture(t)
	u := startUpstreams(t, fixture, 8)
	api, _ := startAPI(t, u)

	client := factcheck.New(api.URL, factcheck.WithTimeout(5*time.Second))
	ctx := context.Background()

	if !client.Health(ctx) {
		t.Fatal("Expected API to be healthy")
	}

	s := session.New(client)

	v, err := s.Submit(ctx, claim)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	want := verdict.Parse(fixture, claim, 8)

	if v.VerdictType != models.VerdictFalse || v.Confidence != models.ConfidenceHigh {
		t.Errorf("Unexpected verdict: %s/%s", v.VerdictType, v.Confidence)
	}

	if v.Reasoning != want.Reasoning || len(v.Sources) != 3 || len(v.Limitations) != 3 {
		t.Errorf("Expected verdict to match fixture parse, got %+v", v)
	}

	if v.SearchResultsCount != 8 || v.Claim != claim {
		t.Errorf("Expected passthrough of claim and count, got %q/%d", v.Claim, v.SearchResultsCount)
	}

	if !strings.Contains(formatter.Terminal(*v, 100), "Analyzed 8 web sources") {
		t.Error("Expected terminal card to report the source count")
	}

	// A repeat with different casing is served from the cache.
	if _, err := s.Submit(ctx, "the moon is made of CHEESE"); err != nil {
		t.Fatalf("Second submit failed: %v", err)
	}

	if n := u.modelCalls.Load(); n != 1 {
		t.Errorf("Expected one model call, got %d", n)
	}

	records, err := client.History(ctx, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(records) != 1 || records[0].VerdictType != models.VerdictFalse {
		t.Fatalf("Expected one saved FALSE check, got %+v", records)
	}

	rec, err := client.HistoryRecord(ctx, records[0].ID)
	if err != nil {
		t.Fatalf("HistoryRecord failed: %v", err)
	}

	if rec.Verdict != fixture {
		t.Error("Expected saved verdict markdown to match the fixture")
	}
}

func TestFactCheckFlow_EmptyClaimRejected(t *testing.T) {
	u := startUpstreams(t, "**VERDICT:** TRUE", 1)
	api, _ := startAPI(t, u)

	resp, err := http.Post(api.URL+"/fact-check", "application/json", strings.NewReader(`{"claim":"  "}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if body.Detail != "Claim cannot be empty" {
		t.Errorf("Unexpected detail %q", body.Detail)
	}

	if u.modelCalls.Load() != 0 {
		t.Error("Expected no model call for an empty claim")
	}
}

func TestFactCheckFlow_ServerErrorSurfacesDetail(t *testing.T) {
	u := startUpstreams(t, "", 2)
	api, _ := startAPI(t, u)

	s := session.New(factcheck.New(api.URL))

	_, err := s.Submit(context.Background(), claim)
	if err == nil {
		t.Fatal("Expected failure for an empty model reply")
	}

	if !strings.HasPrefix(err.Error(), "Error during fact-checking: ") {
		t.Errorf("Expected server detail as the error message, got %q", err.Error())
	}

	if !s.CanRetry() {
		t.Error("Expected the failed claim to be retryable")
	}
}

func TestCanonicalFixture_ValidatesAndNormalizes(t *testing.T) {
	fixture := readFixture(t)

	result := validator.NewVerdictValidator(nil).Validate(fixture)
	if !result.IsValid {
		t.Fatalf("Expected fixture to validate: %s", result.String())
	}

	normalized := formatter.FormatMarkdown(fixture, claim)

	if got, want := verdict.Parse(normalized, claim, 8), verdict.Parse(fixture, claim, 8); got.Reasoning != want.Reasoning ||
		len(got.Sources) != len(want.Sources) || len(got.Limitations) != len(want.Limitations) {
		t.Errorf("Expected normalization to preserve the parse:\n%s", normalized)
	}
}
