package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"truthbot/internal/agent"
)

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Expected bearer key, got %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}

		if req.Model != "gpt-test" || len(req.Messages) != 2 {
			t.Errorf("Unexpected request: %+v", req)
		}

		if req.Messages[0].Role != "system" || req.Messages[0].Content != agent.SystemPrompt {
			t.Error("Expected system prompt as first message")
		}

		if !strings.HasPrefix(req.Messages[1].Content, "this is the claim Cats can fly") {
			t.Errorf("Unexpected user message: %q", req.Messages[1].Content)
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"**VERDICT:** FALSE"}}]}`))
	}))
	defer srv.Close()

	a, err := agent.New(agent.Config{Provider: "gpt", Endpoint: srv.URL + "/", APIKey: "sk-test", Model: "gpt-test"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := a.Analyze(context.Background(), "Cats can fly", "Search Results for 'Cats can fly':")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if got != "**VERDICT:** FALSE" {
		t.Errorf("Expected verdict markdown, got %q", got)
	}
}

func TestAnalyze_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	a, err := New(agent.Config{Endpoint: srv.URL, APIKey: "bad"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = a.Analyze(context.Background(), "claim", "ctx")
	if err == nil || !strings.Contains(err.Error(), "Incorrect API key provided") || !strings.Contains(err.Error(), "401") {
		t.Fatalf("Expected API error message, got %v", err)
	}
}

func TestAnalyze_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	a, err := New(agent.Config{Endpoint: srv.URL, APIKey: "sk"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := a.Analyze(context.Background(), "claim", "ctx"); !errors.Is(err, agent.ErrEmptyResponse) {
		t.Fatalf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestNew_MissingKey(t *testing.T) {
	if _, err := New(agent.Config{}); !errors.Is(err, agent.ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
}
