package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthbot/internal/factcheck"
	"truthbot/internal/logger"
	"truthbot/internal/models"
)

func TestRun_HistoryColumnsAligned(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	records := []models.CheckRecord{
		{ID: "id-true", Claim: "Water is wet", VerdictType: models.VerdictTrue, CreatedAt: created},
		{ID: "id-partial", Claim: "Bats are blind", VerdictType: models.VerdictPartiallyTrue, CreatedAt: created},
		{ID: "id-unknown", Claim: "Aliens built it", VerdictType: models.VerdictUnverifiable, CreatedAt: created},
	}

	var agent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		assert.Equal(t, "/history", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(records)
	}))
	t.Cleanup(srv.Close)

	client := factcheck.New(srv.URL, factcheck.WithUserAgent(cliUserAgent))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), client, logger.Discard(), options{history: 3}, strings.NewReader(""), &out))

	assert.Equal(t, cliUserAgent, agent)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(records))

	for i, line := range lines {
		idx := strings.Index(line, records[i].ID)
		require.Positive(t, idx, line)

		// date, two spaces, padded label, two spaces
		assert.Equal(t, len(time.DateTime)+2+historyLabelWidth+2, runewidth.StringWidth(line[:idx]), line)
		assert.True(t, strings.HasSuffix(line, records[i].Claim))
	}
}

func TestRun_HistoryEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), factcheck.New(srv.URL), logger.Discard(), options{history: 5}, strings.NewReader(""), &out))

	assert.Equal(t, "No saved checks.\n", out.String())
}
