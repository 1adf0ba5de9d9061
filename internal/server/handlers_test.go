package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/hikari/internal/config"
	"github.com/hyperjump/hikari/internal/dataset"
	"github.com/hyperjump/hikari/internal/matcher"
	"github.com/hyperjump/hikari/internal/models"
	"github.com/hyperjump/hikari/internal/search"
)

const testDataset = `[
  {"id": "a", "activity": "Pizza delivery", "sector": "Food service", "category": "Restaurants"},
  {"id": "b", "activity": "Pizza restaurant operation", "sector": "Food service", "category": "Restaurants"},
  {"id": "c", "activity": "Software development", "sector": "Information and communication", "category": "Computer programming"}
]`

type searchBody struct {
	Query string `json:"query"`
	State string `json:"state"`
	Total int    `json:"total"`
	Hits  []struct {
		Rank        int               `json:"rank"`
		Record      map[string]string `json:"record"`
		Highlighted map[string]string `json:"highlighted"`
		Matches     []struct {
			Field  string   `json:"field"`
			Ranges [][2]int `json:"ranges"`
		} `json:"matches"`
	} `json:"hits"`
	Suggestions []string `json:"suggestions"`
	AutoFuzzy   bool     `json:"auto_fuzzy"`
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0644))

	cfg := config.Default()
	cfg.Dataset.Path = path
	store, err := dataset.Open(path, models.DefaultFields)
	require.NoError(t, err)
	m, err := matcher.NewMatcher(cfg.Search.Matcher)
	require.NoError(t, err)
	engine, err := search.NewEngine(context.Background(), store, m, &cfg.Search)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return NewServer(engine, cfg, zap.NewNop()), path
}

func do(t *testing.T, srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, r)
	return w
}

func TestHandleSearch_post(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodPost, "/api/v1/search", []byte(`{"query": "pizza del"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var out searchBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "matched", out.State)
	require.Len(t, out.Hits, 1)
	hit := out.Hits[0]
	assert.Equal(t, "a", hit.Record["id"])
	assert.Equal(t, "Pizza delivery", hit.Record["activity"])
	assert.Equal(t, `<mark class="highlight">Pizza</mark> <mark class="highlight">del</mark>ivery`, hit.Highlighted["activity"])
	require.Len(t, hit.Matches, 1)
	assert.Equal(t, "activity", hit.Matches[0].Field)
	assert.Equal(t, [][2]int{{0, 4}, {6, 8}}, hit.Matches[0].Ranges)
}

func TestHandleSearch_get(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/v1/search?q=pizza&limit=1&fields=activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out searchBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "matched", out.State)
	assert.Len(t, out.Hits, 1)

	w = do(t, srv, http.MethodGet, "/api/v1/search?q=p", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out = searchBody{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "idle", out.State)
	assert.Empty(t, out.Hits)
}

func TestHandleSearch_noMatches(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/v1/search?q=zzzzzz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out searchBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "no_matches", out.State)
	assert.Empty(t, out.Hits)
}

func TestHandleSearch_badRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name   string
		method string
		target string
		body   []byte
	}{
		{"malformed body", http.MethodPost, "/api/v1/search", []byte(`{"query":`)},
		{"negative limit", http.MethodPost, "/api/v1/search", []byte(`{"query": "pizza", "limit": -1}`)},
		{"unknown field", http.MethodPost, "/api/v1/search", []byte(`{"query": "pizza", "fields": ["price"]}`)},
		{"bad limit param", http.MethodGet, "/api/v1/search?q=pizza&limit=ten", nil},
		{"bad fuzzy param", http.MethodGet, "/api/v1/search?q=pizza&fuzzy=maybe", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var out map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestHandleRecords(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/v1/records?offset=1&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Records []map[string]string `json:"records"`
		Total   int                 `json:"total"`
		Offset  int                 `json:"offset"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "b", page.Records[0]["id"])

	w = do(t, srv, http.MethodGet, "/api/v1/records?offset=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetRecord(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/v1/records/c", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rec))
	assert.Equal(t, "Software development", rec["activity"])

	w = do(t, srv, http.MethodGet, "/api/v1/records/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleStatus(t *testing.T) {
	srv, path := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, float64(3), out["records"])
	assert.Equal(t, "bleve", out["matcher"])
	assert.Equal(t, path, out["dataset_path"])
	assert.Equal(t, float64(len(testDataset)), out["disk_usage_bytes"])
	cfg, ok := out["config"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), cfg["min_query_length"])
}

func TestHandleReload(t *testing.T) {
	srv, path := newTestServer(t)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "z", "activity": "Beekeeping"}]`), 0644))
	w := do(t, srv, http.MethodPost, "/api/v1/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/search?q=beekeeping", nil)
	var out searchBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out.Hits, 1)
	assert.Equal(t, "z", out.Hits[0].Record["id"])

	require.NoError(t, os.WriteFile(path, []byte(`broken`), 0644))
	w = do(t, srv, http.MethodPost, "/api/v1/reload", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
