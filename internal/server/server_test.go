package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzhu8/GoFetch-sub002/internal/scholar"
	"github.com/dzhu8/GoFetch-sub002/internal/snowball"
	"github.com/dzhu8/GoFetch-sub002/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGraph resolves everything to a one-candidate graph so handlers
// have something to return.
type fakeGraph struct{}

func (fakeGraph) ResolveDOI(_ context.Context, doi string) (*scholar.Paper, bool) {
	return &scholar.Paper{PaperID: "d-" + doi}, true
}

func (fakeGraph) ResolveTitle(_ context.Context, title string) (*scholar.Paper, bool) {
	return &scholar.Paper{PaperID: "t-node"}, true
}

func (fakeGraph) Edges(_ context.Context, nodeID string, dir scholar.Direction) []string {
	if dir == scholar.References {
		return []string{"cand"}
	}
	return nil
}

func (fakeGraph) BatchMetadata(_ context.Context, nodeIDs []string) map[string]scholar.Paper {
	out := make(map[string]scholar.Paper, len(nodeIDs))
	for _, id := range nodeIDs {
		out[id] = scholar.Paper{PaperID: id, Title: "Candidate " + id}
	}
	return out
}

func newTestServer(t *testing.T, store *storage.DB) *gin.Engine {
	t.Helper()
	eng := snowball.NewEngine(fakeGraph{}, nil, snowball.Options{})
	return New(eng, store, nil).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := doJSON(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestExtractEndpoint(t *testing.T) {
	body := `{"pages":[{"index":0,"blocks":[
		{"label":"title","text":"A Study of Reference Stitching"},
		{"label":"reference","text":"1. Smith, A. (2020). First cited work with a title. Journal, 1.\n2. Jones, B. doi.org/10.1/xyz"}
	]}]}`

	w := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/v1/extract", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		References []struct {
			RefNum     int    `json:"refNum"`
			SearchTerm string `json:"searchTerm"`
			IsDOI      bool   `json:"isDoi"`
		} `json:"references"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.References, 2)
	assert.Equal(t, "First cited work with a title", resp.References[0].SearchTerm)
	assert.False(t, resp.References[0].IsDOI)
	assert.Equal(t, "10.1/xyz", resp.References[1].SearchTerm)
	assert.True(t, resp.References[1].IsDOI)
	assert.Equal(t, "A Study of Reference Stitching", resp.Metadata.Title)
}

func TestExtractRejectsUnrecognizedBody(t *testing.T) {
	w := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/v1/extract", `{"weird":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelatedWithTerms(t *testing.T) {
	body := `{"searchTerms":["10.1/a"],"isDoiFlags":[true],"seedTitle":"Seed"}`
	w := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/v1/related", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RequestID    string                 `json:"requestId"`
		RankedPapers []snowball.RankedPaper `json:"rankedPapers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RequestID)
	require.Len(t, resp.RankedPapers, 1)
	assert.Equal(t, "cand", resp.RankedPapers[0].ID)
}

func TestRelatedEmptyRequest(t *testing.T) {
	w := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/v1/related", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelatedInvalidJSON(t *testing.T) {
	w := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/v1/related", `{"searchTerms": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelatedDocumentOverridesTerms(t *testing.T) {
	// The embedded document yields a DOI reference; the explicit terms
	// would resolve to a different node and must be ignored.
	body := `{
		"searchTerms": ["ignored title"],
		"isDoiFlags": [false],
		"document": {"pages":[{"index":0,"blocks":[
			{"label":"reference","text":"1. Smith, A. doi.org/10.1/fromdoc"}
		]}]}
	}`
	w := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/v1/related", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SeedID        string `json:"seedId"`
		ResolvedCount int    `json:"resolvedCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ResolvedCount)
}

func TestRunsPersistenceRoundTrip(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()
	router := newTestServer(t, db)

	w := doJSON(t, router, http.MethodPost, "/api/v1/related",
		`{"searchTerms":["10.1/a"],"isDoiFlags":[true]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RunID string `json:"runId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RunID)

	list := doJSON(t, router, http.MethodGet, "/api/v1/runs", "")
	require.Equal(t, http.StatusOK, list.Code)
	var listing struct {
		Runs []storage.RunSummary `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listing))
	require.Len(t, listing.Runs, 1)
	assert.Equal(t, resp.RunID, listing.Runs[0].ID)

	show := doJSON(t, router, http.MethodGet, "/api/v1/runs/"+resp.RunID, "")
	assert.Equal(t, http.StatusOK, show.Code)
}

func TestRunsWithoutStore(t *testing.T) {
	router := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/api/v1/runs", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/api/v1/runs/xyz", "").Code)
}
