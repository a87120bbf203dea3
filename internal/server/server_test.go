package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/ontovec/internal/embed"
	"github.com/agenthands/ontovec/internal/table"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	records := []embed.Record{
		{ID: "http://example.org/A", Vector: []float64{1, 0}},
		{ID: "http://example.org/B", Vector: []float64{0.8, 0.6}},
		{ID: "http://example.org/C", Vector: []float64{-1, 0}},
	}
	meta := embed.Meta{
		SourceOntology: "animals.owl",
		Arch:           "gcn",
		OutputDim:      2,
		GeneratedAt:    time.Now().UTC(),
	}
	path := filepath.Join(t.TempDir(), "emb.parquet")
	require.NoError(t, table.Write(path, records, meta))
	tbl, err := table.Open(path)
	require.NoError(t, err)

	return NewServer(tbl, nil)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.SetupRouter().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rows":3`)
}

func TestMeta(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodGet, "/meta", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "animals.owl")
	assert.Contains(t, w.Body.String(), "gcn")
}

func TestListIdentifiers(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodGet, "/embeddings", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Identifiers []string `json:"identifiers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Identifiers, 3)
}

func TestGetEmbedding(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodGet,
		"/embedding?id="+url.QueryEscape("http://example.org/B"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID     string    `json:"id"`
		Vector []float64 `json:"vector"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []float64{0.8, 0.6}, resp.Vector)
}

func TestGetEmbedding_NotFound(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodGet, "/embedding?id=unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEmbedding_MissingID(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodGet, "/embedding", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimilar_ByID(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodPost, "/similar",
		SimilarRequest{ID: "http://example.org/A", K: 2})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []struct {
			ID    string  `json:"ID"`
			Score float64 `json:"Score"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "http://example.org/A", resp.Results[0].ID)
}

func TestSimilar_ByVector(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodPost, "/similar",
		SimilarRequest{Vector: []float64{-1, 0}, K: 1})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http://example.org/C")
}

func TestSimilar_MissingQuery(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodPost, "/similar", SimilarRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimilar_UnknownID(t *testing.T) {
	w := doRequest(t, testServer(t), http.MethodPost, "/similar",
		SimilarRequest{ID: "http://example.org/Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
