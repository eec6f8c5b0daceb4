package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluent-ops/flu3nt/internal/classify"
	"github.com/fluent-ops/flu3nt/internal/knowledge"
	"github.com/fluent-ops/flu3nt/internal/model"
)

func newTestRouter(t *testing.T) (http.Handler, *knowledge.Store) {
	t.Helper()
	st := knowledge.NewStore(knowledge.NewMemory(), classify.DefaultFuzzyConfig())
	t.Cleanup(func() { st.Close() })
	return newRouter(st, classify.NewDetector(st), []string{"*"}), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestDetectEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/api/detect", map[string]any{
		"columns": []model.Column{
			{Name: "First Name", Examples: []string{"Jane"}},
			{Name: "NPI", Examples: []string{"1234567890"}},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Suggestions []classify.Suggestion   `json:"suggestions"`
		NPIRanking  []classify.NPICandidate `json:"npiRanking"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	byField := map[model.FieldType]classify.Suggestion{}
	for _, s := range body.Suggestions {
		byField[s.Field] = s
	}
	assert.Equal(t, "First Name", byField[model.FieldFirstName].ColumnName)
	assert.Equal(t, "NPI", byField[model.FieldNPI].ColumnName)

	require.NotEmpty(t, body.NPIRanking)
	assert.Equal(t, "NPI", body.NPIRanking[0].Name)
	assert.True(t, body.NPIRanking[0].IsNPIColumn)
}

func TestDetectEndpoint_BadBody(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/detect", strings.NewReader("{{{"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMappingsEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)

	// empty list
	rr := doJSON(t, h, http.MethodGet, "/api/mappings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())

	// create
	rr = doJSON(t, h, http.MethodPost, "/api/mappings", map[string]string{
		"columnName": "Provider NPI", "fieldType": "npi",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	// conflicting NPI assignment
	rr = doJSON(t, h, http.MethodPost, "/api/mappings", map[string]string{
		"columnName": "Other NPI", "fieldType": "npi",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	var res knowledge.SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.False(t, res.Saved)
	assert.Contains(t, res.Conflict, "Provider NPI")

	// invalid field type
	rr = doJSON(t, h, http.MethodPost, "/api/mappings", map[string]string{
		"columnName": "X", "fieldType": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// delete
	rr = doJSON(t, h, http.MethodDelete, "/api/mappings/Provider%20NPI", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, h, http.MethodDelete, "/api/mappings/Provider%20NPI", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMappingsPayloadEndpoint(t *testing.T) {
	h, st := newTestRouter(t)
	st.SaveMapping(context.Background(), "fname", model.FieldFirstName)

	rr := doJSON(t, h, http.MethodGet, "/api/mappings/payload", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var payload conversionPayload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Len(t, payload.Mappings, 1)
	assert.Equal(t, "fname", payload.Mappings[0].ColumnName)
	assert.Equal(t, []string{"First Name"}, payload.Mappings[0].Labels)
}

func TestKnowledgeEndpoints(t *testing.T) {
	h, st := newTestRouter(t)
	ctx := context.Background()
	st.SaveMapping(ctx, "Provider NPI", model.FieldNPI)
	st.SaveMapping(ctx, "City", model.FieldCity)

	rr := doJSON(t, h, http.MethodPost, "/api/knowledge/save", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"saved": 2}`, rr.Body.String())

	rr = doJSON(t, h, http.MethodGet, "/api/knowledge", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var buckets map[string][]model.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &buckets))
	assert.Len(t, buckets["npiColumns"], 1)
	assert.Len(t, buckets["cityColumns"], 1)

	rr = doJSON(t, h, http.MethodGet, "/api/knowledge/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodDelete, "/api/knowledge", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, h, http.MethodGet, "/api/knowledge", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &buckets))
	assert.Empty(t, buckets["npiColumns"])
}

func TestKnowledgeExportImportEndpoints(t *testing.T) {
	h, st := newTestRouter(t)
	st.AddToKnowledge(context.Background(), model.FieldCity, "City")

	rr := doJSON(t, h, http.MethodGet, "/api/knowledge/export", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	exported := rr.Body.Bytes()

	// Round the export back through import on a fresh router.
	h2, st2 := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/import", bytes.NewReader(exported))
	rec := httptest.NewRecorder()
	h2.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, st2.Get(context.Background()).Bucket(model.FieldCity), 1)

	// Malformed documents are rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/knowledge/import", strings.NewReader(`{"cityColumns": []}`))
	rec = httptest.NewRecorder()
	h2.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "malformed knowledge document", body["error"])
}
