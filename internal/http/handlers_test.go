package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaleads/leadsearch/internal/apify"
	"github.com/alphaleads/leadsearch/internal/domain/model"
)

func doJSON(t *testing.T, f *routerFixture, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(authed(req))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func submitSearch(t *testing.T, f *routerFixture) model.Search {
	t.Helper()
	resp := doJSON(t, f, http.MethodPost, "/api/searches", map[string]any{
		"filters": map[string]any{
			"contact_job_title": []string{"CMO"},
			"fetch_count":       25,
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[model.Search](t, resp)
}

func TestRouter_HealthzIsOpen(t *testing.T) {
	f := newRouterFixture()
	defer f.server.Close()

	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_APIRequiresSession(t *testing.T) {
	f := newRouterFixture()
	defer f.server.Close()

	resp, err := http.Get(f.server.URL + "/api/searches")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/searches", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer bogus")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestRouter_SubmitAndPollSearch(t *testing.T) {
	f := newRouterFixture()
	defer f.server.Close()

	search := submitSearch(t, f)
	assert.Equal(t, model.SearchStatusRunning, search.Status)
	require.NotNil(t, search.RunID)

	// Still running: status endpoint reports the persisted state.
	resp := doJSON(t, f, http.MethodGet, "/api/searches/"+search.ID+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[model.Search](t, resp)
	assert.Equal(t, model.SearchStatusRunning, got.Status)

	// Executor finishes; the next poll ingests.
	f.executor.mu.Lock()
	f.executor.runStatus = apify.RunInfo{ID: "run-1", Status: apify.RunStatusSucceeded, DatasetID: "dataset-1"}
	f.executor.items = []map[string]any{
		{"email": "ada@north.io", "full_name": "Ada North"},
		{"email": "ada@north.io", "full_name": "Ada N."},
	}
	f.executor.mu.Unlock()

	resp = doJSON(t, f, http.MethodGet, "/api/searches/"+search.ID+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decodeBody[model.Search](t, resp)
	assert.Equal(t, model.SearchStatusSucceeded, got.Status)
	assert.Equal(t, 1, got.LeadsCount)
}

func TestRouter_SubmitRejectsEmptyFilters(t *testing.T) {
	f := newRouterFixture()
	defer f.server.Close()

	resp := doJSON(t, f, http.MethodPost, "/api/searches", map[string]any{
		"filters": map[string]any{"fetch_count": 25},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_StatusNotFound(t *testing.T) {
	f := newRouterFixture()
	defer f.server.Close()

	resp := doJSON(t, f, http.MethodGet, "/api/searches/missing/status", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_LeadsListAndExport(t *testing.T) {
	f := newRouterFixture()
	defer f.server.Close()

	search := submitSearch(t, f)
	f.executor.mu.Lock()
	f.executor.runStatus = apify.RunInfo{ID: "run-1", Status: apify.RunStatusSucceeded, DatasetID: "dataset-1"}
	f.executor.items = []map[string]any{
		{"email": "ada@north.io", "first_name": "Ada", "last_name": "North", "full_name": "Ada North"},
	}
	f.executor.mu.Unlock()

	resp := doJSON(t, f, http.MethodGet, "/api/searches/"+search.ID+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, f, http.MethodGet, "/api/searches/"+search.ID+"/leads?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeBody[model.LeadPage](t, resp)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, "ada@north.io", *page.Leads[0].Email)

	resp = doJSON(t, f, http.MethodPost, "/api/searches/"+search.ID+"/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	csvData, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Ada,North,Ada North"))
}

func TestRouter_TemplateLifecycle(t *testing.T) {
	f := newRouterFixture()
	defer f.server.Close()

	resp := doJSON(t, f, http.MethodPost, "/api/templates", map[string]any{
		"name":    "CMO template",
		"filters": map[string]any{"contact_job_title": []string{"CMO"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tpl := decodeBody[model.Template](t, resp)

	// Duplicate name for the same user conflicts.
	resp = doJSON(t, f, http.MethodPost, "/api/templates", map[string]any{
		"name":    "CMO template",
		"filters": map[string]any{"contact_job_title": []string{"CMO"}},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, f, http.MethodDelete, "/api/templates/"+tpl.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_SettingsTokenVerify(t *testing.T) {
	f := newRouterFixture()
	defer f.server.Close()

	resp := doJSON(t, f, http.MethodPost, "/api/settings/token/verify", map[string]any{"token": "apify_api_abc"})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	f.executor.mu.Lock()
	f.executor.verifyErr = &apify.StatusError{StatusCode: http.StatusUnauthorized, Body: "invalid"}
	f.executor.mu.Unlock()
	resp = doJSON(t, f, http.MethodPost, "/api/settings/token", map[string]any{"token": "bad"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
