package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maply-labs/risk-engine/internal/model"
	"github.com/maply-labs/risk-engine/internal/regions"
)

func newTestServer(results []model.RegionResult) *httptest.Server {
	catalog := regions.NewCatalog()
	catalog.Replace(results)
	s := New(catalog, nil, nil, nil)
	return httptest.NewServer(s.Router([]string{"*"}))
}

var testRegions = []model.RegionResult{
	{State: "MAHARASHTRA", District: "PUNE", SafetyScore: 82.5, RiskCategory: model.RiskLow},
	{State: "GOA", District: "PANAJI", SafetyScore: 55.25, RiskCategory: model.RiskHigh},
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(testRegions)
	defer srv.Close()

	var health healthResponse
	status := getJSON(t, srv.URL+"/health", &health)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 2, health.RegionsLoaded)
}

func TestHandleAll(t *testing.T) {
	srv := newTestServer(testRegions)
	defer srv.Close()

	var env model.Envelope
	status := getJSON(t, srv.URL+"/api/v1/risk/all", &env)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.StatusSuccess, env.Status)
	assert.Equal(t, 2, env.TotalRegions)
}

func TestHandleAll_Unloaded(t *testing.T) {
	srv := newTestServer(nil)
	defer srv.Close()

	var env model.Envelope
	status := getJSON(t, srv.URL+"/api/v1/risk/all", &env)

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, model.StatusError, env.Status)
}

func TestHandleScore(t *testing.T) {
	srv := newTestServer(testRegions)
	defer srv.Close()

	var result model.RegionResult
	status := getJSON(t, srv.URL+"/api/v1/risk/score?state=goa&district=panaji", &result)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "GOA", result.State)
	assert.Equal(t, 55.25, result.SafetyScore)
	assert.Equal(t, model.RiskHigh, result.RiskCategory)
}

func TestHandleScore_Missing(t *testing.T) {
	srv := newTestServer(testRegions)
	defer srv.Close()

	var env model.Envelope
	status := getJSON(t, srv.URL+"/api/v1/risk/score?state=GOA&district=MARGAO", &env)
	assert.Equal(t, http.StatusNotFound, status)

	status = getJSON(t, srv.URL+"/api/v1/risk/score?state=GOA", &env)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleStates(t *testing.T) {
	srv := newTestServer(testRegions)
	defer srv.Close()

	var list listResponse
	status := getJSON(t, srv.URL+"/api/v1/risk/states", &list)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Goa", "Maharashtra"}, list.Values)
}

func TestHandleDistricts(t *testing.T) {
	srv := newTestServer(testRegions)
	defer srv.Close()

	var list listResponse
	status := getJSON(t, srv.URL+"/api/v1/risk/districts?state=maharashtra", &list)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Pune"}, list.Values)
}

func TestHandleRefresh_NotConfigured(t *testing.T) {
	srv := newTestServer(testRegions)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/risk/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
