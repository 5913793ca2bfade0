package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundworks/estimator/internal/broadcast"
	"github.com/groundworks/estimator/internal/cache"
	"github.com/groundworks/estimator/internal/catalog"
	"github.com/groundworks/estimator/internal/configstore"
	"github.com/groundworks/estimator/model"
)

// newTestServer wires a full stack against the in-memory store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := configstore.NewMemoryStore()
	broadcaster := broadcast.NewBroadcaster(nil)

	var svc *configstore.Service
	manager := cache.NewManager(
		func(ctx context.Context, serviceID, companyID string) (model.ServiceConfig, error) {
			return svc.Get(ctx, serviceID, companyID)
		},
		broadcaster, nil, nil,
	)
	svc = configstore.NewService(store, manager, broadcaster, nil)

	router := NewRouter(Dependencies{Cache: manager, Configs: svc})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func calculateURL(ts *httptest.Server, serviceID string) string {
	return fmt.Sprintf("%s/v1/services/%s/calculate", ts.URL, serviceID)
}

func configURL(ts *httptest.Server, serviceID, companyID string) string {
	return fmt.Sprintf("%s/v1/services/%s/config?company=%s", ts.URL, serviceID, companyID)
}

func TestHandleCalculate_workedExample(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"companyId": "company-1",
		"quantity":  100,
		"selection": map[string]any{
			"tearout":  "concrete",
			"access":   "moderate",
			"teamSize": "threePlus",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.CalculationResult
	decodeBody(t, resp, &result)
	assert.InDelta(t, 86.4, result.Labor.TotalManHours, 1e-9)
	assert.InDelta(t, 2160, result.Cost.LaborCost, 1e-9)
	assert.InDelta(t, 3471.16, result.Cost.Total, 1e-6)
}

func TestHandleCalculate_extractionPathMatchesFormPath(t *testing.T) {
	ts := newTestServer(t)

	form := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"companyId": "company-1",
		"quantity":  100,
		"selection": map[string]any{"tearout": "concrete", "access": "moderate"},
	})
	require.Equal(t, http.StatusOK, form.StatusCode)

	extraction := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"companyId": "company-1",
		"quantity":  100,
		"extraction": map[string]any{
			"fields": map[string]string{
				model.CategoryTearout: "concrete",
				model.CategoryAccess:  "moderate",
			},
		},
	})
	require.Equal(t, http.StatusOK, extraction.StatusCode)

	var formResult, extractionResult model.CalculationResult
	decodeBody(t, form, &formResult)
	decodeBody(t, extraction, &extractionResult)
	assert.Equal(t, formResult.Cost.Total, extractionResult.Cost.Total)
}

func TestHandleCalculate_rejectsInvalidQuantity(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"companyId": "company-1",
		"quantity":  0,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Error *model.ErrorEnvelope `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, model.ErrInvalidQuantity, body.Error.Code)
}

func TestHandleCalculate_rejectsUnknownOption(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"companyId": "company-1",
		"quantity":  100,
		"selection": map[string]any{"tearout": "dirt"},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Error *model.ErrorEnvelope `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, model.ErrUnknownVariableOption, body.Error.Code)
	assert.Contains(t, body.Error.Message, "excavation.tearoutComplexity")
	assert.Contains(t, body.Error.Message, "dirt")
}

func TestHandleCalculate_requiresCompanyID(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"quantity": 100,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCalculate_rejectsBothEntryPathsAtOnce(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"companyId":  "company-1",
		"quantity":   100,
		"selection":  map[string]any{},
		"extraction": map[string]any{},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCalculate_unknownService(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, calculateURL(ts, "nonexistent"), map[string]any{
		"companyId": "company-1",
		"quantity":  100,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleGetConfig_templateFallback(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(configURL(ts, catalog.ServicePaverPatio, "company-1"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg model.ServiceConfig
	decodeBody(t, resp, &cfg)
	rate, _ := cfg.BaseSettings.Lookup(model.SettingHourlyRate)
	assert.Equal(t, 25.0, rate)
}

// Saving a config through the single write path must be visible to the very
// next calculation: persisted, evicted, and re-resolved.
func TestSaveConfigThenCalculate_cacheCoherence(t *testing.T) {
	ts := newTestServer(t)

	// Warm the cache with the template value.
	warm := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"companyId": "company-1",
		"quantity":  100,
	})
	warm.Body.Close()
	require.Equal(t, http.StatusOK, warm.StatusCode)

	cfg, _ := catalog.Template(catalog.ServicePaverPatio)
	cfg.BaseSettings.Labor["hourlyRate"] = model.Setting{Value: 50, Unit: "$/hour"}

	buf, err := json.Marshal(map[string]any{"config": cfg, "actor": "admin"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut,
		configURL(ts, catalog.ServicePaverPatio, "company-1"), bytes.NewReader(buf))
	require.NoError(t, err)
	saveResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	saveResp.Body.Close()
	require.Equal(t, http.StatusNoContent, saveResp.StatusCode)

	resp := postJSON(t, calculateURL(ts, catalog.ServicePaverPatio), map[string]any{
		"companyId": "company-1",
		"quantity":  100,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.CalculationResult
	decodeBody(t, resp, &result)
	// 48 base hours at the new $50 rate.
	assert.InDelta(t, 2400, result.Cost.LaborCost, 1e-9)
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
