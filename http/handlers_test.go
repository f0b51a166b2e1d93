package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"econsim/econ"
	"econsim/ml"
)

// fakeRegressor returns a fixed value so handler tests do not depend on
// tree traversal.
type fakeRegressor struct {
	result float64
	calls  int
}

func (f *fakeRegressor) Predict(features []float64) (float64, error) {
	f.calls++
	return f.result, nil
}

func (f *fakeRegressor) NumFeatures() int { return ml.FeatureCount }

func float64Ptr(v float64) *float64 { return &v }

func newTestServices(t *testing.T) (*Services, *fakeRegressor) {
	t.Helper()

	observations := []econ.Observation{
		{Country: "Brazil", Year: 2019, GDPGrowth: 1.2, ExportsGrowth: -2.5, ImportsGrowth: 1.1,
			InvestmentGrowth: float64Ptr(3.4), ConsumptionGrowth: float64Ptr(1.8),
			GovtSpendGrowth: float64Ptr(0.4), PopulationGrowth: float64Ptr(0.8)},
		{Country: "Brazil", Year: 2020, GDPGrowth: -3.9, ExportsGrowth: -1.5, ImportsGrowth: -9.8,
			InvestmentGrowth: float64Ptr(-0.8), ConsumptionGrowth: float64Ptr(-4.7),
			GovtSpendGrowth: float64Ptr(-3.7), PopulationGrowth: float64Ptr(0.7)},
		{Country: "United States", Year: 2020, GDPGrowth: -2.8, ExportsGrowth: -13.2, ImportsGrowth: -9.0,
			InvestmentGrowth: float64Ptr(-4.5), ConsumptionGrowth: float64Ptr(-2.7),
			GovtSpendGrowth: float64Ptr(2.5), PopulationGrowth: float64Ptr(0.4)},
	}

	index := econ.NewHistoryIndex(observations)
	estimator := econ.NewBaselineEstimator(index, 5)

	// "Afghanistan" is a valid category with zero recorded history.
	encoder, err := ml.NewCountryEncoder([]string{"Afghanistan", "Brazil", "United States"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model := &fakeRegressor{result: 2.45}
	predictor, err := ml.NewScenarioPredictor(encoder, model)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return NewServices(index, estimator, predictor), model
}

func newTestMux(t *testing.T) (*http.ServeMux, *fakeRegressor) {
	t.Helper()
	svc, model := newTestServices(t)
	mux := http.NewServeMux()
	RegisterHandlers(mux, svc)
	return mux, model
}

func TestHealthHandler(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected status: %v", payload["status"])
	}
	if payload["countries"].(float64) != 2 {
		t.Fatalf("unexpected country count: %v", payload["countries"])
	}
}

func TestCountriesHandler(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/countries", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var countries []string
	if err := json.Unmarshal(rr.Body.Bytes(), &countries); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(countries) != 2 || countries[0] != "Brazil" || countries[1] != "United States" {
		t.Fatalf("unexpected countries: %v", countries)
	}
}

func TestHistoryHandler(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history/Brazil", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var observations []econ.Observation
	if err := json.Unmarshal(rr.Body.Bytes(), &observations); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}
	if observations[0].Year != 2019 || observations[1].Year != 2020 {
		t.Fatalf("expected ascending years, got %d then %d", observations[0].Year, observations[1].Year)
	}
}

func TestHistoryHandlerNotFound(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history/Atlantis", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHistoryHandlerEncodedCountryName(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history/United%20States", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for URL-encoded country, got %d", rr.Code)
	}
}

func TestBaselineHandler(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/baseline/Brazil", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var payload struct {
		Country       string           `json:"country"`
		BaselineRates econ.GrowthRates `json:"baseline_rates"`
		WindowYears   int              `json:"window_years"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Country != "Brazil" {
		t.Fatalf("unexpected country: %q", payload.Country)
	}
	if payload.BaselineRates.Exports != -2.0 {
		t.Fatalf("expected exports baseline -2.0, got %v", payload.BaselineRates.Exports)
	}
	if payload.WindowYears != 5 {
		t.Fatalf("unexpected window: %d", payload.WindowYears)
	}
}

func TestBaselineHandlerNoHistory(t *testing.T) {
	mux, _ := newTestMux(t)

	// Afghanistan is encodable but has no rows: must read as missing
	// history, not as an unknown country.
	req := httptest.NewRequest(http.MethodGet, "/api/baseline/Afghanistan", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Afghanistan") {
		t.Fatalf("expected country in error body: %s", rr.Body.String())
	}
}

const validScenarioBody = `{
	"country": "United States",
	"population_growth": 1.0,
	"exports_growth": 10.0,
	"imports_growth": 5.0,
	"investment_growth": 8.0,
	"consumption_growth": 3.0,
	"govt_spend_growth": 2.0
}`

func TestSimulateHandler(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(validScenarioBody))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload scenarioResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.PredictedGDPGrowth != 2.45 {
		t.Fatalf("unexpected prediction: %v", payload.PredictedGDPGrowth)
	}
	if payload.Scenario.Country != "United States" || payload.Scenario.Exports != 10.0 {
		t.Fatalf("scenario echo mismatch: %+v", payload.Scenario)
	}
}

func TestSimulateHandlerCachesResult(t *testing.T) {
	mux, model := newTestMux(t)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(validScenarioBody))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	}

	if model.calls != 1 {
		t.Fatalf("expected a single model invocation for repeated scenario, got %d", model.calls)
	}
}

func TestSimulateHandlerMissingField(t *testing.T) {
	mux, model := newTestMux(t)

	body := `{"country": "Brazil", "exports_growth": 10.0}`
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "population_growth") {
		t.Fatalf("expected missing field named in error: %s", rr.Body.String())
	}
	if model.calls != 0 {
		t.Fatalf("model invoked %d times for invalid request", model.calls)
	}
}

func TestSimulateHandlerUnknownCountry(t *testing.T) {
	mux, model := newTestMux(t)

	body := strings.Replace(validScenarioBody, "United States", "Atlantis", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Atlantis") {
		t.Fatalf("expected offending country in error: %s", rr.Body.String())
	}
	if model.calls != 0 {
		t.Fatalf("model invoked %d times for unknown country", model.calls)
	}
}

func TestSimulateHandlerOutOfRangeRate(t *testing.T) {
	mux, model := newTestMux(t)

	body := strings.Replace(validScenarioBody, `"exports_growth": 10.0`, `"exports_growth": 400.0`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if model.calls != 0 {
		t.Fatalf("model invoked %d times for out-of-range rate", model.calls)
	}
}

func TestSimulateHandlerBadJSON(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
