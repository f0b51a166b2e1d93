package http

import (
	"encoding/json"
	"errors"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"econsim/econ"
	"econsim/ml"
)

const scenarioCacheSize = 1024

// Services bundles the read-only core the handlers serve from. One
// instance is built at startup and shared by every request; nothing in
// it is mutated after construction except the scenario cache, which is
// safe for concurrent use.
type Services struct {
	History   *econ.HistoryIndex
	Baseline  *econ.BaselineEstimator
	Predictor *ml.ScenarioPredictor

	scenarioCache *lru.Cache[scenarioKey, float64]
}

// scenarioKey identifies a simulation request. Predictions are
// deterministic over immutable artifacts, so equal keys always map to
// equal results.
type scenarioKey struct {
	Country string
	Rates   econ.GrowthRates
}

func NewServices(history *econ.HistoryIndex, baseline *econ.BaselineEstimator, predictor *ml.ScenarioPredictor) *Services {
	cache, _ := lru.New[scenarioKey, float64](scenarioCacheSize)
	return &Services{
		History:       history,
		Baseline:      baseline,
		Predictor:     predictor,
		scenarioCache: cache,
	}
}

func RegisterHandlers(mux *http.ServeMux, svc *Services) {
	mux.HandleFunc("GET /api/health", svc.handleHealth)
	mux.HandleFunc("GET /api/countries", svc.handleCountries)
	mux.HandleFunc("GET /api/history/{country}", svc.handleHistory)
	mux.HandleFunc("GET /api/baseline/{country}", svc.handleBaseline)
	mux.HandleFunc("POST /api/simulate", svc.handleSimulate)
}

func (svc *Services) handleHealth(w http.ResponseWriter, r *http.Request) {
	minYear, maxYear := svc.History.YearRange()
	respondJSON(w, map[string]interface{}{
		"status":       "ok",
		"countries":    len(svc.History.Countries()),
		"observations": svc.History.Size(),
		"min_year":     minYear,
		"max_year":     maxYear,
	})
}

func (svc *Services) handleCountries(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, svc.History.Countries())
}

func (svc *Services) handleHistory(w http.ResponseWriter, r *http.Request) {
	country := r.PathValue("country")
	if country == "" {
		respondError(w, http.StatusBadRequest, "country is required")
		return
	}

	observations := svc.History.Query(country)
	if len(observations) == 0 {
		// No recorded rows is a lookup miss, not a bad request: the
		// country may still be a valid model category.
		respondError(w, http.StatusNotFound, "no historical data for country: "+country)
		return
	}

	respondJSON(w, observations)
}

func (svc *Services) handleBaseline(w http.ResponseWriter, r *http.Request) {
	country := r.PathValue("country")
	if country == "" {
		respondError(w, http.StatusBadRequest, "country is required")
		return
	}

	rates, err := svc.Baseline.Estimate(country)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"country":        country,
		"baseline_rates": rates,
		"window_years":   svc.Baseline.Window(),
	})
}

// scenarioRequest is the simulate request body. Rate fields are pointers
// so a missing field is distinguishable from an explicit zero.
type scenarioRequest struct {
	Country     string   `json:"country"`
	Population  *float64 `json:"population_growth"`
	Exports     *float64 `json:"exports_growth"`
	Imports     *float64 `json:"imports_growth"`
	Investment  *float64 `json:"investment_growth"`
	Consumption *float64 `json:"consumption_growth"`
	GovtSpend   *float64 `json:"govt_spend_growth"`
}

type scenarioEcho struct {
	Country string `json:"country"`
	econ.GrowthRates
}

type scenarioResponse struct {
	Scenario           scenarioEcho `json:"scenario"`
	PredictedGDPGrowth float64      `json:"predicted_gdp_growth"`
}

func (svc *Services) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var request scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if request.Country == "" {
		respondDomainError(w, &econ.InvalidInputError{Field: "country", Reason: "required field is missing"})
		return
	}
	rates, err := request.rates()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	key := scenarioKey{Country: request.Country, Rates: rates}
	prediction, cached := svc.scenarioCache.Get(key)
	if !cached {
		prediction, err = svc.Predictor.Predict(request.Country, rates)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		svc.scenarioCache.Add(key, prediction)
	} else {
		zap.L().Debug("scenario cache hit", zap.String("country", request.Country))
	}

	respondJSON(w, scenarioResponse{
		Scenario: scenarioEcho{
			Country:     request.Country,
			GrowthRates: rates,
		},
		PredictedGDPGrowth: prediction,
	})
}

// rates collects the six growth rates, failing on the first missing
// field.
func (req *scenarioRequest) rates() (econ.GrowthRates, error) {
	var rates econ.GrowthRates
	fields := []struct {
		name  string
		value *float64
		dst   *float64
	}{
		{"population_growth", req.Population, &rates.Population},
		{"exports_growth", req.Exports, &rates.Exports},
		{"imports_growth", req.Imports, &rates.Imports},
		{"investment_growth", req.Investment, &rates.Investment},
		{"consumption_growth", req.Consumption, &rates.Consumption},
		{"govt_spend_growth", req.GovtSpend, &rates.GovtSpend},
	}

	for _, field := range fields {
		if field.value == nil {
			return rates, &econ.InvalidInputError{Field: field.name, Reason: "required field is missing"}
		}
		*field.dst = *field.value
	}
	return rates, nil
}

// respondDomainError maps core error kinds to status codes. The core
// raises distinguishable errors; status mapping lives only here.
func respondDomainError(w http.ResponseWriter, err error) {
	var unknownErr *econ.UnknownCountryError
	var invalidErr *econ.InvalidInputError
	var insufficientErr *econ.InsufficientHistoryError

	switch {
	case errors.As(err, &unknownErr):
		respondError(w, http.StatusBadRequest, unknownErr.Error())
	case errors.As(err, &invalidErr):
		respondError(w, http.StatusBadRequest, invalidErr.Error())
	case errors.As(err, &insufficientErr):
		respondError(w, http.StatusNotFound, insufficientErr.Error())
	default:
		zap.L().Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondJSON 统一JSON响应
func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode JSON", zap.Error(err))
	}
}
