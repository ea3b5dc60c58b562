package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bapenda-labs/pad-forecast/internal/config"
	"github.com/bapenda-labs/pad-forecast/internal/server"
	"github.com/bapenda-labs/pad-forecast/pkg/audit"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/decomposition"
	"github.com/bapenda-labs/pad-forecast/pkg/testutil"
)

func newTestHandler(t *testing.T) (http.Handler, *audit.Logger) {
	t.Helper()
	var conf config.Configuration
	conf.ApplyDefaults()
	conf.Targets = []config.TargetConfig{
		{Stream: "PKB", Year: 2025, Amount: 8.2e12},
	}

	trail := audit.NewLogger(filepath.Join(t.TempDir(), "audit.jsonl"))
	pkbRows := append(testutil.PKBInputs(t, 2025).Rows(), testutil.PKBInputs(t, 2026).Rows()...)
	bbnkbRows := append(testutil.BBNKBInputs(t, 2025).Rows(), testutil.BBNKBInputs(t, 2026).Rows()...)

	h := server.NewHandler(nil, &conf, testutil.CanonicalSeries(t),
		dataset.MustStructuralInputs(pkbRows), dataset.MustStructuralInputs(bbnkbRows), trail, "1.2.3")
	return h, trail
}

func TestVersionEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload["version"] != "1.2.3" {
		t.Errorf("version = %q, expected 1.2.3", payload["version"])
	}
}

func TestVersionRejectsPost(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/version", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, expected 405", rec.Code)
	}
}

func TestHistoricalEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/historical", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var payload struct {
		Years   []int                `json:"years"`
		Columns map[string][]float64 `json:"columns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(payload.Years) != 7 {
		t.Errorf("years = %v, expected 7 entries", payload.Years)
	}
	if len(payload.Columns["PDRB"]) != 7 {
		t.Errorf("PDRB column has %d values, expected 7", len(payload.Columns["PDRB"]))
	}
}

func TestProjectionEndpointRecordsAudit(t *testing.T) {
	h, trail := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/projection", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		StartYear int `json:"startYear"`
		Years     []struct {
			Year int `json:"year"`
		} `json:"years"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.StartYear != 2025 || len(payload.Years) != 2 {
		t.Errorf("projection = start %d with %d years, expected 2025 with 2",
			payload.StartYear, len(payload.Years))
	}

	entries, err := trail.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "report_generated" {
		t.Errorf("audit entries = %+v, expected one report_generated", entries)
	}
}

func TestDecompositionEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"stream": "PKB", "year": 2025}`)
	req := httptest.NewRequest(http.MethodPost, "/api/decomposition", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var table decomposition.Table
	if err := json.Unmarshal(rec.Body.Bytes(), &table); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if table.Stream != decomposition.StreamPKB || table.Year != 2025 {
		t.Errorf("table = %s %d, expected PKB 2025", table.Stream, table.Year)
	}
	if len(table.Rows) != 15 {
		t.Errorf("len(Rows) = %d, expected the full waterfall", len(table.Rows))
	}
	// The configured target flows in when the request has none.
	if table.Target != 8.2e12 {
		t.Errorf("Target = %v, expected configured 8.2e12", table.Target)
	}
}

func TestDecompositionUnknownStream(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"stream": "PBBKB"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/decomposition", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestScenariosEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"mode": "conservative"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scenarios", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Mode    string `json:"mode"`
		Methods []struct {
			Method string `json:"method"`
		} `json:"methods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Mode != "conservative" || len(payload.Methods) != 4 {
		t.Errorf("comparison = %s with %d methods, expected conservative with 4",
			payload.Mode, len(payload.Methods))
	}
}

func TestScenariosUnknownMode(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"mode": "bold"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scenarios", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestSensitivityEndpointEmptyBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sensitivity", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Variation float64 `json:"variation"`
		Rows      []struct {
			Predictor string `json:"predictor"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Variation != 0.10 {
		t.Errorf("variation = %v, expected default 0.10", payload.Variation)
	}
	if len(payload.Rows) != 7 {
		t.Errorf("len(rows) = %d, expected 7 macro variables", len(payload.Rows))
	}
}

func TestValidationEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/validation", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Response  string `json:"response"`
		Predictor string `json:"predictor"`
		Result    struct {
			Actuals []float64 `json:"actuals"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Response != "PKB" || payload.Predictor != "PDRB" {
		t.Errorf("defaults = %s ~ %s, expected PKB ~ PDRB", payload.Response, payload.Predictor)
	}
	if len(payload.Result.Actuals) != 7 {
		t.Errorf("cross validation covered %d folds, expected 7", len(payload.Result.Actuals))
	}
}

func TestValidationBacktest(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"method": "backtest", "testYears": 2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/validation", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Method string `json:"method"`
		Result struct {
			TestYears   []int     `json:"testYears"`
			Predictions []float64 `json:"predictions"`
			Slope       float64   `json:"slope"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Method != "backtest" {
		t.Errorf("method = %q, expected backtest", payload.Method)
	}
	if len(payload.Result.TestYears) != 2 || payload.Result.TestYears[1] != 2024 {
		t.Errorf("testYears = %v, expected the last two historical years", payload.Result.TestYears)
	}
	if len(payload.Result.Predictions) != 2 {
		t.Errorf("got %d predictions, expected 2", len(payload.Result.Predictions))
	}
}

func TestValidationUnknownMethod(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"method": "bootstrap"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/validation", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestRegressionEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"predictors": ["PDRB", "Inflasi"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/regression", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Response     string    `json:"response"`
		Coefficients []float64 `json:"coefficients"`
		R2           float64   `json:"r2"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Response != "PKB" {
		t.Errorf("response = %q, expected default PKB", payload.Response)
	}
	if len(payload.Coefficients) != 2 {
		t.Errorf("got %d coefficients, expected one per predictor", len(payload.Coefficients))
	}
	if payload.R2 <= 0 || payload.R2 > 1 {
		t.Errorf("r2 = %v, expected within (0, 1]", payload.R2)
	}
}

func TestRegressionTooManyPredictors(t *testing.T) {
	h, _ := newTestHandler(t)

	// Seven predictors against seven observations leave no degrees of
	// freedom, so the fit must be refused.
	body := strings.NewReader(`{"predictors": ["PDRB", "Rasio Gini", "IPM", "TPT", "Kemiskinan", "Inflasi", "Suku Bunga"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/regression", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestEnsembleEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"steps": 2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ensemble", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Ensemble struct {
			Model  string    `json:"model"`
			Values []float64 `json:"values"`
		} `json:"ensemble"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Ensemble.Model != "ensemble" || len(payload.Ensemble.Values) != 2 {
		t.Errorf("ensemble = %s with %d values, expected 2 steps",
			payload.Ensemble.Model, len(payload.Ensemble.Values))
	}
}

func TestConfigExportEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/config/export", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(payload["configYaml"], "targets:") {
		t.Errorf("exported YAML missing targets section:\n%s", payload["configYaml"])
	}
}
