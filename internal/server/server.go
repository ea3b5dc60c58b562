// Package server exposes the projection pipeline over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bapenda-labs/pad-forecast/internal/config"
	"github.com/bapenda-labs/pad-forecast/internal/projection"
	"github.com/bapenda-labs/pad-forecast/pkg/audit"
	"github.com/bapenda-labs/pad-forecast/pkg/constants"
	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"github.com/bapenda-labs/pad-forecast/pkg/decomposition"
	"github.com/bapenda-labs/pad-forecast/pkg/ensemble"
	"github.com/bapenda-labs/pad-forecast/pkg/macro"
	"github.com/bapenda-labs/pad-forecast/pkg/modelcheck"
	"github.com/bapenda-labs/pad-forecast/pkg/regress"
	"github.com/bapenda-labs/pad-forecast/pkg/scenario"
	"github.com/bapenda-labs/pad-forecast/pkg/sensitivity"
	"github.com/bapenda-labs/pad-forecast/pkg/trend"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger      *zap.Logger
	conf        *config.Configuration
	hist        *dataset.HistoricalSeries
	pkbInputs   *dataset.StructuralInputs
	bbnkbInputs *dataset.StructuralInputs
	trail       *audit.Logger
	version     string
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, conf *config.Configuration, hist *dataset.HistoricalSeries, pkbInputs, bbnkbInputs *dataset.StructuralInputs, trail *audit.Logger, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if trail == nil {
		trail = audit.NewLogger("")
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		conf:        conf,
		hist:        hist,
		pkbInputs:   pkbInputs,
		bbnkbInputs: bbnkbInputs,
		trail:       trail,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/api/historical", h.handleHistorical)
	mux.HandleFunc("/api/config/export", h.handleConfigExport)
	mux.HandleFunc("/api/projection", h.handleProjection)
	mux.HandleFunc("/api/decomposition", h.handleDecomposition)
	mux.HandleFunc("/api/scenarios", h.handleScenarios)
	mux.HandleFunc("/api/sensitivity", h.handleSensitivity)
	mux.HandleFunc("/api/validation", h.handleValidation)
	mux.HandleFunc("/api/regression", h.handleRegression)
	mux.HandleFunc("/api/ensemble", h.handleEnsemble)

	return mux
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHistorical(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	columns := make(map[string][]float64)
	for _, name := range h.hist.Columns() {
		values, err := h.hist.Column(name)
		if err != nil {
			continue
		}
		columns[name] = values
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"years":   h.hist.Years(),
		"columns": columns,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	yamlBytes, err := yaml.Marshal(h.conf)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result, err := projection.Run(h.logger, h.conf, h.hist, h.pkbInputs, h.bbnkbInputs)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute projection: %v", err), "server.handleProjection")
		return
	}

	if err := h.trail.Record(h.conf.Audit.Actor, "report_generated", map[string]string{
		"startYear": fmt.Sprintf("%d", result.StartYear),
		"years":     fmt.Sprintf("%d", len(result.Years)),
	}); err != nil {
		h.logger.Warn("failed to record audit entry",
			zap.String("op", "server.handleProjection"),
			zap.Error(err),
		)
	}

	h.logger.Info("projection computed",
		zap.String("op", "server.handleProjection"),
		zap.Int("years", len(result.Years)),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, result)
}

type decompositionRequest struct {
	Stream string  `json:"stream"`
	Year   int     `json:"year"`
	Target float64 `json:"target,omitempty"`
}

func (h *handler) handleDecomposition(w http.ResponseWriter, r *http.Request) {
	var req decompositionRequest
	if !h.decodeRequest(w, r, &req, "server.handleDecomposition") {
		return
	}
	if req.Year == 0 {
		req.Year = h.startYear()
	}

	target := req.Target
	if target == 0 {
		if amount, ok := h.conf.Target(strings.ToUpper(req.Stream), req.Year); ok {
			target = amount
		}
	}

	var table *decomposition.Table
	switch strings.ToUpper(req.Stream) {
	case decomposition.StreamPKB:
		baseline, err := h.hist.Baseline(dataset.MacroColumns)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleDecomposition")
			return
		}
		impact, err := macro.ComputeImpact(h.hist, dataset.ColumnPKB, req.Year, baseline)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleDecomposition")
			return
		}
		table = decomposition.BuildPKBTable(req.Year, h.pkbInputs.ForYear(req.Year), impact, target)
	case decomposition.StreamBBNKB:
		table = decomposition.BuildBBNKBTable(req.Year, h.startYear(), h.bbnkbInputs.ForYear(req.Year), target)
	default:
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown stream %q", req.Stream), "server.handleDecomposition")
		return
	}

	h.writeJSON(w, http.StatusOK, table)
}

type scenariosRequest struct {
	Mode string `json:"mode,omitempty"`
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	var req scenariosRequest
	if !h.decodeRequest(w, r, &req, "server.handleScenarios") {
		return
	}
	mode := scenario.Mode(req.Mode)
	if req.Mode == "" {
		mode = scenario.Mode(h.conf.Scenario.Mode)
	}

	model, err := trend.Fit(h.hist, dataset.ColumnPKB)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleScenarios")
		return
	}
	x0 := float64(h.startYear())
	comparison, err := scenario.EnsembleBounds(h.hist, dataset.ColumnPKB, model, x0, model.Predict(x0), mode, h.conf.ScenarioParams())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleScenarios")
		return
	}

	h.writeJSON(w, http.StatusOK, comparison)
}

type sensitivityRequest struct {
	Variation float64 `json:"variation,omitempty"`
}

func (h *handler) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req sensitivityRequest
	if !h.decodeRequest(w, r, &req, "server.handleSensitivity") {
		return
	}
	variation := req.Variation
	if variation == 0 {
		variation = h.conf.Projection.Variation
	}

	baseValues, err := h.hist.Baseline(dataset.MacroColumns)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleSensitivity")
		return
	}
	rows, err := sensitivity.Analyze(h.hist, dataset.ColumnPKB, dataset.MacroColumns, baseValues, variation)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleSensitivity")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"variation": variation,
		"rows":      rows,
	})
}

type validationRequest struct {
	Response  string `json:"response,omitempty"`
	Predictor string `json:"predictor,omitempty"`
	Method    string `json:"method,omitempty"` // loocv (default) or backtest
	TestYears int    `json:"testYears,omitempty"`
}

func (h *handler) handleValidation(w http.ResponseWriter, r *http.Request) {
	var req validationRequest
	if !h.decodeRequest(w, r, &req, "server.handleValidation") {
		return
	}
	if req.Response == "" {
		req.Response = dataset.ColumnPKB
	}
	if req.Predictor == "" {
		req.Predictor = "PDRB"
	}

	thresholds := modelcheck.Thresholds{
		MinR2:   h.conf.Validation.MinR2,
		MaxMAPE: h.conf.Validation.MaxMAPE,
		MaxRMSE: h.conf.Validation.MaxRMSE,
	}

	var result interface{}
	var metrics modelcheck.Metrics
	method := strings.ToLower(req.Method)
	switch method {
	case "", "loocv":
		method = "loocv"
		cv, err := modelcheck.LeaveOneOut(h.hist, req.Response, req.Predictor)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleValidation")
			return
		}
		result, metrics = cv, cv.Metrics
	case "backtest":
		if req.TestYears <= 0 {
			req.TestYears = constants.DefaultBacktestYears
		}
		bt, err := modelcheck.Backtest(h.hist, req.Response, req.Predictor, req.TestYears)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleValidation")
			return
		}
		result, metrics = bt, bt.Metrics
	default:
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown validation method %q", req.Method), "server.handleValidation")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"response":  req.Response,
		"predictor": req.Predictor,
		"method":    method,
		"result":    result,
		"warnings":  metrics.Evaluate(thresholds),
	})
}

type regressionRequest struct {
	Response   string   `json:"response,omitempty"`
	Predictors []string `json:"predictors,omitempty"`
}

// handleRegression fits the response on an arbitrary set of macro predictors
// at once, for exploring which combination explains the revenue best.
func (h *handler) handleRegression(w http.ResponseWriter, r *http.Request) {
	var req regressionRequest
	if !h.decodeRequest(w, r, &req, "server.handleRegression") {
		return
	}
	if req.Response == "" {
		req.Response = dataset.ColumnPKB
	}
	if len(req.Predictors) == 0 {
		req.Predictors = []string{"PDRB"}
	}

	y, err := h.hist.Column(req.Response)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleRegression")
		return
	}
	columns := make([][]float64, 0, len(req.Predictors))
	for _, name := range req.Predictors {
		values, err := h.hist.Column(name)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleRegression")
			return
		}
		columns = append(columns, values)
	}

	model, err := regress.FitMulti(columns, y)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleRegression")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"response":     req.Response,
		"predictors":   req.Predictors,
		"intercept":    model.Intercept,
		"coefficients": model.Coefficients,
		"r2":           model.R2,
	})
}

type ensembleRequest struct {
	Response  string `json:"response,omitempty"`
	Predictor string `json:"predictor,omitempty"`
	Steps     int    `json:"steps,omitempty"`
}

func (h *handler) handleEnsemble(w http.ResponseWriter, r *http.Request) {
	var req ensembleRequest
	if !h.decodeRequest(w, r, &req, "server.handleEnsemble") {
		return
	}
	if req.Response == "" {
		req.Response = dataset.ColumnPKB
	}
	if req.Predictor == "" {
		req.Predictor = "PDRB"
	}
	if req.Steps <= 0 {
		req.Steps = h.conf.Projection.Years
	}

	path, err := ensemble.MedianGrowthPath(h.hist, req.Predictor, req.Steps)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleEnsemble")
		return
	}

	weights := ensemble.Weights{
		OLS:          h.conf.Weights.OLS,
		ARIMA:        h.conf.Weights.ARIMA,
		ExpSmoothing: h.conf.Weights.ExpSmoothing,
	}
	result, err := ensemble.Run(h.logger, h.hist, req.Response, req.Predictor, path, weights)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleEnsemble")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) startYear() int {
	if h.conf.Projection.StartYear != 0 {
		return h.conf.Projection.StartYear
	}
	return h.hist.LastYear() + 1
}

// decodeRequest enforces the POST method and body limit, decoding into dst.
// An empty body decodes to the zero request so every field has a default.
func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}

	if h.conf.Server.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.conf.Server.MaxBodyBytes)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("projection request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
