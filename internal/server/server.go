package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/roller-forecast/internal/analysis"
	"github.com/iwvelando/roller-forecast/internal/config"
	"github.com/iwvelando/roller-forecast/internal/forecast"
	"github.com/iwvelando/roller-forecast/internal/recorder"
	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/iwvelando/roller-forecast/pkg/mathutil"
	"github.com/iwvelando/roller-forecast/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	recorder      recorder.Recorder
}

// NewHandler constructs the HTTP handler that serves the forecast API. rec
// may be nil, in which case runs are not recorded.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, rec recorder.Recorder) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, recorder: rec}

	mux := http.NewServeMux()

	// Forecast API endpoint (file upload)
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Forecast API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/forecast", h.handleForecastEditor)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type forecastResponse struct {
	RunID      string                 `json:"runId"`
	Scenarios  []string               `json:"scenarios"`
	Rows       []forecastRow          `json:"rows"`
	CSV        string                 `json:"csv"`
	Summaries  []analysis.Summary     `json:"summaries"`
	Crossovers []analysis.Crossover   `json:"crossovers,omitempty"`
	Errors     []scenarioError        `json:"errors,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type forecastRow struct {
	Day    int             `json:"day"`
	Values []scenarioValue `json:"values"`
}

// scenarioValue is one scenario's state on one day. Pointers are nil past the
// end of the scenario's trajectory or when the scenario failed.
type scenarioValue struct {
	Balance           *float64 `json:"balance,omitempty"`
	Production        *float64 `json:"production,omitempty"`
	BonusedProduction *float64 `json:"bonusedProduction,omitempty"`
	BonusPercent      *float64 `json:"bonusPercent,omitempty"`
	RewardPerCycle    *float64 `json:"rewardPerCycle,omitempty"`
	Annotation        string   `json:"annotation,omitempty"`
	Notes             []string `json:"notes,omitempty"`
}

type scenarioError struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleForecast"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err))
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err))
		return
	}

	h.runForecast(w, r, configBytes, configMap, start, "server.handleForecast")
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

func (h *handler) handleForecastEditor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleForecastEditor")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", "server.handleForecastEditor")
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleForecastEditor")
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), "server.handleForecastEditor")
		return
	}

	h.runForecast(w, r, configBytes, configMap, start, "server.handleForecastEditor")
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleConfigExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// exportKeyOrder lists the top-level sections in the order a hand-written
// configuration file usually has them. Unknown keys follow alphabetically.
var exportKeyOrder = []string{"common", "scenarios", "logging", "output", "recorder"}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range exportKeyOrder {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runForecast(w http.ResponseWriter, r *http.Request, configBytes []byte, configMap map[string]interface{}, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()

	results, err := forecast.GetForecast(r.Context(), h.logger, *cfg)
	if err != nil && !hasScenarioErrors(results) {
		// Nothing was projected: the shared parameters are unusable.
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}

	days := 0
	for _, result := range results {
		if result.OK() && result.Trajectory.Len() > days {
			days = result.Trajectory.Len()
		}
	}

	run := recorder.NewRun("api", days)
	run.AddResults(results)
	if recErr := h.recorder.RecordRun(r.Context(), run); recErr != nil {
		h.logger.Warn("failed to record forecast run",
			zap.String("op", op),
			zap.Error(recErr),
		)
	}

	report := output.BuildReport(results)
	summaries := make([]analysis.Summary, 0, len(report.Scenarios))
	for _, scenario := range report.Scenarios {
		summaries = append(summaries, scenario.Summary)
	}

	elapsed := time.Since(start)
	response := forecastResponse{
		RunID:      run.ID.String(),
		Scenarios:  extractScenarioNames(results),
		Rows:       buildRows(results, days),
		CSV:        output.CsvString(results),
		Summaries:  summaries,
		Crossovers: report.Crossovers,
		Errors:     extractScenarioErrors(results),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("run", response.RunID),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Int("rows", len(response.Rows)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func hasScenarioErrors(results []forecast.Forecast) bool {
	for _, result := range results {
		if result.Err != nil {
			return true
		}
	}
	return false
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleForecast")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("forecast request failed",
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

func extractScenarioNames(results []forecast.Forecast) []string {
	names := make([]string, 0, len(results))
	for _, scenario := range results {
		names = append(names, scenario.Name)
	}
	return names
}

func extractScenarioErrors(results []forecast.Forecast) []scenarioError {
	var errs []scenarioError
	for _, scenario := range results {
		if scenario.Err != nil {
			errs = append(errs, scenarioError{Index: scenario.Index, Name: scenario.Name, Error: scenario.Err.Error()})
		}
	}
	return errs
}

func buildRows(results []forecast.Forecast, days int) []forecastRow {
	notes := make([]map[int]string, len(results))
	for i, scenario := range results {
		notes[i] = output.PurchaseNotes(scenario.Trajectory)
	}

	rows := make([]forecastRow, 0, days)
	for day := 0; day < days; day++ {
		row := forecastRow{Day: day, Values: make([]scenarioValue, 0, len(results))}
		for i, scenario := range results {
			var value scenarioValue
			if scenario.OK() {
				if point, ok := scenario.Trajectory.Point(day); ok {
					bonusPercent := mathutil.FractionToPercent(point.BonusFraction)
					value = scenarioValue{
						Balance:           &point.Balance,
						Production:        &point.UnbonusedProduction,
						BonusedProduction: &point.BonusedProduction,
						BonusPercent:      &bonusPercent,
						RewardPerCycle:    &point.RewardRate,
					}
					if text, err := output.Annotation(scenario, float64(day)); err == nil {
						value.Annotation = text
					}
				}
			}
			if note := notes[i][day]; note != "" {
				value.Notes = []string{note}
			}
			row.Values = append(row.Values, value)
		}
		rows = append(rows, row)
	}

	return rows
}
