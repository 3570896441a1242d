package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/iwvelando/roller-forecast/internal/recorder"
	"github.com/iwvelando/roller-forecast/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type memoryRecorder struct {
	mu   sync.Mutex
	runs []*recorder.Run
}

func (m *memoryRecorder) RecordRun(_ context.Context, run *recorder.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRecorder) Close() error { return nil }

func readTestConfig(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "config.yaml"))
	require.NoError(t, err)
	return data
}

func performUpload(t *testing.T, handler http.Handler, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "config.yaml")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func performEditorJSON(t *testing.T, handler http.Handler, payload interface{}, path string) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeForecast(t *testing.T, rr *httptest.ResponseRecorder) forecastResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp forecastResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func simpleConfig() map[string]interface{} {
	return map[string]interface{}{
		"common": map[string]interface{}{
			"startingBalance":      "5",
			"startingProduction":   "0",
			"startingBonusPercent": "0",
			"referenceRate":        "1000",
			"rewardPerCycle":       "10",
			"durationDays":         "2",
		},
		"scenarios": []interface{}{
			map[string]interface{}{
				"name":   "reinvest",
				"active": true,
				"upgrades": []interface{}{
					map[string]interface{}{"production": "1", "bonusPercent": "0", "price": "5"},
				},
			},
		},
	}
}

func TestHandleForecastSuccess(t *testing.T) {
	rec := &memoryRecorder{}
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", rec)

	resp := decodeForecast(t, performUpload(t, handler, readTestConfig(t)))

	assert.Equal(t, []string{"miners first", "games only"}, resp.Scenarios)
	assert.Len(t, resp.Rows, 60)
	assert.Len(t, resp.Rows[0].Values, 2)
	assert.Equal(t, 0, resp.Rows[0].Day)
	assert.True(t, strings.HasPrefix(resp.CSV, "day,"))
	assert.Len(t, resp.Summaries, 2)
	assert.Empty(t, resp.Errors)
	assert.NotEmpty(t, resp.Duration)
	assert.NotNil(t, resp.Config)
	assert.NotEmpty(t, resp.ConfigYAML)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, resp.RunID, rec.runs[0].ID.String())
	assert.Equal(t, "api", rec.runs[0].Source)
	assert.Equal(t, 60, rec.runs[0].Days)
}

func TestHandleForecastEditorSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", nil)

	var cfg map[string]interface{}
	require.NoError(t, yaml.Unmarshal(readTestConfig(t), &cfg))

	// Bare configuration and wrapped {"config": ...} payloads are equivalent.
	bare := decodeForecast(t, performEditorJSON(t, handler, cfg, "/api/editor/forecast"))
	wrapped := decodeForecast(t, performEditorJSON(t, handler, map[string]interface{}{"config": cfg}, "/api/editor/forecast"))

	assert.Equal(t, bare.Scenarios, wrapped.Scenarios)
	assert.Equal(t, bare.CSV, wrapped.CSV)
	assert.Len(t, wrapped.Rows, 60)
}

func TestHandleForecastEditorValues(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", nil)

	resp := decodeForecast(t, performEditorJSON(t, handler, simpleConfig(), "/api/editor/forecast"))

	require.Len(t, resp.Rows, 2)
	day0 := resp.Rows[0].Values[0]
	require.NotNil(t, day0.Balance)
	assert.InDelta(t, 1.44, *day0.Balance, 1e-9)
	require.NotNil(t, day0.Production)
	assert.InDelta(t, 1, *day0.Production, 1e-9)
	assert.Equal(t, []string{"bought upgrade 1 for 5.0000"}, day0.Notes)
	assert.True(t, strings.HasPrefix(day0.Annotation, "Scenario: 1\nDay: 0\nTime: 00:00:00\n"), day0.Annotation)
	assert.Contains(t, day0.Annotation, "Balance: 1.4400 RLT")

	day1 := resp.Rows[1].Values[0]
	require.NotNil(t, day1.Balance)
	assert.InDelta(t, 2.88, *day1.Balance, 1e-9)
	require.NotNil(t, day1.RewardPerCycle)
	assert.InDelta(t, 0.01, *day1.RewardPerCycle, 1e-12)
	assert.Empty(t, day1.Notes)

	require.Len(t, resp.Summaries, 1)
	assert.Equal(t, 1, resp.Summaries[0].UpgradesBought)
	assert.Equal(t, 0, resp.Summaries[0].LastPurchaseDay)
}

func TestHandleForecastEditorScenarioError(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", nil)

	cfg := simpleConfig()
	cfg["scenarios"] = append(cfg["scenarios"].([]interface{}), map[string]interface{}{
		"active": true,
		"upgrades": []interface{}{
			map[string]interface{}{"production": "1", "bonusPercent": "0"},
		},
	})

	resp := decodeForecast(t, performEditorJSON(t, handler, cfg, "/api/editor/forecast"))

	assert.Equal(t, []string{"reinvest", "Scenario 2"}, resp.Scenarios)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 1, resp.Errors[0].Index)
	assert.Contains(t, resp.Errors[0].Error, "Price of upgrade 1 in scenario 2 is not set")

	// The failed scenario still has a column, just without values.
	require.Len(t, resp.Rows, 2)
	assert.NotNil(t, resp.Rows[1].Values[0].Balance)
	assert.Nil(t, resp.Rows[1].Values[1].Balance)
	assert.NotEmpty(t, resp.Rows[1].Values[0].Annotation)
	assert.Empty(t, resp.Rows[1].Values[1].Annotation)
}

func TestHandleForecastEditorInvalidParameters(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", nil)

	cfg := simpleConfig()
	cfg["common"].(map[string]interface{})["referenceRate"] = "0"

	rr := performEditorJSON(t, handler, cfg, "/api/editor/forecast")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "division by zero")
}

func TestHandleForecastEditorDurationTooLong(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", nil)

	for _, days := range []string{"36501", "1e15", "1e19"} {
		cfg := simpleConfig()
		cfg["common"].(map[string]interface{})["durationDays"] = days

		rr := performEditorJSON(t, handler, cfg, "/api/editor/forecast")
		assert.Equal(t, http.StatusBadRequest, rr.Code, days)
		assert.Contains(t, rr.Body.String(), "at most 36500 days", days)
	}

	// The server keeps serving after rejecting oversized runs.
	resp := decodeForecast(t, performEditorJSON(t, handler, simpleConfig(), "/api/editor/forecast"))
	assert.Len(t, resp.Rows, 2)
}

func TestHandleForecastEditorInvalidPayload(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", nil)

	rr := performEditorJSON(t, handler, map[string]interface{}{"config": "nope"}, "/api/editor/forecast")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "expected object")

	req := httptest.NewRequest(http.MethodPost, "/api/editor/forecast", strings.NewReader("{"))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleForecastErrors(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 1024, "test", nil)

	t.Run("method not allowed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/forecast", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("other", "value"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "missing configuration file")
	})

	t.Run("too large", func(t *testing.T) {
		rr := performUpload(t, handler, bytes.Repeat([]byte("#"), 4096))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		rr := performUpload(t, handler, []byte("common: [unclosed"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(nil, 0, "  ", nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "dev", resp["version"])

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/version", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleConfigExport(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", nil)

	payload := map[string]interface{}{
		"zeta": 1,
		"scenarios": []interface{}{
			map[string]interface{}{"name": "sample", "active": true},
		},
		"output":  map[string]interface{}{"format": "csv"},
		"common":  map[string]interface{}{"durationDays": "30"},
		"logging": map[string]interface{}{"level": "info"},
	}

	rr := performEditorJSON(t, handler, payload, "/api/editor/export")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	out := resp["configYaml"]

	order := []string{"common:", "scenarios:", "logging:", "output:", "zeta:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		require.GreaterOrEqual(t, idx, 0, "missing %s in %s", key, out)
		assert.Greater(t, idx, last, "%s out of order in %s", key, out)
		last = idx
	}
}
