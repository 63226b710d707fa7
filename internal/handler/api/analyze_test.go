package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLens/internal/domain/models"
	"FundLens/internal/usecase"
	"FundLens/pkg/cache"
	"FundLens/pkg/logger"
)

type stubProvider struct {
	snap *models.TickerSnapshot
	err  error
}

func (p *stubProvider) Fetch(ctx context.Context, ticker string) (*models.TickerSnapshot, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.snap, nil
}

type stubNarrative struct{ text string }

func (n *stubNarrative) Generate(ctx context.Context, snap *models.TickerSnapshot, score *models.Score, action models.Action) (string, error) {
	return n.text, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(style, action, source string) {}
func (nopMetrics) RecordCacheHit(tier string)                  {}
func (nopMetrics) RecordCacheMiss(tier string)                 {}
func (nopMetrics) RecordError(kind string)                     {}
func (nopMetrics) RecordLatency(op string, seconds float64)    {}

func fptr(v float64) *float64 { return &v }

func newHandler(t *testing.T, p *stubProvider) *AnalyzeHandler {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error"})
	require.NoError(t, err)

	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	uc := usecase.NewAnalyzeUseCase(cm, p, &stubNarrative{text: "looks healthy"},
		nil, nil, nopMetrics{}, l, 1, 0)
	return NewAnalyzeHandler(l, uc)
}

func doRequest(h *AnalyzeHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	p := &stubProvider{snap: &models.TickerSnapshot{
		Ticker: "AAPL",
		AsOf:   time.Now().UTC(),
		Metrics: map[string]*float64{
			"revenue_growth":  fptr(0.18),
			"earnings_growth": fptr(0.20),
			"peg_ratio":       fptr(1.2),
			"roe":             fptr(0.25),
		},
	}}

	rec := doRequest(newHandler(t, p), `{"ticker":"AAPL","style":"growth"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.AnalysisResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ActionBuy, resp.Data.Action)
	assert.Equal(t, models.SourceLLM, resp.Data.Source)
	assert.Equal(t, "looks healthy", resp.Data.Reason)
}

func TestAnalyzeEndpointDefaultsStyle(t *testing.T) {
	p := &stubProvider{snap: &models.TickerSnapshot{
		Ticker:  "AAPL",
		AsOf:    time.Now().UTC(),
		Metrics: map[string]*float64{"revenue_growth": fptr(0.10)},
	}}

	rec := doRequest(newHandler(t, p), `{"ticker":"AAPL"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.AnalysisResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StyleGrowth, resp.Data.Style)
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	rec := doRequest(newHandler(t, &stubProvider{}), `{"style":"growth"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(newHandler(t, &stubProvider{}), `{"ticker":"AAPL","style":"momentum"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEndpointTickerNotFound(t *testing.T) {
	p := &stubProvider{err: models.ErrTickerNotFound}

	rec := doRequest(newHandler(t, p), `{"ticker":"NOPE","style":"value"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Data struct {
			Code      string `json:"code"`
			Retryable bool   `json:"retryable"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TICKER_NOT_FOUND", resp.Data.Code)
	assert.False(t, resp.Data.Retryable)
}

func TestAnalyzeEndpointInsufficientData(t *testing.T) {
	p := &stubProvider{snap: &models.TickerSnapshot{
		Ticker:  "HOLLOW",
		AsOf:    time.Now().UTC(),
		Metrics: map[string]*float64{"pe_ratio": fptr(12)},
	}}

	// Dividend style has no overlap with the returned metrics.
	rec := doRequest(newHandler(t, p), `{"ticker":"HOLLOW","style":"dividend"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Data struct {
			Code string `json:"code"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_DATA", resp.Data.Code)
}

func TestAnalyzeEndpointProviderOutage(t *testing.T) {
	p := &stubProvider{err: &models.ProviderError{
		Ticker: "AAPL", Transient: true,
	}}

	rec := doRequest(newHandler(t, p), `{"ticker":"AAPL","style":"growth"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Data struct {
			Code      string `json:"code"`
			Retryable bool   `json:"retryable"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Data.Code)
	assert.True(t, resp.Data.Retryable)
}

func TestHealthEndpoint(t *testing.T) {
	e := echo.New()
	newHandler(t, &stubProvider{}).RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
