package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLens/internal/domain/models"
	"FundLens/internal/scoring"
	"FundLens/pkg/cache"
	"FundLens/pkg/logger"
)

// --- fakes ---

type fakeProvider struct {
	calls int
	errs  []error // consumed per call until exhausted, then success
	snap  *models.TickerSnapshot
}

func (p *fakeProvider) Fetch(ctx context.Context, ticker string) (*models.TickerSnapshot, error) {
	p.calls++
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return p.snap, nil
}

type fakeNarrative struct {
	calls int
	text  string
	err   error
}

func (n *fakeNarrative) Generate(ctx context.Context, snap *models.TickerSnapshot, score *models.Score, action models.Action) (string, error) {
	n.calls++
	if n.err != nil {
		return "", n.err
	}
	return n.text, nil
}

type fakeHistory struct {
	stored []*models.AnalysisResult
	err    error
}

func (h *fakeHistory) Init(ctx context.Context) error { return nil }
func (h *fakeHistory) Store(ctx context.Context, r *models.AnalysisResult) error {
	if h.err != nil {
		return h.err
	}
	h.stored = append(h.stored, r)
	return nil
}
func (h *fakeHistory) Query(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.AnalysisResult, error) {
	return nil, nil
}
func (h *fakeHistory) Health(ctx context.Context) error { return nil }
func (h *fakeHistory) Close() error                     { return nil }

type fakePublisher struct {
	events []*models.AnalysisEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, e *models.AnalysisEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}
func (p *fakePublisher) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(style, action, source string) {}
func (nopMetrics) RecordCacheHit(tier string)                   {}
func (nopMetrics) RecordCacheMiss(tier string)                  {}
func (nopMetrics) RecordError(kind string)                      {}
func (nopMetrics) RecordLatency(op string, seconds float64)     {}

func fptr(v float64) *float64 { return &v }

func growthSnapshot() *models.TickerSnapshot {
	return &models.TickerSnapshot{
		Ticker: "AAPL",
		AsOf:   time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC),
		Metrics: map[string]*float64{
			scoring.MetricRevenueGrowth:  fptr(0.18),
			scoring.MetricEarningsGrowth: fptr(0.20),
			scoring.MetricPEGRatio:       fptr(1.2),
			scoring.MetricROE:            fptr(0.25),
		},
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error"})
	require.NoError(t, err)
	return l
}

func newUC(t *testing.T, cm *cache.Manager, p *fakeProvider, n *fakeNarrative, h *fakeHistory, pub *fakePublisher) *AnalyzeUseCase {
	t.Helper()
	uc := NewAnalyzeUseCase(cm, p, nil, h, pub, nopMetrics{}, testLogger(t), 3, time.Millisecond)
	if n != nil {
		uc.narrative = n
	}
	uc.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return uc
}

func TestAnalyzeLLMPath(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{snap: growthSnapshot()}
	n := &fakeNarrative{text: "Strong revenue and earnings momentum."}

	uc := newUC(t, cm, p, n, &fakeHistory{}, &fakePublisher{})
	res, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)
	require.NoError(t, err)

	assert.Equal(t, models.ActionBuy, res.Action)
	assert.Equal(t, models.SourceLLM, res.Source)
	assert.Equal(t, "Strong revenue and earnings momentum.", res.Reason)
	assert.GreaterOrEqual(t, res.Confidence, 0.70)
	assert.False(t, res.GeneratedAt.IsZero())
}

func TestAnalyzeNarrativeFailureFallsBack(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{snap: growthSnapshot()}
	n := &fakeNarrative{err: &models.NarrativeError{Err: errors.New("deadline exceeded")}}

	uc := newUC(t, cm, p, n, &fakeHistory{}, &fakePublisher{})
	res, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)

	// An LLM outage degrades quality, never availability.
	require.NoError(t, err)
	assert.Equal(t, models.SourceRuleBased, res.Source)
	assert.Equal(t, models.ActionBuy, res.Action)
	assert.NotEmpty(t, res.Reason)
	assert.GreaterOrEqual(t, res.Confidence, 0.70)
}

func TestAnalyzeResultCacheHitSkipsPipeline(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{snap: growthSnapshot()}
	n := &fakeNarrative{text: "first"}
	h := &fakeHistory{}
	pub := &fakePublisher{}

	uc := newUC(t, cm, p, n, h, pub)
	first, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)
	require.NoError(t, err)

	second, err := uc.Analyze(context.Background(), "aapl", models.StyleGrowth)
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 1, n.calls)
	assert.Equal(t, first.Reason, second.Reason)
	assert.Len(t, h.stored, 1) // history only on fresh computes

	require.Len(t, pub.events, 2)
	assert.False(t, pub.events[0].CacheHit)
	assert.True(t, pub.events[1].CacheHit)
}

func TestAnalyzeRawCacheHitSkipsProvider(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{snap: growthSnapshot()}
	n := &fakeNarrative{text: "text"}

	uc := newUC(t, cm, p, n, &fakeHistory{}, &fakePublisher{})
	_, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)
	require.NoError(t, err)

	// Different style: result key misses but the raw snapshot is reused.
	res, err := uc.Analyze(context.Background(), "AAPL", models.StyleValue)
	require.NoError(t, err) // roe carries the value table on its own
	assert.Equal(t, models.StyleValue, res.Style)
	assert.Equal(t, 1, p.calls)

	// A style with no overlapping metrics still skips the provider.
	_, err = uc.Analyze(context.Background(), "AAPL", models.StyleDividend)
	require.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Equal(t, 1, p.calls)
}

func TestAnalyzeRetriesTransientProviderFailures(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	transient := &models.ProviderError{Ticker: "AAPL", Transient: true, Err: errors.New("502")}
	p := &fakeProvider{snap: growthSnapshot(), errs: []error{transient, transient}}

	uc := newUC(t, cm, p, &fakeNarrative{text: "ok"}, &fakeHistory{}, &fakePublisher{})
	res, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)

	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, models.SourceLLM, res.Source)
}

func TestAnalyzeTransientFailuresExhaustRetryBudget(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	transient := &models.ProviderError{Ticker: "AAPL", Transient: true, Err: errors.New("502")}
	p := &fakeProvider{snap: growthSnapshot(), errs: []error{transient, transient, transient}}

	uc := newUC(t, cm, p, &fakeNarrative{text: "ok"}, &fakeHistory{}, &fakePublisher{})
	_, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)

	var pe *models.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, p.calls)
}

func TestAnalyzeTickerNotFoundIsNotRetried(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{errs: []error{models.ErrTickerNotFound, models.ErrTickerNotFound, models.ErrTickerNotFound}}

	uc := newUC(t, cm, p, &fakeNarrative{text: "ok"}, &fakeHistory{}, &fakePublisher{})
	_, err := uc.Analyze(context.Background(), "NOPE", models.StyleGrowth)

	require.ErrorIs(t, err, models.ErrTickerNotFound)
	assert.Equal(t, 1, p.calls)
}

func TestAnalyzeEmptySnapshotFails(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{snap: &models.TickerSnapshot{Ticker: "HOLLOW", Metrics: map[string]*float64{}}}

	uc := newUC(t, cm, p, &fakeNarrative{text: "ok"}, &fakeHistory{}, &fakePublisher{})
	_, err := uc.Analyze(context.Background(), "HOLLOW", models.StyleGrowth)
	require.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestAnalyzeCacheFaultsAreAbsorbed(t *testing.T) {
	store := &faultyStore{err: errors.New("disk unavailable")}
	cm := cache.NewManager(store, 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{snap: growthSnapshot()}

	uc := newUC(t, cm, p, &fakeNarrative{text: "ok"}, &fakeHistory{}, &fakePublisher{})
	res, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)

	// A broken cache never fails the request.
	require.NoError(t, err)
	assert.Equal(t, models.SourceLLM, res.Source)
}

func TestAnalyzeHistoryAndPublishFaultsAreAbsorbed(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{snap: growthSnapshot()}
	h := &fakeHistory{err: errors.New("clickhouse down")}
	pub := &fakePublisher{err: errors.New("broker down")}

	uc := newUC(t, cm, p, &fakeNarrative{text: "ok"}, h, pub)
	res, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)

	require.NoError(t, err)
	assert.Equal(t, models.ActionBuy, res.Action)
}

func TestAnalyzeWithoutNarrativeGeneratorUsesFallback(t *testing.T) {
	cm := cache.NewManager(cache.NewMemoryCache(), 24*time.Hour, 2*time.Hour)
	p := &fakeProvider{snap: growthSnapshot()}

	uc := newUC(t, cm, p, nil, &fakeHistory{}, &fakePublisher{})
	res, err := uc.Analyze(context.Background(), "AAPL", models.StyleGrowth)

	require.NoError(t, err)
	assert.Equal(t, models.SourceRuleBased, res.Source)
}

// faultyStore fails every operation, simulating an unavailable backend.
type faultyStore struct{ err error }

func (f *faultyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return f.err
}
func (f *faultyStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, f.err }
func (f *faultyStore) Delete(ctx context.Context, keys ...string) error    { return f.err }
func (f *faultyStore) Close() error                                        { return nil }
