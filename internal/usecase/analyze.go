package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FundLens/internal/domain/models"
	drepo "FundLens/internal/domain/repository"
	dservice "FundLens/internal/domain/service"
	"FundLens/internal/scoring"
	"FundLens/pkg/cache"
	"FundLens/pkg/logger"
	"FundLens/pkg/util"
)

// AnalyzeUseCase runs the analysis pipeline for one ticker and style:
// CheckCache -> FetchData -> Score -> Narrate -> Finalize. Cache and
// downstream recording faults are logged and absorbed; only an unknown
// ticker, insufficient data, or an exhausted provider retry budget fail
// the request.
type AnalyzeUseCase struct {
	cache     *cache.Manager
	provider  dservice.SnapshotProvider
	narrative dservice.NarrativeGenerator
	history   drepo.HistoryStore
	events    drepo.EventPublisher
	metrics   drepo.Metrics
	log       *logger.Logger

	retryAttempts int
	retryBackoff  time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAnalyzeUseCase creates a new AnalyzeUseCase instance.
func NewAnalyzeUseCase(
	cm *cache.Manager,
	provider dservice.SnapshotProvider,
	narrative dservice.NarrativeGenerator,
	history drepo.HistoryStore,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
	retryAttempts int,
	retryBackoff time.Duration,
) *AnalyzeUseCase {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &AnalyzeUseCase{
		cache:         cm,
		provider:      provider,
		narrative:     narrative,
		history:       history,
		events:        events,
		metrics:       metrics,
		log:           log,
		retryAttempts: retryAttempts,
		retryBackoff:  retryBackoff,
		now:           time.Now,
		sleep:         sleepCtx,
	}
}

// Analyze produces a recommendation for ticker under the given style.
func (u *AnalyzeUseCase) Analyze(ctx context.Context, ticker string, style models.Style) (*models.AnalysisResult, error) {
	start := u.now()
	day := util.DayBucket(start)

	// CheckCache
	resultKey := u.cache.ResultKey(ticker, string(style), day)
	var cached models.AnalysisResult
	hit, err := u.cache.Get(ctx, cache.TierResult, resultKey, &cached)
	if err != nil {
		u.metrics.RecordError("cache")
		u.log.Warn("result cache unavailable, treating as miss",
			logger.String("key", resultKey), logger.Error(err))
	}
	if hit {
		u.metrics.RecordCacheHit(string(cache.TierResult))
		u.finalize(ctx, &cached, true, start)
		return &cached, nil
	}
	u.metrics.RecordCacheMiss(string(cache.TierResult))

	// FetchData
	snap, err := u.fetchSnapshot(ctx, ticker, day)
	if err != nil {
		return nil, err
	}

	// Score
	score, err := scoring.Score(snap, style)
	if err != nil {
		return nil, err
	}

	// Narrate
	result := u.narrate(ctx, snap, score)
	result.Ticker = snap.Ticker
	result.GeneratedAt = u.now().UTC()

	// Finalize
	if err := u.cache.Put(ctx, cache.TierResult, resultKey, result); err != nil {
		u.metrics.RecordError("cache")
		u.log.Warn("result cache write failed",
			logger.String("key", resultKey), logger.Error(err))
	}
	u.finalize(ctx, result, false, start)

	return result, nil
}

// fetchSnapshot serves the raw tier, falling back to the provider with a
// linear retry backoff for transient failures only.
func (u *AnalyzeUseCase) fetchSnapshot(ctx context.Context, ticker, day string) (*models.TickerSnapshot, error) {
	rawKey := u.cache.RawKey(ticker, day)
	var snap models.TickerSnapshot
	hit, err := u.cache.Get(ctx, cache.TierRaw, rawKey, &snap)
	if err != nil {
		u.metrics.RecordError("cache")
		u.log.Warn("raw cache unavailable, treating as miss",
			logger.String("key", rawKey), logger.Error(err))
	}
	if hit {
		u.metrics.RecordCacheHit(string(cache.TierRaw))
		return &snap, nil
	}
	u.metrics.RecordCacheMiss(string(cache.TierRaw))

	fetched, err := u.fetchWithRetry(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(fetched.Metrics) == 0 && len(fetched.DividendHistory) == 0 {
		return nil, fmt.Errorf("provider returned empty snapshot for %s: %w",
			fetched.Ticker, models.ErrInsufficientData)
	}

	if err := u.cache.Put(ctx, cache.TierRaw, rawKey, fetched); err != nil {
		u.metrics.RecordError("cache")
		u.log.Warn("raw cache write failed",
			logger.String("key", rawKey), logger.Error(err))
	}
	return fetched, nil
}

func (u *AnalyzeUseCase) fetchWithRetry(ctx context.Context, ticker string) (*models.TickerSnapshot, error) {
	var lastErr error
	for attempt := 1; attempt <= u.retryAttempts; attempt++ {
		snap, err := u.provider.Fetch(ctx, ticker)
		if err == nil {
			return snap, nil
		}
		lastErr = err

		var pe *models.ProviderError
		if !errors.As(err, &pe) || !pe.Transient {
			// Unknown tickers and malformed requests never heal on retry.
			u.metrics.RecordError("provider")
			return nil, err
		}

		u.metrics.RecordError("provider_transient")
		if attempt < u.retryAttempts {
			delay := time.Duration(attempt) * u.retryBackoff
			u.log.Warn("provider fetch failed, retrying",
				logger.String("ticker", ticker),
				logger.Int("attempt", attempt),
				logger.Duration("backoff", delay),
				logger.Error(err))
			if err := u.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// narrate asks the narrative generator for a rationale and substitutes the
// rule-based result when it fails, so an LLM outage degrades quality but
// never availability.
func (u *AnalyzeUseCase) narrate(ctx context.Context, snap *models.TickerSnapshot, score *models.Score) *models.AnalysisResult {
	action := scoring.ActionFor(score.Composite)

	if u.narrative != nil {
		text, err := u.narrative.Generate(ctx, snap, score, action)
		if err == nil {
			return &models.AnalysisResult{
				Style:      score.Style,
				Action:     action,
				Confidence: score.Composite,
				Reason:     text,
				Source:     models.SourceLLM,
				Breakdown:  score.Breakdown,
			}
		}
		u.metrics.RecordError("narrative")
		u.log.Warn("narrative generation failed, using rule-based rationale",
			logger.String("ticker", snap.Ticker), logger.Error(err))
	}

	return scoring.Fallback(score)
}

// finalize records history, publishes the analysis event and updates
// metrics. Everything here is best-effort.
func (u *AnalyzeUseCase) finalize(ctx context.Context, r *models.AnalysisResult, cacheHit bool, start time.Time) {
	u.metrics.RecordAnalysis(string(r.Style), string(r.Action), string(r.Source))
	u.metrics.RecordLatency("analyze", u.now().Sub(start).Seconds())

	if !cacheHit && u.history != nil {
		if err := u.history.Store(ctx, r); err != nil {
			u.metrics.RecordError("history")
			u.log.Warn("history store failed",
				logger.String("ticker", r.Ticker), logger.Error(err))
		}
	}

	if u.events != nil {
		event := &models.AnalysisEvent{
			Ticker:      r.Ticker,
			Style:       r.Style,
			Action:      r.Action,
			Confidence:  r.Confidence,
			Source:      r.Source,
			CacheHit:    cacheHit,
			GeneratedAt: r.GeneratedAt,
		}
		if err := u.events.Publish(ctx, event); err != nil {
			u.metrics.RecordError("events")
			u.log.Warn("analysis event publish failed",
				logger.String("ticker", r.Ticker), logger.Error(err))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
