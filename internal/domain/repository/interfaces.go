package repository

import (
	"context"
	"time"

	"FundLens/internal/domain/models"
)

// HistoryStore persists completed analyses for later review. Implementations
// are best-effort: the orchestrator logs failures and moves on.
type HistoryStore interface {
	Init(ctx context.Context) error // ensure tables exist
	Store(ctx context.Context, r *models.AnalysisResult) error
	Query(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.AnalysisResult, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits an event for each completed analysis.
type EventPublisher interface {
	Publish(ctx context.Context, e *models.AnalysisEvent) error
	Close() error
}

type Metrics interface {
	RecordAnalysis(style, action, source string)
	RecordCacheHit(tier string)
	RecordCacheMiss(tier string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
