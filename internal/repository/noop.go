package repository

import (
	"context"
	"time"

	"FundLens/internal/domain/models"
)

// NoopHistoryStore is used when history persistence is disabled.
type NoopHistoryStore struct{}

func (NoopHistoryStore) Init(ctx context.Context) error                            { return nil }
func (NoopHistoryStore) Store(ctx context.Context, r *models.AnalysisResult) error { return nil }
func (NoopHistoryStore) Query(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.AnalysisResult, error) {
	return nil, nil
}
func (NoopHistoryStore) Health(ctx context.Context) error { return nil }
func (NoopHistoryStore) Close() error                     { return nil }

// NoopPublisher is used when event publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, e *models.AnalysisEvent) error { return nil }
func (NoopPublisher) Close() error                                               { return nil }
