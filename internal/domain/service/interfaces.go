package service

import (
	"context"

	"FundLens/internal/domain/models"
)

// SnapshotProvider fetches raw fundamentals for a ticker.
type SnapshotProvider interface {
	Fetch(ctx context.Context, ticker string) (*models.TickerSnapshot, error)
}

// NarrativeGenerator produces a one-paragraph rationale for a scored analysis.
type NarrativeGenerator interface {
	Generate(ctx context.Context, snap *models.TickerSnapshot, score *models.Score, action models.Action) (string, error)
}
