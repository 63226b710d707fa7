package scoring

import (
	"fmt"

	"FundLens/internal/domain/models"
)

// Score computes the style-specific composite score for a snapshot. It is a
// pure function: same snapshot and style always produce the same Score.
//
// When a metric is unavailable its weight is redistributed proportionally
// over the remaining available metrics (w'_i = w_i / sum of available
// weights), so the composite stays a convex combination of sub-scores. When
// every metric for the style is unavailable, scoring fails with
// models.ErrInsufficientData.
func Score(snap *models.TickerSnapshot, style models.Style) (*models.Score, error) {
	table, ok := styleTables[style]
	if !ok {
		return nil, fmt.Errorf("scoring: unknown style %q", style)
	}

	metrics := Normalize(snap)

	type scored struct {
		name   string
		weight float64
		value  float64
	}
	available := make([]scored, 0, len(table))
	totalWeight := 0.0
	for _, m := range table {
		v, ok := metrics[m.Name]
		if !ok {
			continue
		}
		available = append(available, scored{m.Name, m.Weight, m.Score(v)})
		totalWeight += m.Weight
	}

	if totalWeight == 0 {
		return nil, fmt.Errorf("scoring: %s/%s: %w", snap.Ticker, style, models.ErrInsufficientData)
	}

	breakdown := make(map[string]models.SubScore, len(available))
	composite := 0.0
	for _, s := range available {
		w := s.weight / totalWeight
		breakdown[s.name] = models.SubScore{
			Value:    s.value,
			Weight:   w,
			Weighted: s.value * w,
		}
		composite += s.value * w
	}

	return &models.Score{
		Style:     style,
		Composite: clamp01(composite),
		Breakdown: breakdown,
	}, nil
}
