package scoring

import (
	"fmt"
	"sort"
	"strings"

	"FundLens/internal/domain/models"
)

// Action thresholds on the composite score.
const (
	buyThreshold  = 0.70
	holdThreshold = 0.40
)

// ActionFor maps a composite score onto a recommendation.
func ActionFor(composite float64) models.Action {
	switch {
	case composite >= buyThreshold:
		return models.ActionBuy
	case composite >= holdThreshold:
		return models.ActionHold
	default:
		return models.ActionSell
	}
}

// Fallback builds a deterministic rule-based result from a Score. It is
// total over any valid Score, never touches the network, and never fails.
// The caller fills in the ticker and timestamp.
func Fallback(score *models.Score) *models.AnalysisResult {
	action := ActionFor(score.Composite)
	return &models.AnalysisResult{
		Style:      score.Style,
		Action:     action,
		Confidence: score.Composite,
		Reason:     fallbackReason(score, action),
		Source:     models.SourceRuleBased,
		Breakdown:  score.Breakdown,
	}
}

// fallbackReason cites the one or two metrics with the largest weighted
// contribution, so the templated rationale is never opaque.
func fallbackReason(score *models.Score, action models.Action) string {
	names := make([]string, 0, len(score.Breakdown))
	for name := range score.Breakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := score.Breakdown[names[i]], score.Breakdown[names[j]]
		if a.Weighted != b.Weighted {
			return a.Weighted > b.Weighted
		}
		return names[i] < names[j]
	})

	top := names
	if len(top) > 2 {
		top = top[:2]
	}
	labels := make([]string, len(top))
	for i, name := range top {
		labels[i] = displayName(name)
	}

	verdict := map[models.Action]string{
		models.ActionBuy:  "supports a buy",
		models.ActionHold: "supports holding",
		models.ActionSell: "does not support owning the stock",
	}[action]

	return fmt.Sprintf("Composite %s score of %.2f %s; largest contribution from %s.",
		score.Style, score.Composite, verdict, strings.Join(labels, " and "))
}

var metricLabels = map[string]string{
	MetricRevenueGrowth:  "revenue growth",
	MetricEarningsGrowth: "earnings growth",
	MetricROE:            "return on equity",
	MetricPEGRatio:       "the PEG ratio",
	MetricPERatio:        "the P/E ratio",
	MetricPBRatio:        "the P/B ratio",
	MetricDebtToEquity:   "debt to equity",
	MetricDividendYield:  "dividend yield",
	MetricPayoutRatio:    "the payout ratio",
	MetricDividendStreak: "the dividend growth streak",
}

func displayName(metric string) string {
	if l, ok := metricLabels[metric]; ok {
		return l
	}
	return strings.ReplaceAll(metric, "_", " ")
}
