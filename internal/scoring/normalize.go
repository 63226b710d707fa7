package scoring

import (
	"math"
	"sort"

	"FundLens/internal/domain/models"
)

// Metric vocabulary shared with the data provider. Values are fractional
// (0.18 means 18%) except the ratios, which are plain multiples.
const (
	MetricRevenueGrowth  = "revenue_growth"
	MetricEarningsGrowth = "earnings_growth"
	MetricROE            = "roe"
	MetricPEGRatio       = "peg_ratio"
	MetricPERatio        = "pe_ratio"
	MetricPBRatio        = "pb_ratio"
	MetricDebtToEquity   = "debt_to_equity"
	MetricDividendYield  = "dividend_yield"
	MetricPayoutRatio    = "payout_ratio"
	MetricDividendStreak = "dividend_growth_streak"
)

// Some providers report debt/equity as a percent (85.0 instead of 0.85).
// Any value above this is assumed to be a percent and scaled down.
const debtToEquityPercentCutoff = 10.0

// Normalize builds the engine's metric view from a snapshot. It drops
// non-finite values, rescales percent-style debt/equity, and derives the
// dividend growth streak from the dividend history when the provider did
// not report one.
func Normalize(snap *models.TickerSnapshot) map[string]float64 {
	out := make(map[string]float64, len(snap.Metrics))
	for name, v := range snap.Metrics {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		out[name] = *v
	}

	if de, ok := out[MetricDebtToEquity]; ok && de > debtToEquityPercentCutoff {
		out[MetricDebtToEquity] = de / 100
	}

	if _, ok := out[MetricDividendStreak]; !ok && len(snap.DividendHistory) > 0 {
		out[MetricDividendStreak] = float64(growthStreak(snap.DividendHistory))
	}

	return out
}

// growthStreak counts consecutive year-over-year dividend increases,
// starting from the most recent year, capped at streakCapYears.
func growthStreak(history []models.DividendYear) int {
	h := make([]models.DividendYear, len(history))
	copy(h, history)
	sort.Slice(h, func(i, j int) bool { return h[i].Year < h[j].Year })

	streak := 0
	for i := len(h) - 1; i > 0; i-- {
		if h[i].Amount <= h[i-1].Amount {
			break
		}
		streak++
		if streak == streakCapYears {
			break
		}
	}
	return streak
}
