package scoring

import "FundLens/internal/domain/models"

// Normalization benchmarks. Each sub-score maps a raw metric onto [0,1]
// with a continuous, clamped response. The bounds below are the product's
// "poor" and "excellent" anchors and are deliberately kept in one place.
const (
	revenueGrowthExcellent  = 0.25
	earningsGrowthExcellent = 0.30
	roePoor                 = 0.05
	roeExcellent            = 0.20

	pegExcellent = 1.0
	pegPoor      = 3.0
	peExcellent  = 10.0
	pePoor       = 30.0
	pbExcellent  = 1.0
	pbPoor       = 5.0
	deExcellent  = 0.5
	dePoor       = 2.0

	yieldFull       = 0.04 // full credit from here
	yieldCeiling    = 0.06 // sustainability ceiling, decay starts
	yieldDistressed = 0.12 // pinned at the floor beyond this
	yieldFloor      = 0.2

	payoutHealthyLo = 0.30
	payoutHealthyHi = 0.60

	streakCapYears = 5
)

type subScoreFunc func(v float64) float64

type styleMetric struct {
	Name   string
	Weight float64
	Score  subScoreFunc
}

// styleTables maps each investor style to its fixed weight table. Adding a
// style means adding a row here; weights within a style sum to 1.0.
var styleTables = map[models.Style][]styleMetric{
	models.StyleGrowth: {
		{MetricRevenueGrowth, 0.35, rampUp(0, revenueGrowthExcellent)},
		{MetricEarningsGrowth, 0.30, rampUp(0, earningsGrowthExcellent)},
		{MetricPEGRatio, 0.20, positiveRampDown(pegExcellent, pegPoor)},
		{MetricROE, 0.15, rampUp(roePoor, roeExcellent)},
	},
	models.StyleValue: {
		{MetricPERatio, 0.35, positiveRampDown(peExcellent, pePoor)},
		{MetricPBRatio, 0.25, rampDown(pbExcellent, pbPoor)},
		{MetricDebtToEquity, 0.25, rampDown(deExcellent, dePoor)},
		{MetricROE, 0.15, rampUp(roePoor, roeExcellent)},
	},
	models.StyleDividend: {
		{MetricDividendYield, 0.40, dividendYieldScore},
		{MetricPayoutRatio, 0.30, payoutRatioScore},
		{MetricDividendStreak, 0.30, streakScore},
	},
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// rampUp interpolates linearly from 0 at poor to 1 at excellent.
func rampUp(poor, excellent float64) subScoreFunc {
	return func(v float64) float64 {
		return clamp01((v - poor) / (excellent - poor))
	}
}

// rampDown interpolates linearly from 1 at excellent to 0 at poor
// (lower raw values are better).
func rampDown(excellent, poor float64) subScoreFunc {
	return func(v float64) float64 {
		return clamp01((poor - v) / (poor - excellent))
	}
}

// positiveRampDown is rampDown with non-positive values scored 0: a
// negative P/E or PEG means negative earnings, not a bargain.
func positiveRampDown(excellent, poor float64) subScoreFunc {
	down := rampDown(excellent, poor)
	return func(v float64) float64 {
		if v <= 0 {
			return 0
		}
		return down(v)
	}
}

// dividendYieldScore rewards yield up to a sustainability ceiling and
// penalizes beyond it. A double-digit yield usually signals a price
// collapse or an imminent cut, so the response is non-monotonic.
func dividendYieldScore(v float64) float64 {
	switch {
	case v <= 0:
		return 0
	case v < yieldFull:
		return v / yieldFull
	case v <= yieldCeiling:
		return 1
	case v < yieldDistressed:
		return 1 - (v-yieldCeiling)/(yieldDistressed-yieldCeiling)*(1-yieldFloor)
	default:
		return yieldFloor
	}
}

// payoutRatioScore is peaked: moderate payout scores best, while both a
// token payout and one approaching or exceeding earnings score poorly.
func payoutRatioScore(v float64) float64 {
	switch {
	case v <= 0 || v >= 1:
		return 0
	case v < payoutHealthyLo:
		return v / payoutHealthyLo
	case v <= payoutHealthyHi:
		return 1
	default:
		return (1 - v) / (1 - payoutHealthyHi)
	}
}

func streakScore(v float64) float64 {
	return clamp01(v / streakCapYears)
}
