package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLens/internal/domain/models"
)

func fptr(v float64) *float64 { return &v }

func snapshot(metrics map[string]*float64) *models.TickerSnapshot {
	return &models.TickerSnapshot{
		Ticker:  "TEST",
		AsOf:    time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC),
		Metrics: metrics,
	}
}

func TestScoreGrowthStrongFundamentalsIsBuy(t *testing.T) {
	snap := snapshot(map[string]*float64{
		MetricRevenueGrowth:  fptr(0.18),
		MetricEarningsGrowth: fptr(0.20),
		MetricPEGRatio:       fptr(1.2),
		MetricROE:            fptr(0.25),
	})

	score, err := Score(snap, models.StyleGrowth)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, score.Composite, 0.70)
	assert.Equal(t, models.ActionBuy, ActionFor(score.Composite))
	assert.Len(t, score.Breakdown, 4)
}

func TestScoreDeterministic(t *testing.T) {
	snap := snapshot(map[string]*float64{
		MetricPERatio:      fptr(14.0),
		MetricPBRatio:      fptr(2.1),
		MetricDebtToEquity: fptr(0.8),
		MetricROE:          fptr(0.12),
	})

	a, err := Score(snap, models.StyleValue)
	require.NoError(t, err)
	b, err := Score(snap, models.StyleValue)
	require.NoError(t, err)

	assert.Equal(t, a.Composite, b.Composite)
	assert.Equal(t, a.Breakdown, b.Breakdown)
}

func TestScoreCompositeWithinUnitInterval(t *testing.T) {
	extreme := snapshot(map[string]*float64{
		MetricRevenueGrowth:  fptr(4.0),
		MetricEarningsGrowth: fptr(9.5),
		MetricPEGRatio:       fptr(0.1),
		MetricROE:            fptr(1.8),
	})

	score, err := Score(extreme, models.StyleGrowth)
	require.NoError(t, err)
	assert.LessOrEqual(t, score.Composite, 1.0)
	assert.GreaterOrEqual(t, score.Composite, 0.0)
}

func TestScoreRedistributesMissingMetricWeight(t *testing.T) {
	full := map[string]*float64{
		MetricPERatio:      fptr(14.0),
		MetricPBRatio:      fptr(2.1),
		MetricDebtToEquity: fptr(0.8),
		MetricROE:          fptr(0.12),
	}
	partial := map[string]*float64{
		MetricPERatio:      fptr(14.0),
		MetricPBRatio:      fptr(2.1),
		MetricDebtToEquity: fptr(0.8),
	}

	fullScore, err := Score(snapshot(full), models.StyleValue)
	require.NoError(t, err)
	partialScore, err := Score(snapshot(partial), models.StyleValue)
	require.NoError(t, err)

	// Effective weights always sum to 1.
	sum := 0.0
	for _, s := range partialScore.Breakdown {
		sum += s.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Each remaining weight is the original scaled by 1/0.85
	// (value table minus roe's 0.15).
	assert.InDelta(t, 0.35/0.85, partialScore.Breakdown[MetricPERatio].Weight, 1e-9)
	assert.InDelta(t, 0.25/0.85, partialScore.Breakdown[MetricPBRatio].Weight, 1e-9)

	// The composite equals the renormalized weighted mean of the sub-scores
	// that survived, so dropping a metric never causes a jump unrelated to
	// that metric's own contribution.
	want := 0.0
	for name, s := range fullScore.Breakdown {
		if name == MetricROE {
			continue
		}
		want += s.Value * (s.Weight / 0.85)
	}
	assert.InDelta(t, want, partialScore.Composite, 1e-9)
}

func TestScoreContinuousAcrossAbsenceBoundary(t *testing.T) {
	// roe exactly at the "poor" anchor scores 0, so removing it entirely
	// must move the composite by no more than that zero contribution's
	// renormalization effect.
	atBoundary := map[string]*float64{
		MetricPERatio:      fptr(14.0),
		MetricPBRatio:      fptr(2.1),
		MetricDebtToEquity: fptr(0.8),
		MetricROE:          fptr(roePoor),
	}
	absent := map[string]*float64{
		MetricPERatio:      fptr(14.0),
		MetricPBRatio:      fptr(2.1),
		MetricDebtToEquity: fptr(0.8),
	}

	with, err := Score(snapshot(atBoundary), models.StyleValue)
	require.NoError(t, err)
	without, err := Score(snapshot(absent), models.StyleValue)
	require.NoError(t, err)

	assert.Equal(t, 0.0, with.Breakdown[MetricROE].Value)
	// With roe's sub-score pinned at 0, the other three sub-score values
	// are identical in both runs; only the renormalization differs.
	for _, name := range []string{MetricPERatio, MetricPBRatio, MetricDebtToEquity} {
		assert.Equal(t, with.Breakdown[name].Value, without.Breakdown[name].Value)
	}
}

func TestScoreAllMetricsMissingFails(t *testing.T) {
	snap := snapshot(map[string]*float64{
		"free_cash_flow": fptr(123.0), // not in any style table
	})

	_, err := Score(snap, models.StyleGrowth)
	require.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestScoreNilMetricTreatedAsAbsent(t *testing.T) {
	snap := snapshot(map[string]*float64{
		MetricRevenueGrowth:  fptr(0.10),
		MetricEarningsGrowth: nil,
	})

	score, err := Score(snap, models.StyleGrowth)
	require.NoError(t, err)
	assert.NotContains(t, score.Breakdown, MetricEarningsGrowth)
	assert.InDelta(t, 1.0, score.Breakdown[MetricRevenueGrowth].Weight, 1e-9)
}

func TestScoreUnknownStyle(t *testing.T) {
	snap := snapshot(map[string]*float64{MetricROE: fptr(0.15)})

	_, err := Score(snap, models.Style("momentum"))
	require.Error(t, err)
}

func TestDividendYieldSustainabilityCeiling(t *testing.T) {
	snap := snapshot(map[string]*float64{
		MetricDividendYield: fptr(0.15), // implausibly high
		MetricPayoutRatio:   fptr(0.95),
	})

	score, err := Score(snap, models.StyleDividend)
	require.NoError(t, err)

	// A 15% yield is a risk signal, not a reward.
	assert.InDelta(t, yieldFloor, score.Breakdown[MetricDividendYield].Value, 1e-9)
	assert.Less(t, score.Breakdown[MetricPayoutRatio].Value, 0.2)
}

func TestDividendYieldScoreShape(t *testing.T) {
	assert.Equal(t, 0.0, dividendYieldScore(0))
	assert.InDelta(t, 0.5, dividendYieldScore(0.02), 1e-9)
	assert.Equal(t, 1.0, dividendYieldScore(0.04))
	assert.Equal(t, 1.0, dividendYieldScore(0.06))
	assert.Greater(t, dividendYieldScore(0.08), dividendYieldScore(0.10))
	assert.InDelta(t, yieldFloor, dividendYieldScore(0.12), 1e-9)
	assert.Equal(t, yieldFloor, dividendYieldScore(0.30))
}

func TestPayoutRatioScorePeaked(t *testing.T) {
	assert.Equal(t, 0.0, payoutRatioScore(0))
	assert.InDelta(t, 0.5, payoutRatioScore(0.15), 1e-9)
	assert.Equal(t, 1.0, payoutRatioScore(0.45))
	assert.Greater(t, payoutRatioScore(0.70), payoutRatioScore(0.90))
	assert.Equal(t, 0.0, payoutRatioScore(1.0))
	assert.Equal(t, 0.0, payoutRatioScore(1.4))
}

func TestNormalizeDebtToEquityPercent(t *testing.T) {
	snap := snapshot(map[string]*float64{
		MetricDebtToEquity: fptr(85.0), // percent-style report
	})

	m := Normalize(snap)
	assert.InDelta(t, 0.85, m[MetricDebtToEquity], 1e-9)
}

func TestNormalizeDerivesDividendStreak(t *testing.T) {
	snap := snapshot(map[string]*float64{MetricDividendYield: fptr(0.03)})
	snap.DividendHistory = []models.DividendYear{
		{Year: 2020, Amount: 1.00},
		{Year: 2021, Amount: 1.05},
		{Year: 2022, Amount: 1.02}, // cut breaks the streak
		{Year: 2023, Amount: 1.10},
		{Year: 2024, Amount: 1.20},
	}

	m := Normalize(snap)
	assert.Equal(t, 2.0, m[MetricDividendStreak])
}

func TestNormalizeDropsNonFiniteValues(t *testing.T) {
	snap := snapshot(map[string]*float64{
		MetricROE:     fptr(math.NaN()),
		MetricPERatio: fptr(15),
	})

	m := Normalize(snap)
	assert.NotContains(t, m, MetricROE)
	assert.Contains(t, m, MetricPERatio)
}
