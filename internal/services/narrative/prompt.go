package narrative

import (
	"fmt"
	"sort"
	"strings"

	"FundLens/internal/domain/models"
)

const systemInstruction = "You are an equity analyst. Write one short paragraph " +
	"(3-5 sentences) explaining the recommendation to a retail investor. " +
	"Cite the specific metrics provided. Do not invent numbers. Do not give " +
	"personalized financial advice or disclaimers."

// BuildPrompt renders the fixed prompt template for a scored analysis.
// Metrics are interpolated in sorted order so the same inputs always
// produce byte-identical prompts.
func BuildPrompt(snap *models.TickerSnapshot, score *models.Score, action models.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\n", snap.Ticker)
	fmt.Fprintf(&b, "Investor style: %s\n", score.Style)
	fmt.Fprintf(&b, "Recommendation: %s\n", action)
	fmt.Fprintf(&b, "Composite score: %.2f (0 = worst, 1 = best)\n", score.Composite)
	b.WriteString("Metric breakdown:\n")

	names := make([]string, 0, len(score.Breakdown))
	for name := range score.Breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sub := score.Breakdown[name]
		raw := "n/a"
		if v, ok := snap.Metric(name); ok {
			raw = fmt.Sprintf("%.4g", v)
		}
		fmt.Fprintf(&b, "- %s: raw value %s, sub-score %.2f, weight %.2f\n",
			name, raw, sub.Value, sub.Weight)
	}

	b.WriteString("\nExplain why the metrics above lead to this recommendation.")
	return b.String()
}
