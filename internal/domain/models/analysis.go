package models

import "time"

// Style is an investor style profile.
type Style string

const (
	StyleGrowth   Style = "growth"
	StyleValue    Style = "value"
	StyleDividend Style = "dividend"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	switch s {
	case StyleGrowth, StyleValue, StyleDividend:
		return true
	}
	return false
}

// Action is the recommendation emitted by the scoring engine.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionHold Action = "hold"
	ActionSell Action = "sell"
)

// Source identifies where the rationale text came from.
type Source string

const (
	SourceLLM       Source = "llm"
	SourceRuleBased Source = "rule_based"
)

// DividendYear is one year of per-share dividend payments.
type DividendYear struct {
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

// TickerSnapshot is the normalized fundamentals for one ticker on one day.
// Metrics values are nil when the provider did not report them.
type TickerSnapshot struct {
	Ticker          string              `json:"ticker"`
	AsOf            time.Time           `json:"as_of"`
	Metrics         map[string]*float64 `json:"metrics"`
	DividendHistory []DividendYear      `json:"dividend_history,omitempty"`
}

// Metric returns the named metric value, or (0, false) when absent.
func (s *TickerSnapshot) Metric(name string) (float64, bool) {
	v, ok := s.Metrics[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// SubScore is one metric's contribution to a composite score.
type SubScore struct {
	Value    float64 `json:"value"`    // normalized to [0,1]
	Weight   float64 `json:"weight"`   // effective weight after redistribution
	Weighted float64 `json:"weighted"` // Value * Weight
}

// Score is the output of the scoring engine for one style.
type Score struct {
	Style     Style               `json:"style"`
	Composite float64             `json:"composite"`
	Breakdown map[string]SubScore `json:"breakdown"`
}

// AnalysisResult is the final answer returned to callers.
type AnalysisResult struct {
	Ticker      string              `json:"ticker"`
	Style       Style               `json:"style"`
	Action      Action              `json:"action"`
	Confidence  float64             `json:"confidence"`
	Reason      string              `json:"reason"`
	Source      Source              `json:"source"`
	Breakdown   map[string]SubScore `json:"breakdown,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// AnalysisEvent is the message published after each completed analysis.
type AnalysisEvent struct {
	Ticker      string    `json:"ticker"`
	Style       Style     `json:"style"`
	Action      Action    `json:"action"`
	Confidence  float64   `json:"confidence"`
	Source      Source    `json:"source"`
	CacheHit    bool      `json:"cache_hit"`
	GeneratedAt time.Time `json:"generated_at"`
}
