package models

import (
	"errors"
	"fmt"
)

var (
	// ErrTickerNotFound means the data provider does not know the ticker.
	ErrTickerNotFound = errors.New("ticker not found")

	// ErrInsufficientData means no metric relevant to the requested style
	// was present in the snapshot.
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// ProviderError wraps a market data provider failure.
type ProviderError struct {
	Ticker    string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: fetch %s: %v", e.Ticker, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NarrativeError wraps a narrative model failure. The orchestrator treats
// these as recoverable and substitutes a rule-based rationale.
type NarrativeError struct {
	Err error
}

func (e *NarrativeError) Error() string {
	return fmt.Sprintf("narrative: %v", e.Err)
}

func (e *NarrativeError) Unwrap() error { return e.Err }
