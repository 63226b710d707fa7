package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Tier names one of the two cache namespaces. The raw tier holds
// provider snapshots and is style-independent; the result tier holds
// finished analyses keyed by style as well.
type Tier string

const (
	TierRaw    Tier = "raw"
	TierResult Tier = "result"
)

// envelope wraps every cached value so entries self-describe their
// expiry regardless of backend: an entry is valid iff
// now - StoredAt < TTL.
type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	TTL      time.Duration   `json:"ttl"`
	Value    json.RawMessage `json:"value"`
}

// Manager is the two-tier cache facade used by the analysis workflow.
// Tiers share one Store but carry independent TTLs; the raw tier TTL is
// expected to exceed the result tier TTL (raw statements change far
// less often than a request's freshness requirement).
type Manager struct {
	store Store
	ttls  map[Tier]time.Duration
	now   func() time.Time
}

// NewManager creates a tiered cache on top of store.
func NewManager(store Store, rawTTL, resultTTL time.Duration) *Manager {
	return &Manager{
		store: store,
		ttls: map[Tier]time.Duration{
			TierRaw:    rawTTL,
			TierResult: resultTTL,
		},
		now: time.Now,
	}
}

// RawKey builds the raw-tier key for a ticker and UTC day bucket.
func (m *Manager) RawKey(ticker, day string) string {
	return fmt.Sprintf("%s:%s:%s", TierRaw, strings.ToUpper(ticker), day)
}

// ResultKey builds the result-tier key for a ticker, style and day bucket.
func (m *Manager) ResultKey(ticker, style, day string) string {
	return fmt.Sprintf("%s:%s:%s:%s", TierResult, strings.ToUpper(ticker), style, day)
}

// TTL returns the configured TTL for a tier.
func (m *Manager) TTL(tier Tier) time.Duration {
	return m.ttls[tier]
}

// Put marshals value and replaces whatever the key held before.
func (m *Manager) Put(ctx context.Context, tier Tier, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	ttl := m.ttls[tier]
	env, err := json.Marshal(envelope{
		StoredAt: m.now().UTC(),
		TTL:      ttl,
		Value:    raw,
	})
	if err != nil {
		return fmt.Errorf("cache envelope marshal: %w", err)
	}
	return m.store.Set(ctx, key, env, ttl)
}

// Get unmarshals the entry for key into dest. It returns (false, nil)
// for a missing or expired entry and (false, err) only for storage
// faults, so callers can always treat errors as a miss and repopulate.
func (m *Manager) Get(ctx context.Context, tier Tier, key string, dest interface{}) (bool, error) {
	data, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return false, nil
		}
		return false, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		// Corrupt entry: drop it and report a miss.
		_ = m.store.Delete(ctx, key)
		return false, nil
	}

	// Backends enforce TTL themselves, but the envelope is the source
	// of truth: an expired entry is absent, never served.
	ttl := env.TTL
	if ttl <= 0 {
		ttl = m.ttls[tier]
	}
	if ttl > 0 && m.now().Sub(env.StoredAt) >= ttl {
		_ = m.store.Delete(ctx, key)
		return false, nil
	}

	if err := json.Unmarshal(env.Value, dest); err != nil {
		_ = m.store.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
