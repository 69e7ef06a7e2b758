package candle

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Alias1177/signalengine/internal/model"

	"time"
)

// ErrDataUnavailable is returned when the underlying source cannot serve
// the requested window. It is reported per pair and never fails a batch.
var ErrDataUnavailable = errors.New("candle data unavailable")

// Source supplies raw H4 candles for a pair. Implementations must return
// candles in chronological order with open time <= asOf; the forming
// candle may be included and is filtered by the store.
type Source interface {
	Candles(ctx context.Context, pair model.Pair, tf model.Timeframe, asOf time.Time, lookback int) ([]model.Candle, error)
}

// MemorySource is an in-memory Source used for tests and replay runs.
type MemorySource struct {
	mu     sync.RWMutex
	series map[model.Pair][]model.Candle
}

// NewMemorySource returns an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{series: make(map[model.Pair][]model.Candle)}
}

// Add appends H4 candles for a pair and keeps the series sorted.
func (m *MemorySource) Add(pair model.Pair, candles ...model.Candle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := append(m.series[pair], candles...)
	sort.Slice(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
	m.series[pair] = s
}

// Candles returns the last lookback H4 candles with open time <= asOf.
func (m *MemorySource) Candles(ctx context.Context, pair model.Pair, tf model.Timeframe, asOf time.Time, lookback int) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tf != model.TimeframeH4 {
		return nil, ErrDataUnavailable
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[pair]
	if !ok {
		return nil, ErrDataUnavailable
	}
	// Binary search for the first candle opening after asOf.
	n := sort.Search(len(s), func(i int) bool { return s[i].Time.After(asOf) })
	start := n - lookback
	if start < 0 {
		start = 0
	}
	out := make([]model.Candle, n-start)
	copy(out, s[start:n])
	return out, nil
}
