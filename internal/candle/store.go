package candle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/signalengine/internal/model"
)

// h4PerDay is the number of H4 candles in one exchange day.
const h4PerDay = 6

// Store provides windowed read access to closed candles at the H4, Daily
// and Weekly granularities. Daily and Weekly series are derived from the
// source's H4 candles; derived series are cached per (pair, timeframe,
// last closed H4 open time), so a newer candle naturally invalidates the
// previous entry.
type Store struct {
	src    Source
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[storeKey]cacheEntry
}

type storeKey struct {
	pair model.Pair
	tf   model.Timeframe
}

type cacheEntry struct {
	lastH4 time.Time
	series []model.Candle
}

// NewStore wraps an H4 source.
func NewStore(src Source) *Store {
	return &Store{
		src:    src,
		logger: log.With().Str("component", "candle_store").Logger(),
		cache:  make(map[storeKey]cacheEntry),
	}
}

// Candles returns the last lookback closed candles for (pair, tf) whose
// period has fully elapsed at asOf, in chronological order. Fewer candles
// than requested are returned only at series start. Source failures are
// reported as ErrDataUnavailable.
func (s *Store) Candles(ctx context.Context, pair model.Pair, tf model.Timeframe, asOf time.Time, lookback int) ([]model.Candle, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("lookback must be positive, got %d", lookback)
	}
	if err := tf.Validate(); err != nil {
		return nil, err
	}

	rawLookback := lookback + 2
	switch tf {
	case model.TimeframeDaily:
		rawLookback = (lookback+2)*h4PerDay + h4PerDay
	case model.TimeframeWeekly:
		rawLookback = (lookback+2)*5*h4PerDay + h4PerDay
	}

	h4, err := s.src.Candles(ctx, pair, model.TimeframeH4, asOf, rawLookback)
	if err != nil {
		// A deadline expiring mid-fetch is a timeout, not missing data.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDataUnavailable, pair, tf, err)
	}
	h4 = closedH4(h4, asOf)
	if len(h4) == 0 {
		return nil, fmt.Errorf("%w: %s: no closed H4 candles at %s", ErrDataUnavailable, pair, asOf.Format(time.RFC3339))
	}

	series := h4
	if tf != model.TimeframeH4 {
		series = s.derived(pair, tf, h4)
		series = trimOpenPeriods(series, tf, asOf)
	}

	if len(series) > lookback {
		series = series[len(series)-lookback:]
	}
	if len(series) < lookback {
		s.logger.Debug().
			Str("pair", string(pair)).
			Str("timeframe", string(tf)).
			Int("want", lookback).
			Int("got", len(series)).
			Msg("short candle window at series start")
	}
	out := make([]model.Candle, len(series))
	copy(out, series)
	return out, nil
}

// derived returns the aggregated Daily or Weekly series, reusing the
// cached aggregation when the last closed H4 candle is unchanged.
func (s *Store) derived(pair model.Pair, tf model.Timeframe, h4 []model.Candle) []model.Candle {
	lastH4 := h4[len(h4)-1].Time
	key := storeKey{pair: pair, tf: tf}

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && entry.lastH4.Equal(lastH4) && len(entry.series) > 0 {
		return entry.series
	}

	daily := AggregateDaily(h4)
	series := daily
	if tf == model.TimeframeWeekly {
		series = AggregateWeekly(daily)
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{lastH4: lastH4, series: series}
	s.mu.Unlock()
	return series
}

// closedH4 drops candles that are still forming at asOf.
func closedH4(h4 []model.Candle, asOf time.Time) []model.Candle {
	n := len(h4)
	for n > 0 && !h4[n-1].ClosedAt(model.TimeframeH4, asOf) {
		n--
	}
	return h4[:n]
}

// trimOpenPeriods drops trailing derived candles whose period has not
// closed at asOf.
func trimOpenPeriods(series []model.Candle, tf model.Timeframe, asOf time.Time) []model.Candle {
	closed := func(c model.Candle) bool { return dailyClosedAt(c, asOf) }
	if tf == model.TimeframeWeekly {
		closed = func(c model.Candle) bool { return weeklyClosedAt(c, asOf) }
	}
	n := len(series)
	for n > 0 && !closed(series[n-1]) {
		n--
	}
	return series[:n]
}
