package indicator

import (
	"fmt"
	"sync"
	"time"

	"github.com/Alias1177/signalengine/internal/model"
)

// Cache memoizes indicator series within a batch. Keys include the open
// time of the last closed candle, so a newer candle never hits a stale
// entry; Reset drops everything between batches.
type Cache struct {
	mu     sync.RWMutex
	series map[string][]float64
}

// NewCache returns an empty indicator cache.
func NewCache() *Cache {
	return &Cache{series: make(map[string][]float64)}
}

func seriesKey(pair model.Pair, tf model.Timeframe, last time.Time, name string, period int) string {
	return fmt.Sprintf("%s|%s|%d|%s|%d", pair, tf, last.Unix(), name, period)
}

func (c *Cache) get(key string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.series[key]
	return s, ok
}

func (c *Cache) put(key string, s []float64) {
	c.mu.Lock()
	c.series[key] = s
	c.mu.Unlock()
}

// EMA returns the cached EMA series over candle closes.
func (c *Cache) EMA(pair model.Pair, tf model.Timeframe, candles []model.Candle, period int) []float64 {
	if len(candles) == 0 {
		return nil
	}
	key := seriesKey(pair, tf, candles[len(candles)-1].Time, "ema", period)
	if s, ok := c.get(key); ok && len(s) == len(candles) {
		return s
	}
	s := EMA(Closes(candles), period)
	c.put(key, s)
	return s
}

// RSI returns the cached Wilder RSI series over candle closes.
func (c *Cache) RSI(pair model.Pair, tf model.Timeframe, candles []model.Candle, period int) []float64 {
	if len(candles) == 0 {
		return nil
	}
	key := seriesKey(pair, tf, candles[len(candles)-1].Time, "rsi", period)
	if s, ok := c.get(key); ok && len(s) == len(candles) {
		return s
	}
	s := RSI(Closes(candles), period)
	c.put(key, s)
	return s
}

// ATR returns the cached Wilder ATR series.
func (c *Cache) ATR(pair model.Pair, tf model.Timeframe, candles []model.Candle, period int) []float64 {
	if len(candles) == 0 {
		return nil
	}
	key := seriesKey(pair, tf, candles[len(candles)-1].Time, "atr", period)
	if s, ok := c.get(key); ok && len(s) == len(candles) {
		return s
	}
	s := ATR(candles, period)
	c.put(key, s)
	return s
}

// Reset drops all cached series. Called between batches so replaced
// candles can never be observed through the cache.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.series = make(map[string][]float64)
	c.mu.Unlock()
}
