package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/Alias1177/signalengine/internal/model"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := EMA(values, 3)

	if len(got) != len(values) {
		t.Fatalf("EMA length = %d, want %d", len(got), len(values))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("EMA[%d] = %v, want NaN before seed", i, got[i])
		}
	}
	// Seed is SMA(1,2,3)=2, alpha=0.5 afterwards.
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(got[i+2], w, 1e-12) {
			t.Errorf("EMA[%d] = %v, want %v", i+2, got[i+2], w)
		}
	}
}

func TestEMAShortSeries(t *testing.T) {
	got := EMA([]float64{1, 2}, 5)
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("EMA[%d] = %v, want NaN for short series", i, v)
		}
	}
	if v := EMALast([]float64{1, 2, 3}, 5); !almostEqual(v, 2, 1e-12) {
		t.Errorf("EMALast fallback = %v, want mean 2", v)
	}
}

func TestEMADeterminism(t *testing.T) {
	values := make([]float64, 200)
	x := 100.0
	for i := range values {
		// Deterministic pseudo-walk.
		x += math.Sin(float64(i)*0.7)*0.8 + 0.05
		values[i] = x
	}
	a := EMA(values, 20)
	b := EMA(values, 20)
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			t.Fatalf("EMA not bitwise deterministic at %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestRSI(t *testing.T) {
	values := []float64{1, 2, 3, 2, 4}
	got := RSI(values, 2)

	for i := 0; i < 2; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("RSI[%d] = %v, want NaN", i, got[i])
		}
	}
	if got[2] != 100 {
		t.Errorf("RSI[2] = %v, want 100 on pure gains", got[2])
	}
	if !almostEqual(got[3], 50, 1e-9) {
		t.Errorf("RSI[3] = %v, want 50", got[3])
	}
	if !almostEqual(got[4], 83.333333, 1e-5) {
		t.Errorf("RSI[4] = %v, want ~83.333", got[4])
	}
}

func TestRSIUndefinedEarly(t *testing.T) {
	got := RSI([]float64{1, 2, 3}, 14)
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("RSI[%d] = %v, want NaN with insufficient samples", i, v)
		}
	}
}

func TestATR(t *testing.T) {
	// Constant unit range with no gaps: every true range is 1.
	candles := make([]model.Candle, 20)
	for i := range candles {
		candles[i] = model.Candle{
			Time:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:  100,
			High:  100.5,
			Low:   99.5,
			Close: 100,
		}
	}
	got := ATR(candles, 14)
	for i := 0; i < 14; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("ATR[%d] = %v, want NaN", i, got[i])
		}
	}
	for i := 14; i < len(got); i++ {
		if !almostEqual(got[i], 1, 1e-12) {
			t.Errorf("ATR[%d] = %v, want 1", i, got[i])
		}
	}
}

func TestATRDegenerateSeries(t *testing.T) {
	candles := make([]model.Candle, 20)
	for i := range candles {
		candles[i] = model.Candle{Open: 100, High: 100, Low: 100, Close: 100}
	}
	got := ATR(candles, 14)
	if got[len(got)-1] != 0 {
		t.Errorf("ATR of flat series = %v, want 0", got[len(got)-1])
	}
}

func TestSwings(t *testing.T) {
	highs := []float64{10, 11, 14, 11, 10, 9, 8, 9, 10}
	lows := []float64{9, 10, 13, 10, 9, 5, 7, 8, 9}
	candles := make([]model.Candle, len(highs))
	for i := range candles {
		candles[i] = model.Candle{
			Open:  lows[i],
			High:  highs[i],
			Low:   lows[i],
			Close: highs[i],
		}
	}

	swings := Swings(candles, 2)
	var foundHigh, foundLow bool
	for _, s := range swings {
		if s.High && s.Index == 2 && s.Price == 14 {
			foundHigh = true
		}
		if !s.High && s.Index == 5 && s.Price == 5 {
			foundLow = true
		}
	}
	if !foundHigh {
		t.Errorf("expected swing high at index 2, got %+v", swings)
	}
	if !foundLow {
		t.Errorf("expected swing low at index 5, got %+v", swings)
	}
}

func TestSwingsRequireStrictInequality(t *testing.T) {
	// Flat highs: no candle strictly exceeds its neighbors.
	candles := make([]model.Candle, 9)
	for i := range candles {
		candles[i] = model.Candle{Open: 10, High: 11, Low: 9, Close: 10}
	}
	if swings := Swings(candles, 2); len(swings) != 0 {
		t.Errorf("expected no swings on flat series, got %+v", swings)
	}
}

func TestCacheReturnsConsistentSeries(t *testing.T) {
	candles := make([]model.Candle, 60)
	for i := range candles {
		price := 100 + float64(i)*0.3
		candles[i] = model.Candle{
			Time:  time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:  price - 0.1,
			High:  price + 0.2,
			Low:   price - 0.2,
			Close: price,
		}
	}

	cache := NewCache()
	a := cache.EMA("USD_JPY", model.TimeframeDaily, candles, 20)
	b := cache.EMA("USD_JPY", model.TimeframeDaily, candles, 20)
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			t.Fatalf("cached EMA differs at %d: %v != %v", i, a[i], b[i])
		}
	}

	cache.Reset()
	c := cache.EMA("USD_JPY", model.TimeframeDaily, candles, 20)
	if Last(c) != Last(a) {
		t.Errorf("EMA after reset = %v, want %v", Last(c), Last(a))
	}
}
