// Package indicator computes the derived series the signal pipeline
// consumes: EMA, Wilder RSI, Wilder ATR and swing pivots. All functions
// are pure; identical inputs yield bitwise-identical outputs. Series are
// aligned to their input with NaN padding where a value is undefined.
package indicator

import (
	"math"

	"github.com/Alias1177/signalengine/internal/model"
)

// Closes extracts the close series from candles.
func Closes(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Defined reports whether an indicator value is usable.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Last returns the final value of a series, or NaN for an empty one.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// EMA computes the exponential moving average with smoothing
// alpha = 2/(period+1), seeded from an SMA over the first period samples.
// Indices before period-1 are NaN.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	out[period-1] = sum / float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*alpha + out[i-1]
	}
	return out
}

// EMALast returns the final EMA value, falling back to a plain mean when
// the series is shorter than the period. The fallback keeps higher
// timeframe filters defined at their minimum data window.
func EMALast(values []float64, period int) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	if len(values) >= period {
		return Last(EMA(values, period))
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RSI computes Wilder's relative strength index. The first period
// indices are NaN; callers treat an undefined RSI as Hold-forcing.
func RSI(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change >= 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change >= 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// ATR computes Wilder's average true range over candles. Indices before
// period are NaN.
func ATR(candles []model.Candle, period int) []float64 {
	out := make([]float64, len(candles))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(candles) < period+1 {
		return out
	}

	tr := make([]float64, len(candles))
	for i := 1; i < len(candles); i++ {
		h, l, pc := candles[i].High, candles[i].Low, candles[i-1].Close
		tr[i] = math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc)))
	}

	var sum float64
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	out[period] = sum / float64(period)

	for i := period + 1; i < len(candles); i++ {
		out[i] = (out[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return out
}

// Swing is a pivot high or low in a candle series.
type Swing struct {
	Index int
	Price float64
	High  bool
}

// Swings identifies pivot points: a swing high is a candle whose high is
// strictly greater than the highs of the lookback candles on each side,
// a swing low symmetric on lows.
func Swings(candles []model.Candle, lookback int) []Swing {
	if lookback <= 0 || len(candles) < 2*lookback+1 {
		return nil
	}
	var out []Swing
	for i := lookback; i < len(candles)-lookback; i++ {
		high, low := true, true
		for j := 1; j <= lookback; j++ {
			if candles[i].High <= candles[i-j].High || candles[i].High <= candles[i+j].High {
				high = false
			}
			if candles[i].Low >= candles[i-j].Low || candles[i].Low >= candles[i+j].Low {
				low = false
			}
			if !high && !low {
				break
			}
		}
		if high {
			out = append(out, Swing{Index: i, Price: candles[i].High, High: true})
		}
		if low {
			out = append(out, Swing{Index: i, Price: candles[i].Low, High: false})
		}
	}
	return out
}
