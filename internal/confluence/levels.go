// Package confluence locates reference price levels around the current
// Daily close and scores how tightly the close clusters against them.
package confluence

import (
	"math"
	"time"

	"github.com/Alias1177/signalengine/internal/indicator"
	"github.com/Alias1177/signalengine/internal/model"
)

// LevelKind names the origin of a reference level.
type LevelKind string

const (
	PriorDayHigh  LevelKind = "PriorDayHigh"
	PriorDayLow   LevelKind = "PriorDayLow"
	PriorWeekHigh LevelKind = "PriorWeekHigh"
	PriorWeekLow  LevelKind = "PriorWeekLow"
	Fib382        LevelKind = "Fib382"
	Fib500        LevelKind = "Fib500"
	Fib618        LevelKind = "Fib618"
	RoundNumber   LevelKind = "RoundNumber"
	SwingHigh     LevelKind = "SwingHigh"
	SwingLow      LevelKind = "SwingLow"
)

// kindWeights are the fixed per-kind contribution weights.
var kindWeights = map[LevelKind]float64{
	PriorDayHigh:  0.6,
	PriorDayLow:   0.6,
	PriorWeekHigh: 0.8,
	PriorWeekLow:  0.8,
	Fib382:        0.5,
	Fib500:        0.4,
	Fib618:        0.5,
	RoundNumber:   0.3,
	SwingHigh:     0.4,
	SwingLow:      0.4,
}

// Weight returns the fixed weight for a level kind.
func Weight(kind LevelKind) float64 { return kindWeights[kind] }

// Level is a single reference price with its scoring weight.
type Level struct {
	Price  float64   `json:"price"`
	Kind   LevelKind `json:"kind"`
	Weight float64   `json:"weight"`
}

// swingWindow is the Daily lookback used for the fib swing and for
// swing-point levels.
const swingWindow = 20

// pivotLookback is the number of candles on each side of a swing pivot.
const pivotLookback = 2

// BuildLevels assembles the level catalog for a pair from its closed
// Daily and Weekly series. The last daily candle is the evaluation bar.
func BuildLevels(pair model.Pair, daily, weekly []model.Candle) []Level {
	var out []Level
	if len(daily) >= 2 {
		prior := daily[len(daily)-2]
		out = append(out,
			level(prior.High, PriorDayHigh),
			level(prior.Low, PriorDayLow),
		)
	}
	if w, ok := priorWeek(daily, weekly); ok {
		out = append(out,
			level(w.High, PriorWeekHigh),
			level(w.Low, PriorWeekLow),
		)
	}
	out = append(out, fibLevels(daily)...)
	out = append(out, swingLevels(daily)...)
	if len(daily) > 0 {
		// Both flanking big figures; proximity decay zeroes the far one
		// unless the ATR spans most of the grid step.
		close := daily[len(daily)-1].Close
		step := pair.RoundStep()
		lower := math.Floor(close/step) * step
		out = append(out,
			level(lower, RoundNumber),
			level(lower+step, RoundNumber),
		)
	}
	return out
}

func level(price float64, kind LevelKind) Level {
	return Level{Price: price, Kind: kind, Weight: kindWeights[kind]}
}

// priorWeek picks the last weekly candle that belongs to a trading week
// strictly before the week of the last daily candle.
func priorWeek(daily, weekly []model.Candle) (model.Candle, bool) {
	if len(daily) == 0 {
		return model.Candle{}, false
	}
	lastOpen := daily[len(daily)-1].Time
	for i := len(weekly) - 1; i >= 0; i-- {
		if lastOpen.Sub(weekly[i].Time) >= 6*24*time.Hour {
			return weekly[i], true
		}
	}
	return model.Candle{}, false
}

// fibLevels retraces the most recent completed swing inside the last
// swingWindow daily candles. The swing direction follows whichever
// extreme printed later: low after high means a completed down-move and
// retracements measured up from the low, the mirror case measured down
// from the high.
func fibLevels(daily []model.Candle) []Level {
	if len(daily) < 3 {
		return nil
	}
	window := daily
	if len(window) > swingWindow {
		window = window[len(window)-swingWindow:]
	}

	hiIdx, loIdx := 0, 0
	for i, c := range window {
		if c.High > window[hiIdx].High {
			hiIdx = i
		}
		if c.Low < window[loIdx].Low {
			loIdx = i
		}
	}
	high, low := window[hiIdx].High, window[loIdx].Low
	span := high - low
	if span <= 0 {
		return nil
	}

	ratios := []struct {
		r    float64
		kind LevelKind
	}{
		{0.382, Fib382},
		{0.5, Fib500},
		{0.618, Fib618},
	}
	out := make([]Level, 0, len(ratios))
	for _, f := range ratios {
		price := high - f.r*span
		if loIdx > hiIdx {
			// Down-move completed last: retrace up from the low.
			price = low + f.r*span
		}
		out = append(out, level(price, f.kind))
	}
	return out
}

// swingLevels turns pivot highs and lows inside the last swingWindow
// daily candles into levels.
func swingLevels(daily []model.Candle) []Level {
	window := daily
	if len(window) > swingWindow {
		window = window[len(window)-swingWindow:]
	}
	swings := indicator.Swings(window, pivotLookback)
	out := make([]Level, 0, len(swings))
	for _, s := range swings {
		kind := SwingLow
		if s.High {
			kind = SwingHigh
		}
		out = append(out, level(s.Price, kind))
	}
	return out
}
