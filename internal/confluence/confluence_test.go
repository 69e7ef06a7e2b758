package confluence

import (
	"math"
	"testing"
	"time"

	"github.com/Alias1177/signalengine/internal/model"
)

func singleLevel(price float64) []Level {
	return []Level{{Price: price, Kind: PriorDayHigh, Weight: Weight(PriorDayHigh)}}
}

func TestScoreProximityBands(t *testing.T) {
	const close, atr = 100.0, 1.0
	cases := []struct {
		name  string
		price float64
		want  float64
	}{
		{"inside inner band", 100.2, 0.6},
		{"at inner band edge", 100.25, 0.6},
		{"midway through decay", 100.625, 0.3},
		{"at outer band edge", 101.0, 0},
		{"beyond outer band", 101.2, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, _ := Score(close, atr, singleLevel(c.price))
			if math.Abs(got-c.want) > 1e-9 {
				t.Errorf("Score with level at %v = %v, want %v", c.price, got, c.want)
			}
		})
	}
}

func TestScoreMonotoneInDistance(t *testing.T) {
	const close, atr = 100.0, 1.0
	prev := math.Inf(1)
	for d := 0.0; d <= 1.2; d += 0.05 {
		got, _ := Score(close, atr, singleLevel(close+d))
		if got > prev+1e-12 {
			t.Fatalf("score increased from %v to %v at distance %v", prev, got, d)
		}
		prev = got
	}
}

func TestScoreCoincidentLevelsSumAndCap(t *testing.T) {
	const close, atr = 100.0, 1.0
	two := append(singleLevel(close), Level{Price: close, Kind: PriorWeekHigh, Weight: Weight(PriorWeekHigh)})
	got, contribs := Score(close, atr, two)
	if math.Abs(got-1.4) > 1e-9 {
		t.Errorf("two stacked levels score %v, want 1.4", got)
	}
	if len(contribs) != 2 {
		t.Errorf("got %d contributions, want 2", len(contribs))
	}

	var many []Level
	for i := 0; i < 10; i++ {
		many = append(many, singleLevel(close)...)
	}
	got, _ = Score(close, atr, many)
	if got != ScoreCap {
		t.Errorf("stacked score = %v, want cap %v", got, ScoreCap)
	}
}

func TestScoreDegenerateATR(t *testing.T) {
	for _, atr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		got, contribs := Score(100, atr, singleLevel(100))
		if got != 0 || contribs != nil {
			t.Errorf("Score with atr=%v = (%v, %v), want (0, nil)", atr, got, contribs)
		}
	}
}

// flatDaily builds n daily candles in a narrow band with distinct prior
// day extremes on the second-to-last bar.
func flatDaily(n int) []model.Candle {
	start := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for i := range out {
		out[i] = model.Candle{
			Time:  start.AddDate(0, 0, i),
			Open:  150.0,
			High:  150.3,
			Low:   149.7,
			Close: 150.1,
		}
	}
	prior := &out[n-2]
	prior.High = 150.9
	prior.Low = 149.2
	return out
}

func TestBuildLevelsPriorDayAndRound(t *testing.T) {
	daily := flatDaily(30)
	levels := BuildLevels("USD_JPY", daily, nil)

	byKind := make(map[LevelKind][]float64)
	for _, l := range levels {
		byKind[l.Kind] = append(byKind[l.Kind], l.Price)
	}
	if got := byKind[PriorDayHigh]; len(got) != 1 || got[0] != 150.9 {
		t.Errorf("PriorDayHigh = %v, want [150.9]", got)
	}
	if got := byKind[PriorDayLow]; len(got) != 1 || got[0] != 149.2 {
		t.Errorf("PriorDayLow = %v, want [149.2]", got)
	}
	// JPY-quoted grid is 1.00; the close 150.1 sits between 150 and 151.
	if got := byKind[RoundNumber]; len(got) != 2 || got[0] != 150 || got[1] != 151 {
		t.Errorf("RoundNumber = %v, want [150 151]", got)
	}
	if got := byKind[PriorWeekHigh]; len(got) != 0 {
		t.Errorf("PriorWeekHigh without weekly data = %v, want none", got)
	}
	for _, l := range levels {
		if l.Weight != Weight(l.Kind) {
			t.Errorf("level %s carries weight %v, want %v", l.Kind, l.Weight, Weight(l.Kind))
		}
	}
}

// A close just under the next big figure must pick up that figure's
// weight even though the nearest-by-rounding figure is the one above.
func TestRoundNumberFlankingFigures(t *testing.T) {
	daily := flatDaily(30)
	last := &daily[len(daily)-1]
	last.Close = 150.96
	last.High = 151.2

	levels := BuildLevels("USD_JPY", daily, nil)
	var round []float64
	for _, l := range levels {
		if l.Kind == RoundNumber {
			round = append(round, l.Price)
		}
	}
	if len(round) != 2 || round[0] != 150 || round[1] != 151 {
		t.Fatalf("RoundNumber = %v, want [150 151]", round)
	}

	got, _ := Score(last.Close, 1.0, []Level{
		{Price: 150, Kind: RoundNumber, Weight: Weight(RoundNumber)},
		{Price: 151, Kind: RoundNumber, Weight: Weight(RoundNumber)},
	})
	// 0.04 ATR from 151 scores the full 0.3; 0.96 ATR from 150 adds the
	// tail of the decay.
	wantNear, wantFar := 0.3, 0.3*(1.0-0.96)/0.75
	if math.Abs(got-(wantNear+wantFar)) > 1e-9 {
		t.Errorf("score = %v, want %v", got, wantNear+wantFar)
	}
}

func TestBuildLevelsPriorWeek(t *testing.T) {
	daily := flatDaily(30)
	lastOpen := daily[len(daily)-1].Time
	weekly := []model.Candle{
		{Time: lastOpen.AddDate(0, 0, -14), Open: 149, High: 151.5, Low: 148.5, Close: 150},
		{Time: lastOpen.AddDate(0, 0, -7), Open: 150, High: 152.0, Low: 149.0, Close: 150.5},
		// Current, still-relevant week; must not be picked as prior.
		{Time: lastOpen.AddDate(0, 0, -2), Open: 150.5, High: 153.0, Low: 150.0, Close: 151},
	}
	levels := BuildLevels("USD_JPY", daily, weekly)

	var hi, lo float64
	for _, l := range levels {
		switch l.Kind {
		case PriorWeekHigh:
			hi = l.Price
		case PriorWeekLow:
			lo = l.Price
		}
	}
	if hi != 152.0 || lo != 149.0 {
		t.Errorf("prior week levels = (%v, %v), want (152.0, 149.0)", hi, lo)
	}
}

func TestFibLevelsDirection(t *testing.T) {
	start := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	mk := func(i int, lo, hi float64) model.Candle {
		return model.Candle{Time: start.AddDate(0, 0, i), Open: lo, High: hi, Low: lo, Close: hi}
	}

	// High at index 5, low at index 15: completed down-move, retracements
	// measured up from the low.
	down := make([]model.Candle, 20)
	for i := range down {
		switch {
		case i == 5:
			down[i] = mk(i, 158, 160)
		case i == 15:
			down[i] = mk(i, 140, 142)
		default:
			down[i] = mk(i, 149, 151)
		}
	}
	levels := fibLevels(down)
	if len(levels) != 3 {
		t.Fatalf("got %d fib levels, want 3", len(levels))
	}
	for _, l := range levels {
		if l.Kind == Fib500 && math.Abs(l.Price-150) > 1e-9 {
			t.Errorf("Fib500 after down-move = %v, want 150 (low + half span)", l.Price)
		}
		if l.Kind == Fib382 && math.Abs(l.Price-(140+0.382*20)) > 1e-9 {
			t.Errorf("Fib382 after down-move = %v, want %v", l.Price, 140+0.382*20)
		}
	}

	// Mirror: low first, high later, retracements measured down from the high.
	up := make([]model.Candle, 20)
	for i := range up {
		switch {
		case i == 5:
			up[i] = mk(i, 140, 142)
		case i == 15:
			up[i] = mk(i, 158, 160)
		default:
			up[i] = mk(i, 149, 151)
		}
	}
	levels = fibLevels(up)
	for _, l := range levels {
		if l.Kind == Fib618 && math.Abs(l.Price-(160-0.618*20)) > 1e-9 {
			t.Errorf("Fib618 after up-move = %v, want %v", l.Price, 160-0.618*20)
		}
	}
}

func TestFibLevelsFlatSpan(t *testing.T) {
	flat := make([]model.Candle, 20)
	for i := range flat {
		flat[i] = model.Candle{Open: 150, High: 150, Low: 150, Close: 150}
	}
	if levels := fibLevels(flat); levels != nil {
		t.Errorf("fib levels on zero span = %v, want none", levels)
	}
}
