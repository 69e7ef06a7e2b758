package confluence

import "math"

// ScoreCap bounds the aggregate confluence score.
const ScoreCap = 3.0

// Proximity bands in ATR multiples: full weight inside innerBand, linear
// decay to zero at outerBand.
const (
	innerBand = 0.25
	outerBand = 1.0
)

// Contribution records one level's share of the score.
type Contribution struct {
	Level  Level   `json:"level"`
	Amount float64 `json:"amount"`
}

// Score measures how strongly close sits near the given levels, scaled
// by the Daily ATR. Coincident levels sum: several levels stacked at one
// price are stronger confluence than one. The returned contributions
// explain the score. A non-positive or non-finite ATR yields zero.
func Score(close, atr float64, levels []Level) (float64, []Contribution) {
	if atr <= 0 || math.IsNaN(atr) || math.IsInf(atr, 0) {
		return 0, nil
	}

	var total float64
	var contribs []Contribution
	for _, lvl := range levels {
		f := proximity(math.Abs(close-lvl.Price) / atr)
		if f <= 0 {
			continue
		}
		amount := lvl.Weight * f
		total += amount
		contribs = append(contribs, Contribution{Level: lvl, Amount: amount})
	}
	if total > ScoreCap {
		total = ScoreCap
	}
	return total, contribs
}

// proximity maps distance-in-ATRs to a [0,1] factor.
func proximity(x float64) float64 {
	switch {
	case x <= innerBand:
		return 1
	case x >= outerBand:
		return 0
	default:
		return (outerBand - x) / (outerBand - innerBand)
	}
}
