package engine

import (
	"context"
	"math"
	"time"

	"github.com/Alias1177/signalengine/internal/confluence"
	"github.com/Alias1177/signalengine/internal/indicator"
	"github.com/Alias1177/signalengine/internal/model"
	"github.com/Alias1177/signalengine/internal/session"
)

// Data sufficiency minimums (stage A).
const (
	minDailyCandles  = 60
	minWeeklyCandles = 14
)

// Candle windows fetched per evaluation. Wider than the stage A minimum
// so the slow EMA gets a properly seeded run-up.
const (
	dailyLookback  = 120
	weeklyLookback = 60
)

// Sizing geometry and strength weighting (stages E and F).
const (
	stopATRMultiple     = 1.5
	targetATRMultiple   = 3.0
	crossoverNormalizer = 0.5 // crossover gap measured in halves of ATR

	weightCrossover  = 0.4
	weightConfluence = 0.3
	weightSession    = 0.2
	weightRSI        = 0.1
)

// Weekly RSI band accepted by the trend-regime filter (stage D).
const (
	regimeRSILow  = 30.0
	regimeRSIHigh = 70.0
)

// evaluatePair runs the six composer stages for one pair. Any gate
// failure short-circuits to a Hold carrying the stage's reason tag; only
// data access problems surface as errors.
func (e *Engine) evaluatePair(ctx context.Context, pair model.Pair, asOf time.Time, ledger *Ledger) (model.Signal, error) {
	pc := e.cfg.Pairs[pair]
	sig := model.Signal{Pair: pair, Timestamp: asOf, Direction: model.DirectionHold}

	daily, err := e.store.Candles(ctx, pair, model.TimeframeDaily, asOf, dailyLookback)
	if err != nil {
		return sig, err
	}
	weekly, err := e.store.Candles(ctx, pair, model.TimeframeWeekly, asOf, weeklyLookback)
	if err != nil {
		return sig, err
	}

	// Stage A: data sufficiency.
	if len(daily) < minDailyCandles || len(weekly) < minWeeklyCandles {
		return hold(sig, model.ReasonInsufficientData), nil
	}

	// Stage B: session gate.
	quality := e.classifier.Quality(asOf, pc.OptimalSessions)
	sig.SessionQuality = quality
	if quality == session.QualityOff {
		return hold(sig, model.ReasonOutsideSession), nil
	}

	// Stage C: crossover detection on the Daily fast/slow EMA pair.
	emaFast := e.cache.EMA(pair, model.TimeframeDaily, daily, pc.EMAFast)
	emaSlow := e.cache.EMA(pair, model.TimeframeDaily, daily, pc.EMASlow)
	t := len(daily) - 1
	if !indicator.Defined(emaFast[t-1]) || !indicator.Defined(emaSlow[t-1]) ||
		!indicator.Defined(emaFast[t]) || !indicator.Defined(emaSlow[t]) {
		return hold(sig, model.ReasonInsufficientData), nil
	}

	bullish := emaFast[t-1] <= emaSlow[t-1] && emaFast[t] > emaSlow[t]
	bearish := emaFast[t-1] >= emaSlow[t-1] && emaFast[t] < emaSlow[t]
	if !bullish && !bearish {
		return hold(sig, model.ReasonNoCrossover), nil
	}

	// Stage D: weekly trend-regime filter.
	weeklyCloses := indicator.Closes(weekly)
	weeklyFast := indicator.EMALast(weeklyCloses, pc.EMAFast)
	weeklySlow := indicator.EMALast(weeklyCloses, pc.EMASlow)
	weeklyRSI := indicator.Last(e.cache.RSI(pair, model.TimeframeWeekly, weekly, pc.RSIPeriod))
	if !indicator.Defined(weeklyRSI) {
		return hold(sig, model.ReasonInsufficientData), nil
	}
	if !indicator.Defined(weeklyFast) || !indicator.Defined(weeklySlow) {
		return hold(sig, model.ReasonNumericDegeneracy), nil
	}
	rsiInBand := weeklyRSI > regimeRSILow && weeklyRSI < regimeRSIHigh
	if bullish && !(weeklyFast > weeklySlow && rsiInBand) {
		return hold(sig, model.ReasonRegimeMismatch), nil
	}
	if bearish && !(weeklyFast < weeklySlow && rsiInBand) {
		return hold(sig, model.ReasonRegimeMismatch), nil
	}

	// Stage E: strength scoring.
	atr := indicator.Last(e.cache.ATR(pair, model.TimeframeDaily, daily, pc.ATRPeriod))
	dailyRSI := indicator.Last(e.cache.RSI(pair, model.TimeframeDaily, daily, pc.RSIPeriod))
	if !indicator.Defined(dailyRSI) {
		return hold(sig, model.ReasonInsufficientData), nil
	}
	if !indicator.Defined(atr) || atr <= 0 {
		e.logger.Warn().
			Str("pair", string(pair)).
			Float64("atr", atr).
			Msg("degenerate ATR, forcing hold")
		return hold(sig, model.ReasonNumericDegeneracy), nil
	}

	lastClose := daily[len(daily)-1].Close
	levels := confluence.BuildLevels(pair, daily, weekly)
	confScore, contribs := confluence.Score(lastClose, atr, levels)
	sig.ConfluenceScore = confScore

	crossoverScore := math.Min(1, math.Abs(emaFast[t]-emaSlow[t])/(crossoverNormalizer*atr))
	rsiAligned := (bullish && dailyRSI > 50) || (bearish && dailyRSI < 50)
	rsiAlignment := 0.5
	if rsiAligned {
		rsiAlignment = 1.0
	}
	strength := weightCrossover*crossoverScore +
		weightConfluence*confScore/confluence.ScoreCap +
		weightSession*quality/session.QualityOptimal +
		weightRSI*rsiAlignment
	strength = clamp(strength, 0, 1)
	if !indicator.Defined(strength) {
		return hold(sig, model.ReasonNumericDegeneracy), nil
	}
	sig.Strength = strength

	// Stage F: position sizing against the exposure ledger.
	target := clamp(e.cfg.Risk.BaseRisk*strengthMultiplier(strength), e.cfg.Risk.MinRisk, e.cfg.Risk.MaxRisk)
	available := ledger.Available(pair, e.cfg.Risk)
	risk := math.Min(target, available)
	if risk < e.cfg.Risk.MinRisk-capEpsilon {
		return hold(sig, model.ReasonExposureCapped), nil
	}

	direction := model.DirectionBuy
	crossTag := model.ReasonBullishCrossover
	stop := lastClose - stopATRMultiple*atr
	targetPrice := lastClose + targetATRMultiple*atr
	if bearish {
		direction = model.DirectionSell
		crossTag = model.ReasonBearishCrossover
		stop = lastClose + stopATRMultiple*atr
		targetPrice = lastClose - targetATRMultiple*atr
	}

	if err := ledger.Commit(pair, risk, e.cfg.Risk); err != nil {
		return sig, err
	}

	sig.Direction = direction
	sig.EntryPrice = lastClose
	sig.StopPrice = stop
	sig.TargetPrice = targetPrice
	sig.PositionFraction = risk
	sig.Reasons = append(sig.Reasons, crossTag, model.ReasonRegimeAligned)
	if rsiAligned {
		sig.Reasons = append(sig.Reasons, model.ReasonRSIConfirms)
	}
	if len(contribs) > 0 {
		sig.Reasons = append(sig.Reasons, model.ReasonConfluence)
	}
	if risk < target-capEpsilon {
		sig.Reasons = append(sig.Reasons, model.ReasonSizeReduced)
	}
	return sig, nil
}

// strengthMultiplier scales base risk by conviction.
func strengthMultiplier(strength float64) float64 {
	switch {
	case strength < 0.3:
		return 0.33
	case strength < 0.6:
		return 0.67
	case strength < 0.8:
		return 1.0
	default:
		return 2.0
	}
}

func hold(sig model.Signal, reason string) model.Signal {
	sig.Direction = model.DirectionHold
	sig.Strength = 0
	sig.Reasons = append(sig.Reasons, reason)
	return sig
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
