package model

import "time"

// Direction is the discrete trading decision.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// Reason tags attached to emitted signals. Hold signals carry at least one.
const (
	ReasonInsufficientData  = "InsufficientData"
	ReasonOutsideSession    = "OutsideSession"
	ReasonNoCrossover       = "NoCrossover"
	ReasonRegimeMismatch    = "RegimeMismatch"
	ReasonNumericDegeneracy = "NumericDegeneracy"
	ReasonExposureCapped    = "ExposureCapped"
	ReasonTimeout           = "Timeout"
	ReasonDataUnavailable   = "DataUnavailable"

	ReasonBullishCrossover = "BullishCrossover"
	ReasonBearishCrossover = "BearishCrossover"
	ReasonRegimeAligned    = "RegimeAligned"
	ReasonRSIConfirms      = "RSIConfirms"
	ReasonConfluence       = "Confluence"
	ReasonSizeReduced      = "SizeReduced"
)

// Signal is the immutable outcome of one (pair, as-of) evaluation.
// Stop, target and position fields are meaningful only for non-Hold
// directions and are omitted from the wire format otherwise.
type Signal struct {
	Pair             Pair      `json:"pair"`
	Timestamp        time.Time `json:"timestamp"`
	Direction        Direction `json:"direction"`
	Strength         float64   `json:"strength"`
	ConfluenceScore  float64   `json:"confluence_score"`
	SessionQuality   float64   `json:"session_quality"`
	EntryPrice       float64   `json:"entry_price,omitempty"`
	StopPrice        float64   `json:"stop_price,omitempty"`
	TargetPrice      float64   `json:"target_price,omitempty"`
	PositionFraction float64   `json:"position_fraction,omitempty"`
	Reasons          []string  `json:"reasons"`
}

// IsHold reports whether the signal carries no trade.
func (s Signal) IsHold() bool { return s.Direction == DirectionHold }

// Exposure maps a currency code to the risk fraction currently committed
// against it.
type Exposure map[string]float64

// Clone returns a deep copy; a nil receiver yields an empty map.
func (e Exposure) Clone() Exposure {
	out := make(Exposure, len(e))
	for c, v := range e {
		out[c] = v
	}
	return out
}

// Heat is the total committed risk summed over all currencies. A commit
// accrues against both base and quote, so one trade adds twice its risk
// fraction to the heat.
func (e Exposure) Heat() float64 {
	var sum float64
	for _, v := range e {
		sum += v
	}
	return sum
}

// BatchStatus summarizes a batch evaluation.
type BatchStatus string

const (
	BatchOk      BatchStatus = "Ok"
	BatchPartial BatchStatus = "Partial"
	BatchAborted BatchStatus = "Aborted"
)

// SkippedPair records a pair that produced no signal in a batch.
type SkippedPair struct {
	Pair   Pair   `json:"pair"`
	Reason string `json:"reason"`
}

// BatchResult is the outcome of evaluating a batch of pairs at one
// as-of instant: the emitted signals in pair-priority order, the pairs
// that were skipped, and the resulting exposure ledger snapshot.
type BatchResult struct {
	AsOf    time.Time     `json:"as_of"`
	Signals []Signal      `json:"signals"`
	Skipped []SkippedPair `json:"skipped,omitempty"`
	Ledger  Exposure      `json:"ledger"`
	Status  BatchStatus   `json:"status"`
}
