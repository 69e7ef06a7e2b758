package model

import (
	"fmt"
	"time"
)

// Timeframe is the granularity of a candle series.
type Timeframe string

const (
	TimeframeH4     Timeframe = "H4"
	TimeframeDaily  Timeframe = "D1"
	TimeframeWeekly Timeframe = "W1"
)

// Duration returns the nominal span of one candle. Weekly candles cover
// five trading days but occupy a seven-day slot on the calendar grid.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TimeframeH4:
		return 4 * time.Hour
	case TimeframeDaily:
		return 24 * time.Hour
	case TimeframeWeekly:
		return 7 * 24 * time.Hour
	}
	return 0
}

// Validate reports whether the timeframe is one of the supported values.
func (tf Timeframe) Validate() error {
	switch tf {
	case TimeframeH4, TimeframeDaily, TimeframeWeekly:
		return nil
	}
	return fmt.Errorf("unsupported timeframe %q", string(tf))
}

// Candle is a single OHLC aggregate. Time is the UTC open of the period,
// aligned to the timeframe grid. Candles are immutable once observed.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}

// CloseTime returns the UTC end of the candle's period.
func (c Candle) CloseTime(tf Timeframe) time.Time {
	return c.Time.Add(tf.Duration())
}

// ClosedAt reports whether the candle's period has fully elapsed at t.
func (c Candle) ClosedAt(tf Timeframe, t time.Time) bool {
	return !c.CloseTime(tf).After(t)
}

// Validate checks the OHLC ordering invariant low <= open,close <= high.
func (c Candle) Validate() error {
	if c.Low > c.Open || c.Low > c.Close || c.High < c.Open || c.High < c.Close {
		return fmt.Errorf("malformed candle at %s: low=%.5f open=%.5f close=%.5f high=%.5f",
			c.Time.Format(time.RFC3339), c.Low, c.Open, c.Close, c.High)
	}
	return nil
}
