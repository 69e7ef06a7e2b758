package candle

import (
	"time"

	"github.com/Alias1177/signalengine/internal/model"
)

// The exchange day runs 21:00 UTC to 21:00 UTC, so the Sunday 21:00 open
// belongs to Monday's trading day.
const exchangeDayOpenHour = 21

// dayStart aligns t to the open of its exchange day.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	d := time.Date(t.Year(), t.Month(), t.Day(), exchangeDayOpenHour, 0, 0, 0, time.UTC)
	if t.Hour() < exchangeDayOpenHour {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// tradingDay returns the calendar day a daily candle trades for: the day
// containing the bulk of the 21:00-to-21:00 window.
func tradingDay(open time.Time) time.Time {
	t := open.UTC().Add(3 * time.Hour)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday 00:00 UTC of the trading week containing day.
func weekStart(day time.Time) time.Time {
	wd := int(day.Weekday())
	// Monday-based offset; Sunday counts into the following week's Monday
	// only through tradingDay, so here it maps back six days.
	offset := (wd + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// weekCloseTime is the Friday 21:00 UTC close of the trading week.
func weekCloseTime(start time.Time) time.Time {
	return start.AddDate(0, 0, 4).Add(exchangeDayOpenHour * time.Hour)
}

// AggregateDaily derives Daily candles from H4 candles by grouping the
// six H4 candles of each exchange day. Open is the first candle's open,
// close the last candle's close (last wins on ties), high/low the
// extrema, volume the sum. Input must be chronological; derivation is
// deterministic.
func AggregateDaily(h4 []model.Candle) []model.Candle {
	var out []model.Candle
	for _, c := range h4 {
		ds := dayStart(c.Time)
		if n := len(out); n > 0 && out[n-1].Time.Equal(ds) {
			last := &out[n-1]
			if c.High > last.High {
				last.High = c.High
			}
			if c.Low < last.Low {
				last.Low = c.Low
			}
			last.Close = c.Close
			last.Volume += c.Volume
			continue
		}
		out = append(out, model.Candle{
			Time:   ds,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}
	return out
}

// AggregateWeekly derives Weekly candles by grouping the Mon-Fri daily
// candles of each trading week. The weekly open time is the open of the
// week's first daily candle.
func AggregateWeekly(daily []model.Candle) []model.Candle {
	var out []model.Candle
	var curWeek time.Time
	for _, c := range daily {
		day := tradingDay(c.Time)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		ws := weekStart(day)
		if n := len(out); n > 0 && ws.Equal(curWeek) {
			last := &out[n-1]
			if c.High > last.High {
				last.High = c.High
			}
			if c.Low < last.Low {
				last.Low = c.Low
			}
			last.Close = c.Close
			last.Volume += c.Volume
			continue
		}
		curWeek = ws
		out = append(out, model.Candle{
			Time:   c.Time,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}
	return out
}

// dailyClosedAt reports whether a derived daily candle's exchange day has
// fully elapsed at t.
func dailyClosedAt(c model.Candle, t time.Time) bool {
	return !dayStart(c.Time).Add(24 * time.Hour).After(t)
}

// weeklyClosedAt reports whether the trading week of a derived weekly
// candle has closed (Friday 21:00 UTC) at t.
func weeklyClosedAt(c model.Candle, t time.Time) bool {
	return !weekCloseTime(weekStart(tradingDay(c.Time))).After(t)
}
