// Package session maps UTC timestamps to active forex sessions and
// scores how well a moment suits a pair's preferred trading hours.
package session

import (
	"time"

	"github.com/Alias1177/signalengine/internal/model"
)

// Quality multiplier tiers.
const (
	QualityOptimal = 1.5
	QualityMixed   = 1.0
	QualityPoor    = 0.5
	QualityOff     = 0.0
)

// Classifier resolves active sessions from configured UTC windows.
type Classifier struct {
	windows model.SessionMap
}

// NewClassifier builds a classifier over the given session windows.
func NewClassifier(windows model.SessionMap) *Classifier {
	return &Classifier{windows: windows}
}

// IsWeekend reports whether t falls in the weekend gap, Saturday 22:00
// UTC through Sunday 22:00 UTC.
func IsWeekend(t time.Time) bool {
	t = t.UTC()
	switch t.Weekday() {
	case time.Saturday:
		return t.Hour() >= 22
	case time.Sunday:
		return t.Hour() < 22
	}
	return false
}

// Active returns the set of sessions open at t, in fixed classification
// order. During the weekend gap it returns {Off}.
func (c *Classifier) Active(t time.Time) []model.Session {
	if IsWeekend(t) {
		return []model.Session{model.SessionOff}
	}
	h := t.UTC().Hour()
	var out []model.Session
	for _, s := range model.AllSessions {
		if c.windows[s].Contains(h) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []model.Session{model.SessionOff}
	}
	return out
}

// Quality returns the session quality multiplier for a pair whose
// optimal session set is optimal, given the sessions active at t:
// 1.5 when every active session is optimal, 1.0 when optimal and
// non-optimal sessions overlap, 0.5 when no active session is optimal,
// 0.0 when the market is off. A 0.0 forces Hold upstream.
func (c *Classifier) Quality(t time.Time, optimal []model.Session) float64 {
	active := c.Active(t)
	if len(active) == 1 && active[0] == model.SessionOff {
		return QualityOff
	}

	opt := make(map[model.Session]bool, len(optimal))
	for _, s := range optimal {
		opt[s] = true
	}

	matched, unmatched := 0, 0
	for _, s := range active {
		if opt[s] {
			matched++
		} else {
			unmatched++
		}
	}
	switch {
	case matched > 0 && unmatched == 0:
		return QualityOptimal
	case matched > 0:
		return QualityMixed
	default:
		return QualityPoor
	}
}
