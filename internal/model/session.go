package model

import "fmt"

// Session is a named forex trading session.
type Session string

const (
	SessionSydney  Session = "Sydney"
	SessionTokyo   Session = "Tokyo"
	SessionLondon  Session = "London"
	SessionNewYork Session = "NewYork"
	SessionOff     Session = "Off"
)

// Sessions in classification order.
var AllSessions = []Session{SessionSydney, SessionTokyo, SessionLondon, SessionNewYork}

// SessionWindow is a half-open UTC hour range [Open, Close). Windows where
// Open > Close wrap past midnight.
type SessionWindow struct {
	Open  int `yaml:"open" validate:"min=0,max=23"`
	Close int `yaml:"close" validate:"min=0,max=24"`
}

// Contains reports whether UTC hour h falls inside the window.
func (w SessionWindow) Contains(h int) bool {
	if w.Open <= w.Close {
		return h >= w.Open && h < w.Close
	}
	return h >= w.Open || h < w.Close
}

// Validate rejects degenerate windows.
func (w SessionWindow) Validate() error {
	if w.Open < 0 || w.Open > 23 || w.Close < 0 || w.Close > 24 {
		return fmt.Errorf("session window hours out of range: open=%d close=%d", w.Open, w.Close)
	}
	if w.Open == w.Close {
		return fmt.Errorf("empty session window at hour %d", w.Open)
	}
	return nil
}

// SessionMap holds the UTC windows for the four named sessions.
type SessionMap map[Session]SessionWindow

// DefaultSessionMap returns the standard session windows in UTC.
func DefaultSessionMap() SessionMap {
	return SessionMap{
		SessionSydney:  {Open: 21, Close: 6},
		SessionTokyo:   {Open: 23, Close: 8},
		SessionLondon:  {Open: 7, Close: 16},
		SessionNewYork: {Open: 12, Close: 21},
	}
}

// Validate checks that all four sessions are defined and well formed.
func (m SessionMap) Validate() error {
	for _, s := range AllSessions {
		w, ok := m[s]
		if !ok {
			return fmt.Errorf("session map missing %s", s)
		}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("session %s: %w", s, err)
		}
	}
	return nil
}
