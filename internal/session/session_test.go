package session

import (
	"reflect"
	"testing"
	"time"

	"github.com/Alias1177/signalengine/internal/model"
)

func at(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
}

var (
	monday   = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	friday   = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	sunday   = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
)

func TestIsWeekend(t *testing.T) {
	cases := []struct {
		t    time.Time
		want bool
	}{
		{at(friday, 20), false},
		{at(saturday, 21), false},
		{at(saturday, 22), true},
		{at(sunday, 0), true},
		{at(sunday, 21), true},
		{at(sunday, 22), false},
		{at(monday, 13), false},
	}
	for _, c := range cases {
		if got := IsWeekend(c.t); got != c.want {
			t.Errorf("IsWeekend(%s) = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestActive(t *testing.T) {
	cls := NewClassifier(model.DefaultSessionMap())
	cases := []struct {
		name string
		t    time.Time
		want []model.Session
	}{
		{"london ny overlap", at(monday, 13), []model.Session{model.SessionLondon, model.SessionNewYork}},
		{"sydney tokyo overlap", at(monday, 2), []model.Session{model.SessionSydney, model.SessionTokyo}},
		{"tokyo london overlap", at(monday, 7), []model.Session{model.SessionTokyo, model.SessionLondon}},
		{"sydney alone", at(monday, 22), []model.Session{model.SessionSydney}},
		{"london close boundary", at(friday, 16), []model.Session{model.SessionNewYork}},
		{"weekend gap", at(sunday, 10), []model.Session{model.SessionOff}},
		{"sunday reopen", at(sunday, 22), []model.Session{model.SessionSydney}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := cls.Active(c.t); !reflect.DeepEqual(got, c.want) {
				t.Errorf("Active(%s) = %v, want %v", c.t, got, c.want)
			}
		})
	}
}

func TestQuality(t *testing.T) {
	cls := NewClassifier(model.DefaultSessionMap())
	cases := []struct {
		name    string
		t       time.Time
		optimal []model.Session
		want    float64
	}{
		{"all active optimal", at(monday, 13), []model.Session{model.SessionLondon, model.SessionNewYork}, QualityOptimal},
		{"mixed overlap", at(monday, 13), []model.Session{model.SessionTokyo, model.SessionNewYork}, QualityMixed},
		{"no optimal active", at(monday, 13), []model.Session{model.SessionSydney, model.SessionTokyo}, QualityPoor},
		{"weekend off", at(sunday, 10), []model.Session{model.SessionLondon}, QualityOff},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := cls.Quality(c.t, c.optimal); got != c.want {
				t.Errorf("Quality = %v, want %v", got, c.want)
			}
		})
	}
}

// Widening the optimal set never lowers quality at any hour.
func TestQualityMonotone(t *testing.T) {
	cls := NewClassifier(model.DefaultSessionMap())
	base := []model.Session{model.SessionTokyo}
	for h := 0; h < 24; h++ {
		moment := at(monday, h)
		wider := append([]model.Session{model.SessionLondon, model.SessionNewYork}, base...)
		if q, qw := cls.Quality(moment, base), cls.Quality(moment, wider); qw < q {
			t.Errorf("hour %d: quality dropped from %v to %v when widening optimal set", h, q, qw)
		}
	}
}
