package model

import "sort"

// PairConfig holds the per-pair tuning knobs.
type PairConfig struct {
	EMAFast         int       `yaml:"ema_fast" validate:"gt=1"`
	EMASlow         int       `yaml:"ema_slow" validate:"gt=1"`
	RSIPeriod       int       `yaml:"rsi_period" validate:"gt=1"`
	ATRPeriod       int       `yaml:"atr_period" validate:"gt=1"`
	OptimalSessions []Session `yaml:"optimal_sessions" validate:"min=1"`
}

// RiskCaps bound position sizing and cross-pair exposure.
type RiskCaps struct {
	BaseRisk         float64            `yaml:"base_risk" validate:"gt=0"`
	MinRisk          float64            `yaml:"min_risk" validate:"gt=0"`
	MaxRisk          float64            `yaml:"max_risk" validate:"gt=0"`
	PerCurrencyCap   float64            `yaml:"per_currency_cap" validate:"gt=0"`
	CurrencyCaps     map[string]float64 `yaml:"currency_caps"`
	PortfolioHeatCap float64            `yaml:"portfolio_heat_cap" validate:"gt=0"`
}

// CapFor returns the exposure cap for one currency, falling back to the
// default per-currency cap.
func (r RiskCaps) CapFor(currency string) float64 {
	if cap, ok := r.CurrencyCaps[currency]; ok {
		return cap
	}
	return r.PerCurrencyCap
}

// EngineConfig is the full enumerated configuration applied between
// batches. Unknown keys in the source document are a configuration error;
// the loader enforces strict decoding.
type EngineConfig struct {
	Pairs    map[Pair]PairConfig `yaml:"pairs" validate:"min=1"`
	Priority []Pair              `yaml:"priority"`
	Sessions SessionMap          `yaml:"sessions"`
	Risk     RiskCaps            `yaml:"risk"`
}

// Default periods applied when a pair config leaves them zero.
const (
	DefaultEMAFast   = 20
	DefaultEMASlow   = 50
	DefaultRSIPeriod = 14
	DefaultATRPeriod = 14
)

// DefaultRiskCaps returns the working defaults: 1.5% base risk per trade,
// sizes clamped to [0.5%, 3%], 6% per-currency cap with 4.5% for EUR and
// GBP, and a 15% portfolio heat cap.
func DefaultRiskCaps() RiskCaps {
	return RiskCaps{
		BaseRisk:       0.015,
		MinRisk:        0.005,
		MaxRisk:        0.03,
		PerCurrencyCap: 0.045,
		CurrencyCaps: map[string]float64{
			"USD": 0.06,
			"JPY": 0.06,
			"EUR": 0.045,
			"GBP": 0.045,
		},
		PortfolioHeatCap: 0.15,
	}
}

// DefaultPairConfigs returns the supported pair set with optimal sessions
// chosen by where each pair's currencies actually trade.
func DefaultPairConfigs() map[Pair]PairConfig {
	base := func(sessions ...Session) PairConfig {
		return PairConfig{
			EMAFast:         DefaultEMAFast,
			EMASlow:         DefaultEMASlow,
			RSIPeriod:       DefaultRSIPeriod,
			ATRPeriod:       DefaultATRPeriod,
			OptimalSessions: sessions,
		}
	}
	return map[Pair]PairConfig{
		"USD_JPY": base(SessionTokyo, SessionNewYork),
		"GBP_JPY": base(SessionTokyo, SessionLondon),
		"EUR_JPY": base(SessionTokyo, SessionLondon),
		"AUD_JPY": base(SessionSydney, SessionTokyo),
		"EUR_USD": base(SessionLondon, SessionNewYork),
		"GBP_USD": base(SessionLondon, SessionNewYork),
		"AUD_USD": base(SessionSydney, SessionNewYork),
		"NZD_USD": base(SessionSydney, SessionNewYork),
		"USD_CHF": base(SessionLondon, SessionNewYork),
		"USD_CAD": base(SessionLondon, SessionNewYork),
		"EUR_GBP": base(SessionLondon),
	}
}

// DefaultPriority orders pairs so that exposure outcomes are
// deterministic: the JPY majors first, then everything else
// alphabetical.
func DefaultPriority(pairs map[Pair]PairConfig) []Pair {
	head := []Pair{"USD_JPY", "GBP_JPY", "EUR_JPY", "AUD_JPY"}
	seen := make(map[Pair]bool, len(head))
	var out []Pair
	for _, p := range head {
		if _, ok := pairs[p]; ok {
			out = append(out, p)
			seen[p] = true
		}
	}
	var rest []Pair
	for p := range pairs {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

// DefaultEngineConfig assembles the complete default configuration.
func DefaultEngineConfig() EngineConfig {
	pairs := DefaultPairConfigs()
	return EngineConfig{
		Pairs:    pairs,
		Priority: DefaultPriority(pairs),
		Sessions: DefaultSessionMap(),
		Risk:     DefaultRiskCaps(),
	}
}
