package engine

import (
	"fmt"
	"sort"

	"github.com/Alias1177/signalengine/internal/model"
)

// normalizeConfig validates a configuration and fills the optional
// parts: zero indicator periods take the documented defaults, a missing
// session map takes the standard UTC windows, and the priority list is
// completed so it covers every configured pair.
func normalizeConfig(cfg model.EngineConfig) (model.EngineConfig, error) {
	if len(cfg.Pairs) == 0 {
		return cfg, &ConfigError{Field: "pairs", Reason: "at least one pair must be configured"}
	}

	pairs := make(map[model.Pair]model.PairConfig, len(cfg.Pairs))
	for pair, pc := range cfg.Pairs {
		if err := pair.Validate(); err != nil {
			return cfg, &ConfigError{Field: "pairs", Reason: err.Error()}
		}
		normalized, err := normalizePairConfig(pair, pc)
		if err != nil {
			return cfg, err
		}
		pairs[pair] = normalized
	}
	cfg.Pairs = pairs

	if cfg.Sessions == nil {
		cfg.Sessions = model.DefaultSessionMap()
	}
	if err := cfg.Sessions.Validate(); err != nil {
		return cfg, &ConfigError{Field: "sessions", Reason: err.Error()}
	}

	if err := validateRiskCaps(cfg.Risk); err != nil {
		return cfg, err
	}

	priority, err := normalizePriority(cfg.Priority, pairs)
	if err != nil {
		return cfg, err
	}
	cfg.Priority = priority
	return cfg, nil
}

func normalizePairConfig(pair model.Pair, pc model.PairConfig) (model.PairConfig, error) {
	if pc.EMAFast == 0 {
		pc.EMAFast = model.DefaultEMAFast
	}
	if pc.EMASlow == 0 {
		pc.EMASlow = model.DefaultEMASlow
	}
	if pc.RSIPeriod == 0 {
		pc.RSIPeriod = model.DefaultRSIPeriod
	}
	if pc.ATRPeriod == 0 {
		pc.ATRPeriod = model.DefaultATRPeriod
	}

	field := fmt.Sprintf("pairs[%s]", pair)
	if pc.EMAFast < 2 || pc.EMASlow < 2 || pc.RSIPeriod < 2 || pc.ATRPeriod < 2 {
		return pc, &ConfigError{Field: field, Reason: "indicator periods must be at least 2"}
	}
	if pc.EMAFast >= pc.EMASlow {
		return pc, &ConfigError{Field: field, Reason: fmt.Sprintf("ema_fast %d must be below ema_slow %d", pc.EMAFast, pc.EMASlow)}
	}
	if len(pc.OptimalSessions) == 0 {
		return pc, &ConfigError{Field: field, Reason: "optimal_sessions must not be empty"}
	}
	seen := make(map[model.Session]bool, len(pc.OptimalSessions))
	for _, s := range pc.OptimalSessions {
		if !knownSession(s) {
			return pc, &ConfigError{Field: field, Reason: fmt.Sprintf("unknown session %q", s)}
		}
		if seen[s] {
			return pc, &ConfigError{Field: field, Reason: fmt.Sprintf("duplicate session %q", s)}
		}
		seen[s] = true
	}
	return pc, nil
}

func knownSession(s model.Session) bool {
	for _, known := range model.AllSessions {
		if s == known {
			return true
		}
	}
	return false
}

func validateRiskCaps(r model.RiskCaps) error {
	if r.BaseRisk <= 0 || r.MinRisk <= 0 || r.MaxRisk <= 0 {
		return &ConfigError{Field: "risk", Reason: "risk fractions must be positive"}
	}
	if r.MinRisk > r.MaxRisk {
		return &ConfigError{Field: "risk", Reason: fmt.Sprintf("min_risk %.4f above max_risk %.4f", r.MinRisk, r.MaxRisk)}
	}
	if r.BaseRisk < r.MinRisk || r.BaseRisk > r.MaxRisk {
		return &ConfigError{Field: "risk", Reason: fmt.Sprintf("base_risk %.4f outside [%.4f, %.4f]", r.BaseRisk, r.MinRisk, r.MaxRisk)}
	}
	if r.PerCurrencyCap < r.MinRisk {
		return &ConfigError{Field: "risk", Reason: fmt.Sprintf("per_currency_cap %.4f below min_risk %.4f", r.PerCurrencyCap, r.MinRisk)}
	}
	for currency, cap := range r.CurrencyCaps {
		if cap < r.MinRisk {
			return &ConfigError{Field: "risk", Reason: fmt.Sprintf("cap for %s %.4f below min_risk %.4f", currency, cap, r.MinRisk)}
		}
	}
	if r.PortfolioHeatCap < 2*r.MinRisk {
		return &ConfigError{Field: "risk", Reason: fmt.Sprintf("portfolio_heat_cap %.4f cannot admit a single minimum trade", r.PortfolioHeatCap)}
	}
	return nil
}

// normalizePriority validates the configured ordering and appends any
// unlisted pairs alphabetically so the ordering is total.
func normalizePriority(priority []model.Pair, pairs map[model.Pair]model.PairConfig) ([]model.Pair, error) {
	if len(priority) == 0 {
		return model.DefaultPriority(pairs), nil
	}
	seen := make(map[model.Pair]bool, len(priority))
	out := make([]model.Pair, 0, len(pairs))
	for _, p := range priority {
		if _, ok := pairs[p]; !ok {
			return nil, &ConfigError{Field: "priority", Reason: fmt.Sprintf("pair %s is not configured", p)}
		}
		if seen[p] {
			return nil, &ConfigError{Field: "priority", Reason: fmt.Sprintf("pair %s listed twice", p)}
		}
		seen[p] = true
		out = append(out, p)
	}
	var rest []model.Pair
	for p := range pairs {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...), nil
}
