package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Alias1177/signalengine/internal/model"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadEngineConfig(t *testing.T) {
	path := writeConfig(t, `
pairs:
  USD_JPY:
    ema_fast: 10
    ema_slow: 30
    rsi_period: 14
    atr_period: 14
    optimal_sessions: [Tokyo, NewYork]
priority: [USD_JPY]
risk:
  base_risk: 0.01
  min_risk: 0.005
  max_risk: 0.02
  per_currency_cap: 0.04
  portfolio_heat_cap: 0.12
`)
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}

	pc, ok := cfg.Pairs["USD_JPY"]
	if !ok {
		t.Fatalf("USD_JPY missing from %v", cfg.Pairs)
	}
	if pc.EMAFast != 10 || pc.EMASlow != 30 {
		t.Errorf("EMA periods = (%d, %d), want (10, 30)", pc.EMAFast, pc.EMASlow)
	}
	wantSessions := []model.Session{model.SessionTokyo, model.SessionNewYork}
	if !reflect.DeepEqual(pc.OptimalSessions, wantSessions) {
		t.Errorf("optimal sessions = %v, want %v", pc.OptimalSessions, wantSessions)
	}
	if !reflect.DeepEqual(cfg.Priority, []model.Pair{"USD_JPY"}) {
		t.Errorf("priority = %v", cfg.Priority)
	}
	if cfg.Risk.BaseRisk != 0.01 || cfg.Risk.PortfolioHeatCap != 0.12 {
		t.Errorf("risk = %+v", cfg.Risk)
	}
}

func TestLoadEngineConfigDefaults(t *testing.T) {
	cfg, err := LoadEngineConfig("")
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, model.DefaultEngineConfig()) {
		t.Error("empty path should yield the default configuration")
	}

	// Risk section is optional and falls back to the defaults.
	path := writeConfig(t, `
pairs:
  USD_JPY:
    ema_fast: 10
    ema_slow: 30
    rsi_period: 14
    atr_period: 14
    optimal_sessions: [Tokyo]
`)
	cfg, err = LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg.Risk, model.DefaultRiskCaps()) {
		t.Errorf("risk = %+v, want defaults", cfg.Risk)
	}
}

func TestLoadEngineConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
pairs:
  USD_JPY:
    ema_fast: 10
    ema_slow: 30
    rsi_period: 14
    atr_period: 14
    optimal_sessions: [Tokyo]
lookback_days: 90
`)
	if _, err := LoadEngineConfig(path); err == nil {
		t.Fatal("expected error for unknown top-level key")
	}

	path = writeConfig(t, `
pairs:
  USD_JPY:
    ema_fast: 10
    ema_slow: 30
    rsi_period: 14
    atr_period: 14
    optimal_sessions: [Tokyo]
    macd_period: 12
`)
	if _, err := LoadEngineConfig(path); err == nil {
		t.Fatal("expected error for unknown pair key")
	}
}

func TestLoadEngineConfigValidation(t *testing.T) {
	path := writeConfig(t, `
pairs:
  USD_JPY:
    ema_fast: 1
    ema_slow: 30
    rsi_period: 14
    atr_period: 14
    optimal_sessions: [Tokyo]
`)
	if _, err := LoadEngineConfig(path); err == nil {
		t.Fatal("expected validation error for ema_fast below 2")
	}

	if _, err := LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
