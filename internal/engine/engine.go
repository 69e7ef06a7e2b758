// Package engine composes indicator, session and confluence inputs into
// trading signals, sizes positions against the exposure ledger and
// evaluates batches of pairs in deterministic priority order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/signalengine/internal/candle"
	"github.com/Alias1177/signalengine/internal/indicator"
	"github.com/Alias1177/signalengine/internal/model"
	"github.com/Alias1177/signalengine/internal/session"
)

// CandleStore is the read-only candle access the engine needs.
type CandleStore interface {
	Candles(ctx context.Context, pair model.Pair, tf model.Timeframe, asOf time.Time, lookback int) ([]model.Candle, error)
}

// Engine evaluates batches of pairs into signals. Batches run under a
// mutex: pairs inside a batch share the exposure ledger and must be
// processed sequentially, and a host embedding the engine in a
// concurrent environment gets batch serialization for free.
type Engine struct {
	store  CandleStore
	cache  *indicator.Cache
	logger zerolog.Logger

	mu         sync.Mutex
	cfg        model.EngineConfig
	classifier *session.Classifier
}

// New builds an engine over a candle store with the default
// configuration.
func New(store CandleStore) *Engine {
	cfg := model.DefaultEngineConfig()
	return &Engine{
		store:      store,
		cache:      indicator.NewCache(),
		logger:     log.With().Str("component", "engine").Logger(),
		cfg:        cfg,
		classifier: session.NewClassifier(cfg.Sessions),
	}
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() model.EngineConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Configure validates and applies a new configuration between batches.
// An invalid configuration is refused with a ConfigError and the
// previous one stays active. Re-applying the active configuration is a
// no-op on behavior.
func (e *Engine) Configure(cfg model.EngineConfig) error {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = normalized
	e.classifier = session.NewClassifier(normalized.Sessions)
	e.cache.Reset()
	return nil
}

// EvaluateBatch evaluates the requested pairs at asOf, in configured
// priority order, threading the exposure ledger so earlier pairs'
// commitments bound later pairs' sizes. The carry exposure seeds the
// ledger; its reset policy belongs to the caller. A deadline on ctx
// bounds the batch: pairs not reached in time are recorded as skipped
// with a Timeout reason and already-emitted signals stay valid.
func (e *Engine) EvaluateBatch(ctx context.Context, asOf time.Time, pairs []model.Pair, carry model.Exposure) (*model.BatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, err := e.orderPairs(pairs)
	if err != nil {
		return nil, err
	}

	// Candles may have rolled over since the previous batch; start clean.
	e.cache.Reset()

	ledger := NewLedger(carry)
	res := &model.BatchResult{AsOf: asOf, Status: model.BatchOk}

	for _, pair := range order {
		if ctx.Err() != nil {
			res.Skipped = append(res.Skipped, model.SkippedPair{Pair: pair, Reason: model.ReasonTimeout})
			res.Status = model.BatchPartial
			continue
		}

		sig, err := e.evaluatePair(ctx, pair, asOf, ledger)
		switch {
		case err == nil:
			res.Signals = append(res.Signals, sig)
			e.logger.Info().
				Str("pair", string(pair)).
				Str("direction", string(sig.Direction)).
				Float64("strength", sig.Strength).
				Float64("position", sig.PositionFraction).
				Strs("reasons", sig.Reasons).
				Msg("signal emitted")
		case errors.Is(err, candle.ErrDataUnavailable):
			e.logger.Warn().Str("pair", string(pair)).Err(err).Msg("candle window unavailable")
			res.Skipped = append(res.Skipped, model.SkippedPair{Pair: pair, Reason: model.ReasonDataUnavailable})
			res.Status = model.BatchPartial
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			res.Skipped = append(res.Skipped, model.SkippedPair{Pair: pair, Reason: model.ReasonTimeout})
			res.Status = model.BatchPartial
		default:
			var inv *InvariantError
			if errors.As(err, &inv) {
				e.logger.Error().Err(err).Msg("aborting batch")
				res.Status = model.BatchAborted
				res.Ledger = inv.Ledger
				return res, err
			}
			return nil, fmt.Errorf("evaluating %s: %w", pair, err)
		}
	}

	res.Ledger = ledger.Snapshot()
	return res, nil
}

// orderPairs arranges the requested pairs by configured priority. Every
// requested pair must be configured.
func (e *Engine) orderPairs(pairs []model.Pair) ([]model.Pair, error) {
	requested := make(map[model.Pair]bool, len(pairs))
	for _, p := range pairs {
		if _, ok := e.cfg.Pairs[p]; !ok {
			return nil, &ConfigError{Field: "pairs", Reason: fmt.Sprintf("pair %s is not configured", p)}
		}
		requested[p] = true
	}
	out := make([]model.Pair, 0, len(pairs))
	for _, p := range e.cfg.Priority {
		if requested[p] {
			out = append(out, p)
			delete(requested, p)
		}
	}
	// Priority covers all configured pairs after normalization, so
	// nothing should remain.
	for _, p := range pairs {
		if requested[p] {
			out = append(out, p)
			delete(requested, p)
		}
	}
	return out, nil
}
