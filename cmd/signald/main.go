// signald runs batch signal evaluation on a timer and publishes the
// results to the configured sinks.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/signalengine/internal/api/twelvedata"
	"github.com/Alias1177/signalengine/internal/candle"
	"github.com/Alias1177/signalengine/internal/config"
	"github.com/Alias1177/signalengine/internal/engine"
	"github.com/Alias1177/signalengine/internal/metrics"
	"github.com/Alias1177/signalengine/internal/model"
	"github.com/Alias1177/signalengine/internal/notify"
	"github.com/Alias1177/signalengine/internal/store"
)

// batchTimeout bounds one batch; pairs not reached in time are skipped.
const batchTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	engineCfg, err := config.LoadEngineConfig(cfg.EngineFile)
	if err != nil {
		log.Fatal().Err(err).Msg("loading engine configuration")
	}

	src := twelvedata.NewClient(cfg.TwelveAPIKey)
	eng := engine.New(candle.NewStore(src))
	if err := eng.Configure(engineCfg); err != nil {
		log.Fatal().Err(err).Msg("configuring engine")
	}

	pairs := cfg.Pairs
	if len(pairs) == 0 {
		pairs = eng.Config().Priority
	}

	var notifiers []notify.Notifier
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("initializing telegram notifier")
		}
		notifiers = append(notifiers, tg)
	}

	var journal *store.Journal
	if cfg.DBEnabled {
		journal, err = store.New(cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to signal journal")
		}
		defer journal.Close()
	}

	m := metrics.New()
	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
		if err := http.ListenAndServe(cfg.MetricsAddr, m.Handler()); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := &runner{
		eng:       eng,
		pairs:     pairs,
		notifiers: notifiers,
		journal:   journal,
		metrics:   m,
		carry:     model.Exposure{},
	}

	log.Info().
		Int("pairs", len(pairs)).
		Dur("interval", cfg.BatchInterval).
		Msg("signal daemon started")

	runner.runOnce(ctx)
	ticker := time.NewTicker(cfg.BatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
			runner.runOnce(ctx)
		}
	}
}

type runner struct {
	eng       *engine.Engine
	pairs     []model.Pair
	notifiers []notify.Notifier
	journal   *store.Journal
	metrics   *metrics.Metrics

	carry    model.Exposure
	tradeDay time.Time
}

// runOnce evaluates one batch at the current instant. Exposure carries
// over between batches and resets on the 21:00 UTC trading day rollover.
func (r *runner) runOnce(ctx context.Context) {
	asOf := time.Now().UTC()

	day := tradingDayOf(asOf)
	if !day.Equal(r.tradeDay) {
		r.tradeDay = day
		r.carry = model.Exposure{}
	}

	batchCtx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.eng.EvaluateBatch(batchCtx, asOf, r.pairs, r.carry)
	if err != nil {
		log.Error().Err(err).Msg("batch evaluation failed")
		if res != nil {
			r.metrics.ObserveBatch(res, time.Since(start))
		}
		return
	}
	r.metrics.ObserveBatch(res, time.Since(start))
	r.carry = res.Ledger

	log.Info().
		Str("status", string(res.Status)).
		Int("signals", len(res.Signals)).
		Int("skipped", len(res.Skipped)).
		Float64("heat", res.Ledger.Heat()).
		Msg("batch complete")

	for _, sig := range res.Signals {
		if r.journal != nil {
			if err := r.journal.SaveSignal(ctx, sig); err != nil {
				log.Error().Err(err).Str("pair", string(sig.Pair)).Msg("journaling signal failed")
			}
		}
		for _, n := range r.notifiers {
			if err := n.Publish(ctx, sig); err != nil {
				r.metrics.PublishFailures.Inc()
				log.Error().Err(err).Str("pair", string(sig.Pair)).Msg("publishing signal failed")
			}
		}
	}
}

// tradingDayOf aligns t to its 21:00 UTC exchange-day open.
func tradingDayOf(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 21, 0, 0, 0, time.UTC)
	if t.Hour() < 21 {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
