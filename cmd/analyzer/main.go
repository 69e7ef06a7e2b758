// analyzer evaluates one batch at a fixed instant and prints the result
// as wire-format JSON. Useful for spot checks and backfills.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/signalengine/internal/api/twelvedata"
	"github.com/Alias1177/signalengine/internal/candle"
	"github.com/Alias1177/signalengine/internal/config"
	"github.com/Alias1177/signalengine/internal/engine"
)

func main() {
	asOfFlag := flag.String("as-of", "", "evaluation instant (RFC 3339, default now)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	asOf := time.Now().UTC()
	if *asOfFlag != "" {
		asOf, err = time.Parse(time.RFC3339, *asOfFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("parsing -as-of")
		}
		asOf = asOf.UTC()
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := eng.EvaluateBatch(ctx, asOf, pairs, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("batch evaluation failed")
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encoding result")
	}
	fmt.Println(string(out))
}
