// Package twelvedata fetches H4 candles from the Twelve Data time series
// API. It is the live candle source behind the candle store.
package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alias1177/signalengine/internal/model"
)

const (
	baseURL        = "https://api.twelvedata.com/time_series"
	h4Interval     = "4h"
	requestTimeout = 30 * time.Second
	maxElapsed     = 30 * time.Second
)

// Client is a rate-limited HTTP client for the Twelve Data API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	logger     zerolog.Logger
}

// NewClient creates an API client with rate limiting.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5), // 5 requests per second
		apiKey:     apiKey,
		baseURL:    baseURL,
		logger:     log.With().Str("component", "twelvedata").Logger(),
	}
}

// timeSeriesResponse mirrors the API payload shape.
type timeSeriesResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   float64 `json:"volume,string,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}

// Candles fetches the last lookback H4 candles for a pair with open time
// <= asOf. Only the H4 timeframe is served; Daily and Weekly candles are
// derived downstream by the candle store.
func (c *Client) Candles(ctx context.Context, pair model.Pair, tf model.Timeframe, asOf time.Time, lookback int) ([]model.Candle, error) {
	if tf != model.TimeframeH4 {
		return nil, fmt.Errorf("twelvedata source serves H4 only, got %s", tf)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("symbol", pair.Symbol())
	q.Set("interval", h4Interval)
	// Over-fetch so trimming to asOf still leaves a full window.
	q.Set("outputsize", fmt.Sprintf("%d", lookback+12))
	q.Set("end_date", asOf.UTC().Format("2006-01-02 15:04:05"))
	q.Set("timezone", "UTC")
	q.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + q.Encode()

	c.logger.Debug().Str("pair", string(pair)).Int("lookback", lookback).Msg("fetching candles")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("non-200 status code: %d", resp.StatusCode)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if strings.Contains(string(body), `"status":"error"`) {
		c.logger.Error().Str("response", string(body)).Msg("Twelve Data API error")
		return nil, fmt.Errorf("Twelve Data API error: %s", string(body))
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(data.Values) == 0 {
		return nil, fmt.Errorf("empty data returned for %s", pair)
	}

	candles := make([]model.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := time.ParseInLocation("2006-01-02 15:04:05", v.Datetime, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parsing candle time %q: %w", v.Datetime, err)
		}
		if ts.After(asOf) {
			continue
		}
		candles = append(candles, model.Candle{
			Time:   ts,
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: v.Volume,
		})
	}

	// API returns newest first; the store wants chronological order.
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	if len(candles) > lookback {
		candles = candles[len(candles)-lookback:]
	}

	c.logger.Debug().Int("count", len(candles)).Msg("fetched candles")
	return candles, nil
}
