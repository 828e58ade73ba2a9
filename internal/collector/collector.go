package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/logger"
	"SignalDesk/internal/model"
)

// Observation is one market-data read prepared for evaluation.
type Observation struct {
	CoinID      string               `json:"coin_id"`
	Coin        *model.CoinData      `json:"coin"`
	Snapshot    model.MarketSnapshot `json:"snapshot"`
	Overview    model.MarketOverview `json:"overview"`
	Placeholder bool                 `json:"placeholder"`
	FetchErr    error                `json:"-"`
	FetchedAt   time.Time            `json:"fetched_at"`
}

// Collector orchestrates data fetching and derives the evaluation input.
// Provider failures never escape as errors: market data degrades to a
// placeholder row, lists degrade to empty.
type Collector struct {
	Fetcher   Fetcher
	News      NewsSource
	TopLimit  int
	NewsLimit int
	Aliases   map[string]string // ticker -> provider id
	now       func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, news NewsSource) *Collector {
	return &Collector{
		Fetcher:   fetcher,
		News:      news,
		TopLimit:  50,
		NewsLimit: 5,
		Aliases: map[string]string{
			"btc":  "bitcoin",
			"eth":  "ethereum",
			"sol":  "solana",
			"bnb":  "binancecoin",
			"xrp":  "ripple",
			"doge": "dogecoin",
			"ada":  "cardano",
		},
		now: time.Now,
	}
}

// Resolve maps a ticker, name or id to a provider coin id.
func (c *Collector) Resolve(ctx context.Context, query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", fmt.Errorf("empty coin query: %w", ErrNotFound)
	}
	if id, ok := c.Aliases[q]; ok {
		return id, nil
	}
	id, err := c.Fetcher.SearchCoin(ctx, q)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		// Search is unavailable; treat the query as an id and let the
		// market fetch decide.
		logger.Warn(ctx, "coin search failed, using query as id", "query", q, "error", err)
		return q, nil
	}
	return id, nil
}

// Observe fetches one coin and prepares a snapshot at the given tier.
// Only ErrNotFound is returned as an error.
func (c *Collector) Observe(ctx context.Context, query string, tier model.RiskTier) (*Observation, error) {
	id, err := c.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	obs := &Observation{CoinID: id, FetchedAt: c.now()}
	coin, err := c.Fetcher.FetchCoin(ctx, id)
	if err == nil && !coin.UsablePrice() {
		err = fmt.Errorf("%s returned unusable price %v for %s", c.Fetcher.Name(), coin.CurrentPrice, id)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, err
	case err != nil:
		logger.Warn(ctx, "market fetch failed, serving placeholder", "coin", id, "source", c.Fetcher.Name(), "error", err)
		coin = PlaceholderCoin(id)
		obs.Placeholder = true
		obs.FetchErr = err
	}

	obs.Coin = coin
	obs.Snapshot = model.SnapshotFromCoin(coin, tier)
	obs.Overview = Overview(coin)
	return obs, nil
}

// Overview derives the 7d statistics for a coin. Missing data falls back
// to the current price.
func Overview(coin *model.CoinData) model.MarketOverview {
	series := coin.Series()
	price := coin.CurrentPrice
	ov := model.MarketOverview{SampleCount: len(series), SMA7d: price, High7d: price, Low7d: price, Position7d: 0.5}
	if len(series) == 0 {
		return ov
	}

	if sma, err := calculator.CalculateSMA(series, len(series)); err == nil {
		ov.SMA7d = sma
	}
	if h, l, err := calculator.SeriesRange(series); err == nil {
		ov.High7d = h
		ov.Low7d = l
	}
	if pos, err := calculator.RangePosition(price, ov.High7d, ov.Low7d); err == nil {
		ov.Position7d = pos
	}
	return ov
}

// TopCoins returns the market listing, or an empty list on failure.
func (c *Collector) TopCoins(ctx context.Context) []model.CoinData {
	coins, err := c.Fetcher.FetchTopCoins(ctx, c.TopLimit)
	if err != nil {
		logger.Warn(ctx, "top coins fetch failed", "source", c.Fetcher.Name(), "error", err)
		return []model.CoinData{}
	}
	return coins
}

// Headlines returns recent news, or an empty list on failure.
func (c *Collector) Headlines(ctx context.Context) []model.NewsItem {
	if c.News == nil {
		return []model.NewsItem{}
	}
	items, err := c.News.FetchNews(ctx, c.NewsLimit)
	if err != nil {
		logger.Warn(ctx, "news fetch failed", "error", err)
		return []model.NewsItem{}
	}
	return items
}
