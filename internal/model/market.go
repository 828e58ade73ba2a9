package model

import (
	"math"
	"time"
)

// CoinData is a single row of the market-data provider's coin listing.
type CoinData struct {
	ID                       string     `json:"id"`
	Symbol                   string     `json:"symbol"`
	Name                     string     `json:"name"`
	Image                    string     `json:"image"`
	CurrentPrice             float64    `json:"current_price"`
	MarketCap                float64    `json:"market_cap"`
	MarketCapRank            int        `json:"market_cap_rank"`
	TotalVolume              float64    `json:"total_volume"`
	High24h                  float64    `json:"high_24h"`
	Low24h                   float64    `json:"low_24h"`
	PriceChangePercentage24h float64    `json:"price_change_percentage_24h"`
	SparklineIn7d            *Sparkline `json:"sparkline_in_7d,omitempty"`
}

// Sparkline holds hourly prices for the trailing seven days, oldest first.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// Series returns the usable sparkline prices, or nil when none were
// supplied. Gaps the provider sends as null decode to 0 and are dropped.
func (c *CoinData) Series() []float64 {
	if c.SparklineIn7d == nil {
		return nil
	}
	var out []float64
	for _, p := range c.SparklineIn7d.Price {
		if p > 0 && !math.IsInf(p, 0) {
			out = append(out, p)
		}
	}
	return out
}

// UsablePrice reports whether the current price can be evaluated.
func (c *CoinData) UsablePrice() bool {
	return c.CurrentPrice > 0 && !math.IsInf(c.CurrentPrice, 0)
}

// MarketSnapshot is the input of one signal evaluation.
type MarketSnapshot struct {
	Price       float64   `json:"price"`
	Change24h   float64   `json:"change_24h"`
	PriceSeries []float64 `json:"price_series,omitempty"`
	RiskTier    RiskTier  `json:"risk_tier"`
}

// SnapshotFromCoin builds an evaluation input from a provider row.
func SnapshotFromCoin(c *CoinData, tier RiskTier) MarketSnapshot {
	return MarketSnapshot{
		Price:       c.CurrentPrice,
		Change24h:   c.PriceChangePercentage24h,
		PriceSeries: c.Series(),
		RiskTier:    tier,
	}
}

// MarketOverview holds descriptive statistics derived from the 7d sparkline.
type MarketOverview struct {
	SMA7d       float64 `json:"sma_7d"`
	High7d      float64 `json:"high_7d"`
	Low7d       float64 `json:"low_7d"`
	Position7d  float64 `json:"position_7d"` // 0.0 ~ 1.0
	SampleCount int     `json:"sample_count"`
}

// NewsItem is a headline from the news feed.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Body        string    `json:"body,omitempty"`
	Categories  string    `json:"categories,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
