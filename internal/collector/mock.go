package collector

import (
	"context"
	"math"
	"strings"
	"sync/atomic"

	"SignalDesk/internal/model"
)

// PlaceholderCoin returns the clearly marked stand-in row served when the
// provider is unavailable. The sparkline is deterministic.
func PlaceholderCoin(id string) *model.CoinData {
	symbol := "mock"
	if id == "bitcoin" {
		symbol = "btc"
	}
	return &model.CoinData{
		ID:                       id,
		Symbol:                   symbol,
		Name:                     "Bitcoin (Mock)",
		Image:                    "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
		CurrentPrice:             65432.10,
		MarketCap:                1200000000000,
		MarketCapRank:            1,
		TotalVolume:              35000000000,
		High24h:                  66000,
		Low24h:                   64000,
		PriceChangePercentage24h: 2.5,
		SparklineIn7d:            &model.Sparkline{Price: generateMockSparkline(65000, 168)},
	}
}

func generateMockSparkline(basePrice float64, count int) []float64 {
	prices := make([]float64, count)
	for i := range prices {
		prices[i] = basePrice + 1000*math.Sin(float64(i)*math.Pi/12)
	}
	return prices
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Coins map[string]*model.CoinData
	Top   []model.CoinData
	News  []model.NewsItem
	Err   error

	calls atomic.Int64
}

// Calls returns how many provider methods were invoked.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCoin(_ context.Context, id string) (*model.CoinData, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if c, ok := m.Coins[id]; ok {
		cp := *c
		return &cp, nil
	}
	if m.Coins != nil {
		return nil, ErrNotFound
	}
	return PlaceholderCoin(id), nil
}

func (m *MockFetcher) FetchTopCoins(_ context.Context, limit int) ([]model.CoinData, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && len(m.Top) > limit {
		return m.Top[:limit], nil
	}
	return m.Top, nil
}

func (m *MockFetcher) SearchCoin(_ context.Context, query string) (string, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return "", m.Err
	}
	q := strings.ToLower(query)
	for id, c := range m.Coins {
		if id == q || strings.EqualFold(c.Symbol, q) || strings.EqualFold(c.Name, q) {
			return id, nil
		}
	}
	if m.Coins == nil {
		return q, nil
	}
	return "", ErrNotFound
}

func (m *MockFetcher) FetchNews(_ context.Context, limit int) ([]model.NewsItem, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && len(m.News) > limit {
		return m.News[:limit], nil
	}
	return m.News, nil
}
