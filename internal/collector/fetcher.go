package collector

import (
	"context"
	"errors"

	"SignalDesk/internal/model"
)

// ErrNotFound is returned when the provider has no coin for an id or query.
var ErrNotFound = errors.New("coin not found")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchCoin(ctx context.Context, id string) (*model.CoinData, error)
	FetchTopCoins(ctx context.Context, limit int) ([]model.CoinData, error)
	SearchCoin(ctx context.Context, query string) (string, error)
	Name() string
}
