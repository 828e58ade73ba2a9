package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"SignalDesk/internal/logger"
	"SignalDesk/internal/model"
)

// DefaultCoinGeckoURL is the public CoinGecko v3 API.
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoFetcher implements Fetcher using the CoinGecko public API.
type CoinGeckoFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewCoinGeckoFetcher creates a fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGeckoFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// StatusError is returned for non-200 responses. 429 means rate limited.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.Code, e.Body)
}

// RateLimited reports whether the provider throttled the request.
func (e *StatusError) RateLimited() bool { return e.Code == http.StatusTooManyRequests }

func (f *CoinGeckoFetcher) get(ctx context.Context, path string, params url.Values, out any) error {
	ctx, span := logger.StartSpan(ctx, "coingecko "+path)
	var err error
	defer func() { logger.EndSpan(span, err) }()

	u := f.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	if f.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		err = fmt.Errorf("coingecko fetch: %w", err)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("coingecko read body: %w", err)
		return err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("coingecko %s: %w", path, &StatusError{Code: resp.StatusCode, Body: string(body)})
		return err
	}
	if err = json.Unmarshal(body, out); err != nil {
		err = fmt.Errorf("coingecko decode: %w", err)
		return err
	}
	return nil
}

func marketParams(perPage int, sparkline bool) url.Values {
	v := url.Values{}
	v.Set("vs_currency", "usd")
	v.Set("order", "market_cap_desc")
	v.Set("per_page", strconv.Itoa(perPage))
	v.Set("page", "1")
	v.Set("sparkline", strconv.FormatBool(sparkline))
	return v
}

// FetchCoin returns the market row for one coin, with its 7d sparkline.
func (f *CoinGeckoFetcher) FetchCoin(ctx context.Context, id string) (*model.CoinData, error) {
	params := marketParams(1, true)
	params.Set("ids", id)

	var rows []model.CoinData
	if err := f.get(ctx, "/coins/markets", params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("coingecko %q: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

// FetchTopCoins returns the top coins by market cap, without sparklines.
func (f *CoinGeckoFetcher) FetchTopCoins(ctx context.Context, limit int) ([]model.CoinData, error) {
	var rows []model.CoinData
	if err := f.get(ctx, "/coins/markets", marketParams(limit, false), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// searchResult is the subset of /search we use.
type searchResult struct {
	Coins []struct {
		ID            string `json:"id"`
		Symbol        string `json:"symbol"`
		Name          string `json:"name"`
		MarketCapRank int    `json:"market_cap_rank"`
	} `json:"coins"`
}

// SearchCoin resolves a free-text query to a coin id using the top match.
func (f *CoinGeckoFetcher) SearchCoin(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)

	var res searchResult
	if err := f.get(ctx, "/search", params, &res); err != nil {
		return "", err
	}
	if len(res.Coins) == 0 {
		return "", fmt.Errorf("search %q: %w", query, ErrNotFound)
	}
	return res.Coins[0].ID, nil
}
