package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"SignalDesk/internal/logger"
	"SignalDesk/internal/model"
)

// DefaultNewsURL is the CryptoCompare English news endpoint.
const DefaultNewsURL = "https://min-api.cryptocompare.com/data/v2/news/?lang=EN"

// NewsSource fetches recent headlines.
type NewsSource interface {
	FetchNews(ctx context.Context, limit int) ([]model.NewsItem, error)
}

// NewsFetcher implements NewsSource using the CryptoCompare news API.
type NewsFetcher struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewNewsFetcher creates a news fetcher with optional proxy support.
func NewNewsFetcher(newsURL, apiKey, proxyURL string) *NewsFetcher {
	if newsURL == "" {
		newsURL = DefaultNewsURL
	}
	return &NewsFetcher{URL: newsURL, APIKey: apiKey, Client: newHTTPClient(proxyURL)}
}

// ccArticle is the expected JSON shape of one CryptoCompare article.
type ccArticle struct {
	ID          string `json:"id"`
	PublishedOn int64  `json:"published_on"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Body        string `json:"body"`
	Categories  string `json:"categories"`
	SourceInfo  struct {
		Name string `json:"name"`
	} `json:"source_info"`
	Source string `json:"source"`
}

type ccNewsResponse struct {
	Type    int         `json:"Type"`
	Message string      `json:"Message"`
	Data    []ccArticle `json:"Data"`
}

// FetchNews returns up to limit articles, newest first.
func (f *NewsFetcher) FetchNews(ctx context.Context, limit int) (items []model.NewsItem, err error) {
	ctx, span := logger.StartSpan(ctx, "cryptocompare news")
	defer func() { logger.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Apikey "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch news: %w", &StatusError{Code: resp.StatusCode, Body: string(body)})
	}

	var payload ccNewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode news: %w", err)
	}

	items = make([]model.NewsItem, 0, len(payload.Data))
	for _, a := range payload.Data {
		source := a.SourceInfo.Name
		if source == "" {
			source = a.Source
		}
		items = append(items, model.NewsItem{
			ID:          a.ID,
			Title:       a.Title,
			URL:         a.URL,
			Source:      source,
			Body:        a.Body,
			Categories:  a.Categories,
			PublishedAt: time.Unix(a.PublishedOn, 0).UTC(),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].PublishedAt.After(items[j].PublishedAt) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
