package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/dashboard"
	"SignalDesk/internal/model"
	"SignalDesk/internal/prefs"
	"SignalDesk/internal/strategy"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &collector.MockFetcher{
		Coins: map[string]*model.CoinData{
			"bitcoin": {ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 65432.10, PriceChangePercentage24h: 2.5},
		},
		Top:  []model.CoinData{{ID: "bitcoin", Symbol: "btc"}},
		News: []model.NewsItem{{ID: "1", Title: "BTC rallies"}},
	}
	pm, err := prefs.NewManager("", model.TierMedium, nil)
	if err != nil {
		t.Fatalf("prefs: %v", err)
	}
	svc := dashboard.NewService(collector.NewCollector(f, f), strategy.NewEngine(strategy.DefaultParams(), nil), pm, nil)
	return NewRouter(svc)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetSignal(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"ticker alias", "/api/v1/signals/btc", http.StatusOK},
		{"explicit tier", "/api/v1/signals/bitcoin?tier=high", http.StatusOK},
		{"unknown tier", "/api/v1/signals/bitcoin?tier=yolo", http.StatusBadRequest},
		{"unknown coin", "/api/v1/signals/nosuchcoin", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, "")
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestGetSignalBody(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/api/v1/signals/btc", "")
	var view struct {
		Tier   string `json:"tier"`
		Signal struct {
			Direction string `json:"direction"`
			EntryLow  string `json:"entry_low"`
			StopLoss  string `json:"stop_loss"`
		} `json:"signal"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Tier != "MEDIUM" || view.Signal.Direction != "LONG" {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Signal.EntryLow != "65333.95" || view.Signal.StopLoss != "64777.78" {
		t.Errorf("unexpected levels: %+v", view.Signal)
	}
}

func TestEvaluate(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"valid", `{"price":0.5,"change_24h":-1.5,"risk_tier":"HIGH"}`, http.StatusOK},
		{"default tier", `{"price":100,"change_24h":1}`, http.StatusOK},
		{"negative price", `{"price":-1,"change_24h":1,"risk_tier":"LOW"}`, http.StatusBadRequest},
		{"empty series", `{"price":1,"change_24h":1,"price_series":[],"risk_tier":"LOW"}`, http.StatusBadRequest},
		{"lowercase tier", `{"price":100,"change_24h":1,"risk_tier":"low"}`, http.StatusOK},
		{"unknown tier", `{"price":1,"change_24h":1,"risk_tier":"YOLO"}`, http.StatusBadRequest},
		{"malformed", `{"price":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/signals/evaluate", tt.body)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestMarketsAndNews(t *testing.T) {
	r := newTestRouter(t)
	if w := do(r, http.MethodGet, "/api/v1/markets", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "bitcoin") {
		t.Errorf("markets: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/api/v1/news", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "BTC rallies") {
		t.Errorf("news: %d %s", w.Code, w.Body.String())
	}
}

func TestPrefsTier(t *testing.T) {
	r := newTestRouter(t)

	if w := do(r, http.MethodPut, "/api/v1/prefs/tier", `{"tier":"extreme"}`); w.Code != http.StatusOK {
		t.Fatalf("put: %d %s", w.Code, w.Body.String())
	}
	w := do(r, http.MethodGet, "/api/v1/prefs/tier", "")
	if !strings.Contains(w.Body.String(), "EXTREME") {
		t.Errorf("expected EXTREME, got %s", w.Body.String())
	}
	if w := do(r, http.MethodPut, "/api/v1/prefs/tier", `{"tier":"yolo"}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown tier status = %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/api/v1/prefs/tier", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing tier status = %d", w.Code)
	}
}

func TestEvaluateKeepsDisplayDigits(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{
			name: "sub-unit price",
			body: `{"price":0.5,"change_24h":-3,"risk_tier":"HIGH"}`,
			want: map[string]string{
				"entry_low": "0.49925", "entry_high": "0.50075", "stop_loss": "0.50750",
				"take_profit_1": "0.48875", "take_profit_2": "0.47750",
				"estimated_loss_pct": "15.00", "estimated_gain_pct": "22.50",
			},
		},
		{
			name: "trailing zeros",
			body: `{"price":100,"change_24h":3,"risk_tier":"low"}`,
			want: map[string]string{
				"entry_low": "99.85", "entry_high": "100.15", "stop_loss": "99.50",
				"take_profit_1": "100.50", "take_profit_2": "100.75",
				"estimated_loss_pct": "1.00", "estimated_gain_pct": "1.00",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/signals/evaluate", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
			}
			var resp struct {
				Signal map[string]any `json:"signal"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for field, want := range tt.want {
				if got, _ := resp.Signal[field].(string); got != want {
					t.Errorf("%s = %v, want %q", field, resp.Signal[field], want)
				}
			}
		})
	}
}

func TestGetSignalBadProviderRowServesPlaceholder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := &collector.MockFetcher{Coins: map[string]*model.CoinData{
		"deadcoin": {ID: "deadcoin", Symbol: "dead", Name: "Dead", CurrentPrice: 0},
	}}
	pm, err := prefs.NewManager("", model.TierMedium, nil)
	if err != nil {
		t.Fatalf("prefs: %v", err)
	}
	r := NewRouter(dashboard.NewService(collector.NewCollector(f, f), nil, pm, nil))

	w := do(r, http.MethodGet, "/api/v1/signals/deadcoin", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"placeholder":true`) {
		t.Errorf("expected placeholder view, got %s", w.Body.String())
	}
}
