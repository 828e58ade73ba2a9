package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/logger"
	"SignalDesk/internal/model"
	"SignalDesk/internal/prefs"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/strategy"
)

// SignalView is what renderers receive for one coin.
type SignalView struct {
	Coin        *model.CoinData      `json:"coin"`
	Tier        model.RiskTier       `json:"tier"`
	Overview    model.MarketOverview `json:"overview"`
	Signal      *model.TradeSignal   `json:"signal"`
	Placeholder bool                 `json:"placeholder"`
}

// Service ties market data, the signal engine and the caller's selection
// together for every rendering surface.
type Service struct {
	Collector *collector.Collector
	Engine    *strategy.Engine
	Prefs     *prefs.Manager
	Recorder  recorder.Recorder
}

// NewService creates a Service. A nil recorder is replaced by a no-op one.
func NewService(col *collector.Collector, engine *strategy.Engine, pm *prefs.Manager, rec recorder.Recorder) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if engine == nil {
		engine = strategy.NewEngine(strategy.DefaultParams(), nil)
	}
	return &Service{Collector: col, Engine: engine, Prefs: pm, Recorder: rec}
}

// ResolveTier parses tier, falling back to the selected tier when empty.
func (s *Service) ResolveTier(tier string) (model.RiskTier, error) {
	if strings.TrimSpace(tier) == "" {
		if s.Prefs == nil {
			return model.TierMedium, nil
		}
		return s.Prefs.Tier(), nil
	}
	return model.ParseRiskTier(tier)
}

// Signal fetches query and evaluates it at tier. An empty tier uses the
// selected one. Provider outages yield a placeholder view, not an error.
func (s *Service) Signal(ctx context.Context, query, tier string) (view *SignalView, err error) {
	ctx, span := logger.StartSpan(ctx, "dashboard.Signal")
	defer func() { logger.EndSpan(span, err) }()

	rt, err := s.ResolveTier(tier)
	if err != nil {
		return nil, err
	}

	obs, err := s.Collector.Observe(ctx, query, rt)
	if err != nil {
		return nil, err
	}
	s.record(ctx, obs)

	sig, err := s.Engine.Evaluate(obs.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", obs.CoinID, err)
	}

	logger.Debug(ctx, "signal evaluated",
		"coin", obs.CoinID, "tier", rt, "direction", sig.Direction,
		"oscillator", sig.OscillatorValue, "placeholder", obs.Placeholder)

	return &SignalView{
		Coin:        obs.Coin,
		Tier:        rt,
		Overview:    obs.Overview,
		Signal:      sig,
		Placeholder: obs.Placeholder,
	}, nil
}

// Evaluate runs the engine on a caller-supplied snapshot.
func (s *Service) Evaluate(ctx context.Context, snap model.MarketSnapshot) (sig *model.TradeSignal, err error) {
	_, span := logger.StartSpan(ctx, "dashboard.Evaluate")
	defer func() { logger.EndSpan(span, err) }()
	return s.Engine.Evaluate(snap)
}

// Markets returns the market listing. Never fails.
func (s *Service) Markets(ctx context.Context) []model.CoinData {
	return s.Collector.TopCoins(ctx)
}

// News returns recent headlines. Never fails.
func (s *Service) News(ctx context.Context) []model.NewsItem {
	return s.Collector.Headlines(ctx)
}

func (s *Service) record(ctx context.Context, obs *collector.Observation) {
	source := s.Collector.Fetcher.Name()
	if obs.FetchErr != nil {
		evt := &recorder.FetchFailureEvent{Source: source, CoinID: obs.CoinID, Error: obs.FetchErr.Error()}
		var se *collector.StatusError
		if errors.As(obs.FetchErr, &se) {
			evt.RateLimited = se.RateLimited()
		}
		if err := s.Recorder.RecordFetchFailure(evt); err != nil {
			logger.Error(ctx, "record fetch failure", "error", err)
		}
	}

	if err := s.Recorder.RecordObservation(&recorder.ObservationEvent{
		CoinID:      obs.CoinID,
		Symbol:      obs.Coin.Symbol,
		Source:      source,
		Placeholder: obs.Placeholder,
		Price:       obs.Snapshot.Price,
		Change24h:   obs.Snapshot.Change24h,
		Samples:     obs.Overview.SampleCount,
		High7d:      obs.Overview.High7d,
		Low7d:       obs.Overview.Low7d,
	}); err != nil {
		logger.Error(ctx, "record observation", "error", err)
	}
}
