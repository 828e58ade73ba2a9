package strategy

import (
	"fmt"
	"math"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/model"
)

// Engine turns a market snapshot into a trade signal. It holds only
// read-only configuration and is safe for concurrent use.
type Engine struct {
	params   Params
	profiles map[model.RiskTier]TierProfile
}

// NewEngine creates an Engine. Zero-valued params fall back to defaults and
// a nil profile table falls back to DefaultProfiles.
func NewEngine(params Params, profiles map[model.RiskTier]TierProfile) *Engine {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Engine{params: params.WithDefaults(), profiles: profiles}
}

var defaultEngine = NewEngine(DefaultParams(), nil)

// Evaluate runs the default engine.
func Evaluate(snap model.MarketSnapshot) (*model.TradeSignal, error) {
	return defaultEngine.Evaluate(snap)
}

// Params returns the engine thresholds.
func (e *Engine) Params() Params { return e.params }

// Profile returns the profile configured for tier.
func (e *Engine) Profile(tier model.RiskTier) (TierProfile, bool) {
	p, ok := e.profiles[tier]
	return p, ok
}

// Evaluate computes the trade signal for snap.
func (e *Engine) Evaluate(snap model.MarketSnapshot) (*model.TradeSignal, error) {
	if err := e.Validate(snap); err != nil {
		return nil, err
	}
	profile := e.profiles[snap.RiskTier]
	price := snap.Price

	// Step 1: oscillator
	osc, err := calculator.CalculateRSI(snap.PriceSeries, e.params.OscillatorWindow)
	if err != nil {
		return nil, fmt.Errorf("oscillator: %w", err)
	}
	status := e.ClassifyOscillator(osc)

	// Step 2: direction
	volatility := math.Abs(snap.Change24h)
	direction := e.direction(snap.Change24h, volatility, status, profile)

	// Step 3: leverage
	leverage := profile.LeverageBase
	if volatility < e.params.CalmThreshold {
		leverage = profile.LeverageMax
	}

	// Step 4: entry zone, low is always below high
	entryLow := price * (1 - profile.EntryBufferPct)
	entryHigh := price * (1 + profile.EntryBufferPct)

	// Step 5: stop loss
	long := direction.IsLong()
	var stopLoss float64
	if long {
		stopLoss = price * (1 - profile.StopDistancePct)
	} else {
		stopLoss = price * (1 + profile.StopDistancePct)
	}

	// Step 6: targets
	riskDistance := math.Abs(price - stopLoss)
	tp1 := target(price, riskDistance, profile.FirstTargetMultiple, long)
	tp2 := target(price, riskDistance, profile.TakeProfitMultiple, long)

	// Step 7: leveraged magnitudes
	lossPct := riskDistance / price * 100 * leverage
	gainPct := math.Abs(tp1-price) / price * 100 * leverage

	// Step 8: display precision
	places := e.PricePrecision(price)
	pct := e.params.PercentPrecision

	return &model.TradeSignal{
		Direction:        direction,
		Leverage:         leverage,
		LeverageMode:     profile.LeverageMode,
		EntryLow:         RoundPrice(entryLow, places),
		EntryHigh:        RoundPrice(entryHigh, places),
		StopLoss:         RoundPrice(stopLoss, places),
		TakeProfit1:      RoundPrice(tp1, places),
		TakeProfit2:      RoundPrice(tp2, places),
		RiskRewardLabel:  fmt.Sprintf("1:%.1f", profile.TakeProfitMultiple),
		EstimatedLossPct: RoundPrice(lossPct, pct),
		EstimatedGainPct: RoundPrice(gainPct, pct),
		OscillatorValue:  osc,
		OscillatorStatus: status,
		TimeframeLabel:   profile.Timeframe,
		TierLabel:        profile.Label,
		Precision:        places,
		PercentPrecision: pct,
	}, nil
}

// ClassifyOscillator maps an oscillator reading to its status.
func (e *Engine) ClassifyOscillator(value float64) model.OscillatorStatus {
	switch {
	case value > e.params.OverboughtAbove:
		return model.OscillatorOverbought
	case value < e.params.OversoldBelow:
		return model.OscillatorOversold
	default:
		return model.OscillatorNeutral
	}
}

// direction applies the base call, the reversal override and the flatness
// filter, in that order.
func (e *Engine) direction(change, volatility float64, status model.OscillatorStatus, profile TierProfile) model.Direction {
	dir := model.DirectionShort
	if change > 0 {
		dir = model.DirectionLong
	}
	switch {
	case dir == model.DirectionShort && status == model.OscillatorOversold:
		dir = model.DirectionLongReversal
	case dir == model.DirectionLong && status == model.OscillatorOverbought:
		dir = model.DirectionShortReversal
	}
	if volatility < e.params.FlatThreshold && !profile.TradesFlatMarkets {
		dir = model.DirectionNeutral
	}
	return dir
}

func target(price, riskDistance, multiple float64, long bool) float64 {
	if long {
		return price + riskDistance*multiple
	}
	return price - riskDistance*multiple
}
