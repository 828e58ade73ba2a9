package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the directional call of a signal.
type Direction string

const (
	DirectionLong          Direction = "LONG"
	DirectionShort         Direction = "SHORT"
	DirectionLongReversal  Direction = "LONG_REVERSAL"
	DirectionShortReversal Direction = "SHORT_REVERSAL"
	DirectionNeutral       Direction = "NEUTRAL"
)

// IsLong reports whether d belongs to the long family.
func (d Direction) IsLong() bool {
	return strings.HasPrefix(string(d), "LONG")
}

// LeverageMode is the margin mode suggested for the position.
type LeverageMode string

const (
	LeverageCross    LeverageMode = "CROSS"
	LeverageIsolated LeverageMode = "ISOLATED"
)

// OscillatorStatus classifies the momentum oscillator reading.
type OscillatorStatus string

const (
	OscillatorOversold   OscillatorStatus = "OVERSOLD"
	OscillatorNeutral    OscillatorStatus = "NEUTRAL"
	OscillatorOverbought OscillatorStatus = "OVERBOUGHT"
)

// TradeSignal is the display-ready output of one evaluation.
// Price-like fields are already rounded to display precision.
type TradeSignal struct {
	Direction        Direction        `json:"direction"`
	Leverage         float64          `json:"leverage"`
	LeverageMode     LeverageMode     `json:"leverage_mode"`
	EntryLow         decimal.Decimal  `json:"entry_low"`
	EntryHigh        decimal.Decimal  `json:"entry_high"`
	StopLoss         decimal.Decimal  `json:"stop_loss"`
	TakeProfit1      decimal.Decimal  `json:"take_profit_1"`
	TakeProfit2      decimal.Decimal  `json:"take_profit_2"`
	RiskRewardLabel  string           `json:"risk_reward"`
	EstimatedLossPct decimal.Decimal  `json:"estimated_loss_pct"`
	EstimatedGainPct decimal.Decimal  `json:"estimated_gain_pct"`
	OscillatorValue  float64          `json:"oscillator_value"`
	OscillatorStatus OscillatorStatus `json:"oscillator_status"`
	TimeframeLabel   string           `json:"timeframe"`
	TierLabel        string           `json:"tier_label"`
	Precision        int32            `json:"precision"`
	PercentPrecision int32            `json:"percent_precision"`
}

// Actionable reports whether the signal carries a setup worth rendering.
// NEUTRAL signals must be shown as "no setup".
func (s *TradeSignal) Actionable() bool {
	return s.Direction != DirectionNeutral
}

// EntryZone renders the entry band as "low - high".
func (s *TradeSignal) EntryZone() string {
	return s.EntryLow.StringFixed(s.Precision) + " - " + s.EntryHigh.StringFixed(s.Precision)
}

// MarshalJSON renders decimals as fixed-digit strings so "99.50" stays
// "99.50" rather than the trimmed "99.5".
func (s TradeSignal) MarshalJSON() ([]byte, error) {
	type plain TradeSignal
	return json.Marshal(struct {
		plain
		EntryLow         string `json:"entry_low"`
		EntryHigh        string `json:"entry_high"`
		StopLoss         string `json:"stop_loss"`
		TakeProfit1      string `json:"take_profit_1"`
		TakeProfit2      string `json:"take_profit_2"`
		EstimatedLossPct string `json:"estimated_loss_pct"`
		EstimatedGainPct string `json:"estimated_gain_pct"`
	}{
		plain:            plain(s),
		EntryLow:         s.EntryLow.StringFixed(s.Precision),
		EntryHigh:        s.EntryHigh.StringFixed(s.Precision),
		StopLoss:         s.StopLoss.StringFixed(s.Precision),
		TakeProfit1:      s.TakeProfit1.StringFixed(s.Precision),
		TakeProfit2:      s.TakeProfit2.StringFixed(s.Precision),
		EstimatedLossPct: s.EstimatedLossPct.StringFixed(s.PercentPrecision),
		EstimatedGainPct: s.EstimatedGainPct.StringFixed(s.PercentPrecision),
	})
}
