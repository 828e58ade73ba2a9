package strategy

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"SignalDesk/internal/model"
)

func risingSeries(n int, start, step float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = start + float64(i)*step
	}
	return s
}

func mustEvaluate(t *testing.T, snap model.MarketSnapshot) *model.TradeSignal {
	t.Helper()
	sig, err := Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluate %+v: %v", snap, err)
	}
	return sig
}

func TestEvaluate_ScenarioA_MediumLong(t *testing.T) {
	sig := mustEvaluate(t, model.MarketSnapshot{Price: 65432.10, Change24h: 2.5, RiskTier: model.TierMedium})

	if sig.Direction != model.DirectionLong {
		t.Fatalf("expected LONG, got %s", sig.Direction)
	}
	checks := []struct {
		name, got, want string
	}{
		{"entryLow", sig.EntryLow.StringFixed(2), "65333.95"},
		{"entryHigh", sig.EntryHigh.StringFixed(2), "65530.25"},
		{"stopLoss", sig.StopLoss.StringFixed(2), "64777.78"},
		{"tp1", sig.TakeProfit1.StringFixed(2), "66413.58"},
		{"tp2", sig.TakeProfit2.StringFixed(2), "66740.74"},
		{"loss%", sig.EstimatedLossPct.StringFixed(2), "5.00"},
		{"gain%", sig.EstimatedGainPct.StringFixed(2), "7.50"},
		{"rr", sig.RiskRewardLabel, "1:2.0"},
		{"entry", sig.EntryZone(), "65333.95 - 65530.25"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, c.got)
		}
	}
	if sig.OscillatorValue != 50 || sig.OscillatorStatus != model.OscillatorNeutral {
		t.Errorf("expected oscillator 50/NEUTRAL, got %.2f/%s", sig.OscillatorValue, sig.OscillatorStatus)
	}
	if sig.Leverage != 5 {
		t.Errorf("expected base leverage 5 for volatility 2.5, got %.0f", sig.Leverage)
	}
	if sig.LeverageMode != model.LeverageIsolated {
		t.Errorf("expected ISOLATED, got %s", sig.LeverageMode)
	}
	if sig.TimeframeLabel != "Scalp / Day (1H)" {
		t.Errorf("unexpected timeframe %q", sig.TimeframeLabel)
	}
}

func TestEvaluate_ScenarioB_FlatLowIsNeutral(t *testing.T) {
	sig := mustEvaluate(t, model.MarketSnapshot{Price: 100, Change24h: 0.1, RiskTier: model.TierLow})
	if sig.Direction != model.DirectionNeutral {
		t.Fatalf("expected NEUTRAL, got %s", sig.Direction)
	}
	if sig.Actionable() {
		t.Error("NEUTRAL signal must not be actionable")
	}
	if sig.LeverageMode != model.LeverageCross {
		t.Errorf("LOW tier should use CROSS, got %s", sig.LeverageMode)
	}
}

func TestEvaluate_ScenarioC_ExtremeTradesFlat(t *testing.T) {
	sig := mustEvaluate(t, model.MarketSnapshot{Price: 100, Change24h: 0.1, RiskTier: model.TierExtreme})
	if sig.Direction == model.DirectionNeutral {
		t.Fatal("EXTREME must bypass the flatness filter")
	}
	if sig.Direction != model.DirectionLong {
		t.Errorf("expected LONG, got %s", sig.Direction)
	}
	profile, _ := defaultEngine.Profile(model.TierExtreme)
	if sig.Leverage != profile.LeverageMax {
		t.Errorf("expected leverageMax %.0f, got %.0f", profile.LeverageMax, sig.Leverage)
	}
	if sig.EntryLow.StringFixed(2) != "99.95" || sig.EntryHigh.StringFixed(2) != "100.05" {
		t.Errorf("expected tight entry 99.95 - 100.05, got %s", sig.EntryZone())
	}
}

func TestEvaluate_ScenarioD_SubUnitPrecision(t *testing.T) {
	sig := mustEvaluate(t, model.MarketSnapshot{Price: 0.5, Change24h: -3.0, RiskTier: model.TierHigh})
	if sig.Direction != model.DirectionShort {
		t.Fatalf("expected SHORT, got %s", sig.Direction)
	}
	if sig.Precision != 5 {
		t.Fatalf("expected 5 fractional digits, got %d", sig.Precision)
	}
	checks := []struct {
		name, got, want string
	}{
		{"entryLow", sig.EntryLow.StringFixed(5), "0.49925"},
		{"entryHigh", sig.EntryHigh.StringFixed(5), "0.50075"},
		{"stopLoss", sig.StopLoss.StringFixed(5), "0.50750"},
		{"tp1", sig.TakeProfit1.StringFixed(5), "0.48875"},
		{"tp2", sig.TakeProfit2.StringFixed(5), "0.47750"},
		{"loss%", sig.EstimatedLossPct.StringFixed(2), "15.00"},
		{"gain%", sig.EstimatedGainPct.StringFixed(2), "22.50"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, c.got)
		}
	}
	for _, d := range []struct {
		name string
		exp  int32
	}{
		{"entryLow", sig.EntryLow.Exponent()},
		{"stopLoss", sig.StopLoss.Exponent()},
		{"tp2", sig.TakeProfit2.Exponent()},
	} {
		if d.exp < -5 {
			t.Errorf("%s carries more than 5 fractional digits (exp %d)", d.name, d.exp)
		}
	}
}

func TestEvaluate_ScenarioE_OverboughtShortStaysShort(t *testing.T) {
	sig := mustEvaluate(t, model.MarketSnapshot{
		Price:       50000,
		Change24h:   -1.0,
		PriceSeries: risingSeries(20, 48000, 100),
		RiskTier:    model.TierMedium,
	})
	if sig.OscillatorValue <= 70 || sig.OscillatorStatus != model.OscillatorOverbought {
		t.Fatalf("expected OVERBOUGHT > 70, got %.2f/%s", sig.OscillatorValue, sig.OscillatorStatus)
	}
	if sig.Direction != model.DirectionShort {
		t.Errorf("SHORT+OVERBOUGHT must stay SHORT, got %s", sig.Direction)
	}
	if sig.StopLoss.InexactFloat64() <= 50000 {
		t.Errorf("short stop must sit above price, got %s", sig.StopLoss)
	}
}

func TestEvaluate_ReversalOverrides(t *testing.T) {
	falling := risingSeries(20, 52000, -100)
	rising := risingSeries(20, 48000, 100)

	tests := []struct {
		name   string
		change float64
		series []float64
		want   model.Direction
	}{
		{"short oversold reverses long", -2.0, falling, model.DirectionLongReversal},
		{"long overbought reverses short", 2.0, rising, model.DirectionShortReversal},
		{"long oversold stays long", 2.0, falling, model.DirectionLong},
		{"short neutral oscillator stays short", -2.0, nil, model.DirectionShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := mustEvaluate(t, model.MarketSnapshot{Price: 50000, Change24h: tt.change, PriceSeries: tt.series, RiskTier: model.TierHigh})
			if sig.Direction != tt.want {
				t.Errorf("expected %s, got %s", tt.want, sig.Direction)
			}
			price := 50000.0
			stop := sig.StopLoss.InexactFloat64()
			if sig.Direction.IsLong() && stop >= price {
				t.Errorf("long-family stop %.2f must be below price", stop)
			}
			if !sig.Direction.IsLong() && stop <= price {
				t.Errorf("short-family stop %.2f must be above price", stop)
			}
		})
	}
}

func TestEvaluate_FlatFilterBeatsReversal(t *testing.T) {
	sig := mustEvaluate(t, model.MarketSnapshot{
		Price:       100,
		Change24h:   -0.1,
		PriceSeries: risingSeries(20, 120, -1),
		RiskTier:    model.TierMedium,
	})
	if sig.OscillatorStatus != model.OscillatorOversold {
		t.Fatalf("expected OVERSOLD, got %s", sig.OscillatorStatus)
	}
	if sig.Direction != model.DirectionNeutral {
		t.Errorf("flat market must be NEUTRAL for MEDIUM, got %s", sig.Direction)
	}
}

func TestEvaluate_LeverageThreshold(t *testing.T) {
	profile, _ := defaultEngine.Profile(model.TierMedium)
	tests := []struct {
		change float64
		want   float64
	}{
		{0.5, profile.LeverageMax},
		{0.99, profile.LeverageMax},
		{1.0, profile.LeverageBase},
		{-4.0, profile.LeverageBase},
	}
	for _, tt := range tests {
		sig := mustEvaluate(t, model.MarketSnapshot{Price: 100, Change24h: tt.change, RiskTier: model.TierMedium})
		if sig.Leverage != tt.want {
			t.Errorf("change %.2f: expected leverage %.0f, got %.0f", tt.change, tt.want, sig.Leverage)
		}
	}
}

func TestEvaluate_OscillatorWindowBoundary(t *testing.T) {
	short := mustEvaluate(t, model.MarketSnapshot{Price: 100, Change24h: 2, PriceSeries: risingSeries(14, 90, 1), RiskTier: model.TierMedium})
	if short.OscillatorValue != 50 || short.OscillatorStatus != model.OscillatorNeutral {
		t.Errorf("14 samples: expected 50/NEUTRAL, got %.2f/%s", short.OscillatorValue, short.OscillatorStatus)
	}
	enough := mustEvaluate(t, model.MarketSnapshot{Price: 100, Change24h: 2, PriceSeries: risingSeries(15, 90, 1), RiskTier: model.TierMedium})
	if enough.OscillatorValue != 100 {
		t.Errorf("15 samples: expected oscillator active at 100, got %.2f", enough.OscillatorValue)
	}
}

func TestClassifyOscillator_StrictBounds(t *testing.T) {
	tests := []struct {
		value float64
		want  model.OscillatorStatus
	}{
		{70, model.OscillatorNeutral},
		{70.01, model.OscillatorOverbought},
		{30, model.OscillatorNeutral},
		{29.99, model.OscillatorOversold},
		{0, model.OscillatorOversold},
		{100, model.OscillatorOverbought},
	}
	for _, tt := range tests {
		if got := defaultEngine.ClassifyOscillator(tt.value); got != tt.want {
			t.Errorf("%.2f: expected %s, got %s", tt.value, tt.want, got)
		}
	}
}

func TestEvaluate_Properties(t *testing.T) {
	prices := []float64{0.00042, 0.5, 1, 17.3, 65432.10}
	changes := []float64{-12, -1, -0.19, -0.2, 0, 0.1, 0.2, 0.7, 3.3}
	series := [][]float64{nil, risingSeries(10, 1, 1), risingSeries(30, 10, 0.5), risingSeries(30, 40, -1)}

	for _, price := range prices {
		for _, change := range changes {
			for _, s := range series {
				for _, tier := range model.AllTiers {
					snap := model.MarketSnapshot{Price: price, Change24h: change, PriceSeries: s, RiskTier: tier}
					sig := mustEvaluate(t, snap)

					if sig.EntryLow.GreaterThan(sig.EntryHigh) {
						t.Errorf("%+v: entryLow %s > entryHigh %s", snap, sig.EntryLow, sig.EntryHigh)
					}
					if sig.EstimatedLossPct.IsNegative() || sig.EstimatedGainPct.IsNegative() {
						t.Errorf("%+v: negative magnitude", snap)
					}
					if sig.OscillatorValue < 0 || sig.OscillatorValue > 100 {
						t.Errorf("%+v: oscillator out of range: %.2f", snap, sig.OscillatorValue)
					}
					if len(s) < 15 && (sig.OscillatorValue != 50 || sig.OscillatorStatus != model.OscillatorNeutral) {
						t.Errorf("%+v: short series must read 50/NEUTRAL", snap)
					}
					flat := math.Abs(change) < 0.2 && tier != model.TierExtreme
					if (sig.Direction == model.DirectionNeutral) != flat {
						t.Errorf("%+v: NEUTRAL=%v but flat=%v", snap, sig.Direction == model.DirectionNeutral, flat)
					}
					// Levels closer to price than one display unit can round onto it.
					if price*0.005 > math.Pow10(-int(sig.Precision)) {
						stop := sig.StopLoss.InexactFloat64()
						if sig.Direction.IsLong() && stop >= price {
							t.Errorf("%+v: long stop %.5f not below price", snap, stop)
						}
						if !sig.Direction.IsLong() && stop <= price {
							t.Errorf("%+v: short stop %.5f not above price", snap, stop)
						}
					}

					again := mustEvaluate(t, snap)
					a, _ := json.Marshal(sig)
					b, _ := json.Marshal(again)
					if string(a) != string(b) {
						t.Errorf("%+v: non-deterministic output\n%s\n%s", snap, a, b)
					}
				}
			}
		}
	}
}

func TestEvaluate_InvalidSnapshots(t *testing.T) {
	tests := []struct {
		name string
		snap model.MarketSnapshot
	}{
		{"zero price", model.MarketSnapshot{Price: 0, Change24h: 1, RiskTier: model.TierLow}},
		{"negative price", model.MarketSnapshot{Price: -5, Change24h: 1, RiskTier: model.TierLow}},
		{"NaN price", model.MarketSnapshot{Price: math.NaN(), Change24h: 1, RiskTier: model.TierLow}},
		{"Inf price", model.MarketSnapshot{Price: math.Inf(1), Change24h: 1, RiskTier: model.TierLow}},
		{"NaN change", model.MarketSnapshot{Price: 10, Change24h: math.NaN(), RiskTier: model.TierLow}},
		{"empty series", model.MarketSnapshot{Price: 10, Change24h: 1, PriceSeries: []float64{}, RiskTier: model.TierLow}},
		{"zero sample", model.MarketSnapshot{Price: 10, Change24h: 1, PriceSeries: []float64{1, 0, 2}, RiskTier: model.TierLow}},
		{"unknown tier", model.MarketSnapshot{Price: 10, Change24h: 1, RiskTier: "YOLO"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Evaluate(tt.snap)
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
			}
			if sig != nil {
				t.Error("expected nil signal on error")
			}
		})
	}

	_, err := Evaluate(model.MarketSnapshot{Price: 10, Change24h: 1, RiskTier: "YOLO"})
	if !errors.Is(err, model.ErrUnknownTier) {
		t.Errorf("unknown tier should also match model.ErrUnknownTier, got %v", err)
	}
}

func TestDefaultProfiles_FirstTargetMatchesLegacyRule(t *testing.T) {
	for tier, p := range DefaultProfiles() {
		want := 1.5
		if p.TakeProfitMultiple == 1.5 {
			want = 1.0
		}
		if p.FirstTargetMultiple != want {
			t.Errorf("%s: first target multiple %.1f, legacy rule gives %.1f", tier, p.FirstTargetMultiple, want)
		}
		wantMode := model.LeverageIsolated
		if tier == model.TierLow {
			wantMode = model.LeverageCross
		}
		if p.LeverageMode != wantMode {
			t.Errorf("%s: expected %s, got %s", tier, wantMode, p.LeverageMode)
		}
		if p.TradesFlatMarkets != (tier == model.TierExtreme) {
			t.Errorf("%s: unexpected TradesFlatMarkets=%v", tier, p.TradesFlatMarkets)
		}
	}
}

func TestNewEngine_CustomThresholds(t *testing.T) {
	e := NewEngine(Params{FlatThreshold: 0.05}, nil)
	sig, err := e.Evaluate(model.MarketSnapshot{Price: 100, Change24h: 0.1, RiskTier: model.TierLow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Direction != model.DirectionLong {
		t.Errorf("with flat threshold 0.05, change 0.1 should be LONG, got %s", sig.Direction)
	}
	if e.Params().OscillatorWindow != DefaultOscillatorWindow {
		t.Errorf("zero window should default to %d", DefaultOscillatorWindow)
	}
}

func TestEvaluate_DustPriceRoundsToZero(t *testing.T) {
	// Five fractional digits cannot represent levels of a price below
	// 0.000005; every price-like output collapses to zero.
	sig := mustEvaluate(t, model.MarketSnapshot{Price: 0.000001, Change24h: 3, RiskTier: model.TierLow})
	if sig.Precision != 5 {
		t.Fatalf("expected 5 digits, got %d", sig.Precision)
	}
	for name, d := range map[string]decimal.Decimal{
		"entry_low": sig.EntryLow, "entry_high": sig.EntryHigh, "stop_loss": sig.StopLoss,
		"take_profit_1": sig.TakeProfit1, "take_profit_2": sig.TakeProfit2,
	} {
		if got := d.StringFixed(sig.Precision); got != "0.00000" {
			t.Errorf("%s = %s, want 0.00000", name, got)
		}
	}
	if got := sig.EstimatedLossPct.StringFixed(2); got != "1.00" {
		t.Errorf("loss pct = %s, want 1.00", got)
	}
}

func TestEvaluate_NegativeFlatThresholdDisablesFilter(t *testing.T) {
	p := DefaultParams()
	p.FlatThreshold = -1
	e := NewEngine(p, nil)
	sig, err := e.Evaluate(model.MarketSnapshot{Price: 100, Change24h: 0.05, RiskTier: model.TierLow})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if sig.Direction != model.DirectionLong {
		t.Errorf("expected LONG with flat filter disabled, got %s", sig.Direction)
	}

	p.FlatThreshold = 0
	if got := NewEngine(p, nil).Params().FlatThreshold; got != DefaultFlatThreshold {
		t.Errorf("zero flat threshold should take the default, got %v", got)
	}
}
