package strategy

import "SignalDesk/internal/model"

// TierProfile extends the display profile with the engine-only knobs.
type TierProfile struct {
	model.RiskProfile
	EntryBufferPct    float64
	TradesFlatMarkets bool
}

// DefaultProfiles returns the four-tier table. New tiers are new rows.
func DefaultProfiles() map[model.RiskTier]TierProfile {
	return map[model.RiskTier]TierProfile{
		model.TierLow: {
			RiskProfile: model.RiskProfile{
				Label:               "Conservative",
				LeverageBase:        2,
				LeverageMax:         5,
				LeverageMode:        model.LeverageCross,
				StopDistancePct:     0.005,
				FirstTargetMultiple: 1.0,
				TakeProfitMultiple:  1.5,
				Timeframe:           "Swing (4H)",
			},
			EntryBufferPct: DefaultEntryBufferPct,
		},
		model.TierMedium: {
			RiskProfile: model.RiskProfile{
				Label:               "Moderate",
				LeverageBase:        5,
				LeverageMax:         10,
				LeverageMode:        model.LeverageIsolated,
				StopDistancePct:     0.01,
				FirstTargetMultiple: 1.5,
				TakeProfitMultiple:  2.0,
				Timeframe:           "Scalp / Day (1H)",
			},
			EntryBufferPct: DefaultEntryBufferPct,
		},
		model.TierHigh: {
			RiskProfile: model.RiskProfile{
				Label:               "Aggressive",
				LeverageBase:        10,
				LeverageMax:         20,
				LeverageMode:        model.LeverageIsolated,
				StopDistancePct:     0.015,
				FirstTargetMultiple: 1.5,
				TakeProfitMultiple:  3.0,
				Timeframe:           "Scalp (15m)",
			},
			EntryBufferPct: DefaultEntryBufferPct,
		},
		model.TierExtreme: {
			RiskProfile: model.RiskProfile{
				Label:               "Degen",
				LeverageBase:        20,
				LeverageMax:         50,
				LeverageMode:        model.LeverageIsolated,
				StopDistancePct:     0.025,
				FirstTargetMultiple: 1.5,
				TakeProfitMultiple:  5.0,
				Timeframe:           "Scalp (5m)",
			},
			EntryBufferPct:    TightEntryBufferPct,
			TradesFlatMarkets: true,
		},
	}
}
