package strategy

// Params holds the thresholds of the signal engine.
type Params struct {
	// OscillatorWindow is the RSI period; window+1 samples activate it.
	OscillatorWindow int `yaml:"oscillator_window"`
	// OverboughtAbove and OversoldBelow are strict bounds on the oscillator.
	OverboughtAbove float64 `yaml:"overbought_above"`
	OversoldBelow   float64 `yaml:"oversold_below"`
	// FlatThreshold is the |24h change| (percentage points) under which
	// tiers that do not trade flat markets go NEUTRAL. Zero means the
	// default; a negative value disables the filter.
	FlatThreshold float64 `yaml:"flat_threshold"`
	// CalmThreshold is the |24h change| under which LeverageMax applies.
	CalmThreshold float64 `yaml:"calm_threshold"`
	// Fractional digits for price-like outputs.
	SubUnitPrecision int32 `yaml:"sub_unit_precision"`
	DefaultPrecision int32 `yaml:"default_precision"`
	PercentPrecision int32 `yaml:"percent_precision"`
}

const (
	DefaultOscillatorWindow = 14
	DefaultOverboughtAbove  = 70.0
	DefaultOversoldBelow    = 30.0
	DefaultFlatThreshold    = 0.2
	DefaultCalmThreshold    = 1.0

	// Entry band half-widths as a fraction of price.
	DefaultEntryBufferPct = 0.0015
	TightEntryBufferPct   = 0.0005
)

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		OscillatorWindow: DefaultOscillatorWindow,
		OverboughtAbove:  DefaultOverboughtAbove,
		OversoldBelow:    DefaultOversoldBelow,
		FlatThreshold:    DefaultFlatThreshold,
		CalmThreshold:    DefaultCalmThreshold,
		SubUnitPrecision: 5,
		DefaultPrecision: 2,
		PercentPrecision: 2,
	}
}

// WithDefaults fills zero-valued fields from DefaultParams. Zero is
// indistinguishable from unset in YAML, so thresholds that need to be
// switched off take a negative value instead.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.OscillatorWindow == 0 {
		p.OscillatorWindow = d.OscillatorWindow
	}
	if p.OverboughtAbove == 0 {
		p.OverboughtAbove = d.OverboughtAbove
	}
	if p.OversoldBelow == 0 {
		p.OversoldBelow = d.OversoldBelow
	}
	if p.FlatThreshold == 0 {
		p.FlatThreshold = d.FlatThreshold
	}
	if p.CalmThreshold == 0 {
		p.CalmThreshold = d.CalmThreshold
	}
	if p.SubUnitPrecision == 0 {
		p.SubUnitPrecision = d.SubUnitPrecision
	}
	if p.DefaultPrecision == 0 {
		p.DefaultPrecision = d.DefaultPrecision
	}
	if p.PercentPrecision == 0 {
		p.PercentPrecision = d.PercentPrecision
	}
	return p
}
