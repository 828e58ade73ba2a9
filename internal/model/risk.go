package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTier is returned when a risk tier name is not recognised.
var ErrUnknownTier = errors.New("unknown risk tier")

// RiskTier is the caller-selected aggressiveness preset.
type RiskTier string

const (
	TierLow     RiskTier = "LOW"
	TierMedium  RiskTier = "MEDIUM"
	TierHigh    RiskTier = "HIGH"
	TierExtreme RiskTier = "EXTREME"
)

// AllTiers lists the tiers from most to least conservative.
var AllTiers = []RiskTier{TierLow, TierMedium, TierHigh, TierExtreme}

// Valid reports whether t is one of the known tiers.
func (t RiskTier) Valid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh, TierExtreme:
		return true
	}
	return false
}

// ParseRiskTier accepts tier names case-insensitively.
func ParseRiskTier(s string) (RiskTier, error) {
	t := RiskTier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

// RiskProfile is the static configuration attached to one tier.
type RiskProfile struct {
	Label               string
	LeverageBase        float64 // used when volatility >= the calm threshold
	LeverageMax         float64 // used when volatility < the calm threshold
	LeverageMode        LeverageMode
	StopDistancePct     float64 // fraction of price
	FirstTargetMultiple float64
	TakeProfitMultiple  float64
	Timeframe           string
}
