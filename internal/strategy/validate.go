package strategy

import (
	"errors"
	"fmt"
	"math"

	"SignalDesk/internal/model"
)

// ErrInvalidSnapshot is returned for input the engine refuses to evaluate.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate rejects snapshots that would produce NaN, Inf or nonsensical
// magnitudes. A nil series means "absent"; an empty non-nil one is malformed.
func (e *Engine) Validate(snap model.MarketSnapshot) error {
	if !finite(snap.Price) || snap.Price <= 0 {
		return invalid("price must be positive and finite, got %v", snap.Price)
	}
	if !finite(snap.Change24h) {
		return invalid("change24h must be finite, got %v", snap.Change24h)
	}
	if snap.PriceSeries != nil && len(snap.PriceSeries) == 0 {
		return invalid("price series is present but empty")
	}
	for i, v := range snap.PriceSeries {
		if !finite(v) || v <= 0 {
			return invalid("price series sample %d must be positive and finite, got %v", i, v)
		}
	}
	if _, ok := e.profiles[snap.RiskTier]; !ok {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSnapshot, model.ErrUnknownTier, snap.RiskTier)
	}
	return nil
}
