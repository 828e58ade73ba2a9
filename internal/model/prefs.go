package model

import "time"

// Preferences is the caller-held selection that survives restarts.
type Preferences struct {
	Tier      RiskTier  `json:"tier"`
	Watchlist []string  `json:"watchlist"`
	UpdatedAt time.Time `json:"updated_at"`
}
