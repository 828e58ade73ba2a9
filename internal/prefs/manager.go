package prefs

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"SignalDesk/internal/logger"
	"SignalDesk/internal/model"
)

// Manager holds the caller-selected risk tier and watchlist with concurrency safety.
// An empty filePath keeps state in memory only.
type Manager struct {
	mu       sync.Mutex
	state    *model.Preferences
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string, defaultTier model.RiskTier, watchlist []string) (*Manager, error) {
	state := &model.Preferences{}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, fmt.Errorf("load prefs: %w", err)
		}
		state = loaded
	}

	// Initialize if fresh state
	if !state.Tier.Valid() {
		if !defaultTier.Valid() {
			defaultTier = model.TierMedium
		}
		state.Tier = defaultTier
	}
	if state.Watchlist == nil {
		state.Watchlist = normalize(watchlist)
	}

	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// State returns a copy of the current preferences.
func (m *Manager) State() model.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.state
	cp.Watchlist = slices.Clone(m.state.Watchlist)
	return cp
}

// Tier returns the selected risk tier.
func (m *Manager) Tier() model.RiskTier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Tier
}

// SetTier changes the selected risk tier.
func (m *Manager) SetTier(tier model.RiskTier) error {
	if !tier.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownTier, tier)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Tier = tier
	return m.save()
}

// Watchlist returns the watched coin queries.
func (m *Manager) Watchlist() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.Watchlist)
}

// Watch adds coin to the watchlist. Returns false if it was already present.
func (m *Manager) Watch(coin string) (bool, error) {
	coin = strings.ToLower(strings.TrimSpace(coin))
	if coin == "" {
		return false, fmt.Errorf("empty coin")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.state.Watchlist, coin) {
		return false, nil
	}
	m.state.Watchlist = append(m.state.Watchlist, coin)
	return true, m.save()
}

// Unwatch removes coin from the watchlist. Returns false if it was absent.
func (m *Manager) Unwatch(coin string) (bool, error) {
	coin = strings.ToLower(strings.TrimSpace(coin))
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.state.Watchlist, coin)
	if i < 0 {
		return false, nil
	}
	m.state.Watchlist = slices.Delete(m.state.Watchlist, i, i+1)
	return true, m.save()
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	if err := SaveState(m.filePath, m.state); err != nil {
		logger.Error(context.Background(), "failed to save prefs", "path", m.filePath, "error", err)
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

func normalize(coins []string) []string {
	out := make([]string, 0, len(coins))
	for _, c := range coins {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
