// Package flags provides a ports.FeatureFlags adapter backed by static configuration.
package flags

import (
	"context"
	"sync"

	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// AdminRole always passes role-gated flags.
const AdminRole = "admin"

// Static evaluates flags from values fixed at startup. Values can be
// replaced at runtime with Set, which is safe for concurrent use.
type Static struct {
	mu    sync.RWMutex
	bools map[string]bool
	ints  map[string]int

	// roleGated flags evaluate true for admins even when disabled.
	roleGated map[string]bool
}

var _ ports.FeatureFlags = (*Static)(nil)

// NewStatic creates an empty flag set. Every lookup returns its default.
func NewStatic() *Static {
	return &Static{
		bools:     make(map[string]bool),
		ints:      make(map[string]int),
		roleGated: make(map[string]bool),
	}
}

// FromConfig maps the features config section onto flag names.
func FromConfig(cfg config.FeaturesConfig) *Static {
	s := NewStatic()
	s.SetBool(ports.FlagPublicDailyReroll, cfg.PublicDailyReroll)
	s.SetInt(ports.FlagHomeFeaturedCount, cfg.HomeFeaturedCount)
	s.roleGated[ports.FlagPublicDailyReroll] = true

	return s
}

// SetBool sets a boolean flag.
func (s *Static) SetBool(flag string, v bool) {
	s.mu.Lock()
	s.bools[flag] = v
	s.mu.Unlock()
}

// SetInt sets an integer flag.
func (s *Static) SetInt(flag string, v int) {
	s.mu.Lock()
	s.ints[flag] = v
	s.mu.Unlock()
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(ctx context.Context, flag string, defaultValue bool) bool {
	s.mu.RLock()
	v, ok := s.bools[flag]
	gated := s.roleGated[flag]
	s.mu.RUnlock()

	if !ok {
		return defaultValue
	}

	if v || !gated {
		return v
	}

	return ports.GetFeatureFlagUser(ctx).HasRole(AdminRole)
}

// GetInt implements ports.FeatureFlags.
func (s *Static) GetInt(_ context.Context, flag string, defaultValue int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.ints[flag]; ok {
		return v
	}

	return defaultValue
}
