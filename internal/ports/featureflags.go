package ports

import (
	"context"
	"slices"
	"strings"
)

// Flag names understood by FeatureFlags.
const (
	// FlagPublicDailyReroll lets any visitor replace today's quote, not only admins.
	FlagPublicDailyReroll = "public-daily-reroll"

	// FlagHomeFeaturedCount sets how many featured quotes the home page shows.
	FlagHomeFeaturedCount = "home-featured-count"
)

// FeatureFlags evaluates flags for the visitor carried in ctx, if any.
// Lookups never fail: an unknown flag yields the supplied default.
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
	GetInt(ctx context.Context, flag string, defaultValue int) int
}

// FeatureFlagUser is the visitor a flag is evaluated for. ID is the gateway
// subject when present and the session otherwise.
type FeatureFlagUser struct {
	ID        string
	Anonymous bool
	Roles     []string
}

// HasRole reports whether the visitor carries role, ignoring case. It is
// false for a nil user.
func (u *FeatureFlagUser) HasRole(role string) bool {
	if u == nil {
		return false
	}

	return slices.ContainsFunc(u.Roles, func(r string) bool { return strings.EqualFold(r, role) })
}

type flagUserKey struct{}

// WithFeatureFlagUser attaches user for flag targeting.
func WithFeatureFlagUser(ctx context.Context, user *FeatureFlagUser) context.Context {
	return context.WithValue(ctx, flagUserKey{}, user)
}

// GetFeatureFlagUser returns the visitor attached by WithFeatureFlagUser, or nil.
func GetFeatureFlagUser(ctx context.Context) *FeatureFlagUser {
	user, _ := ctx.Value(flagUserKey{}).(*FeatureFlagUser)
	return user
}
