package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

const (
	// ContextKeySession is the gin context key for the engagement session ID.
	ContextKeySession = "session_id"

	defaultSessionHeader = "X-Session-ID"
)

// Session returns middleware that resolves who a request acts for.
//
// The session ID is the gateway subject when one is present, otherwise the
// anonymous X-Session-ID header. It keys like and bookmark state. The
// visitor is also attached to the request context as a FeatureFlagUser so
// flag evaluation can target by role, and the request logger is tagged with
// a digest of the session.
//
// Session never rejects a request; endpoints that need a session validate it.
func Session(cfg *config.AuthConfig) gin.HandlerFunc {
	sessionHeader := defaultSessionHeader
	if cfg != nil && cfg.SessionHeader != "" {
		sessionHeader = cfg.SessionHeader
	}

	return func(c *gin.Context) {
		claims := claimsOf(c, cfg)

		sessionID := claims.Subject
		if sessionID == "" {
			sessionID = strings.TrimSpace(c.GetHeader(sessionHeader))
		}

		c.Set(ContextKeySession, sessionID)

		ctx := logging.WithSession(c.Request.Context(), sessionID)
		ctx = ports.WithFeatureFlagUser(ctx, &ports.FeatureFlagUser{
			ID:        sessionID,
			Anonymous: claims.Subject == "",
			Roles:     claims.Roles,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSessionID returns the session resolved by Session, or "".
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySession)
}
