package middleware

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

// ContextKeyClaims is the gin context key holding the request's *Claims.
const ContextKeyClaims = "claims"

// DefaultAdminRole guards /admin when AuthConfig names no role.
const DefaultAdminRole = "admin"

// Claims is the identity the gateway asserts through headers. The service
// trusts them as-is; authentication happens upstream.
type Claims struct {
	// Subject is the user ID. Empty for anonymous visitors.
	Subject string

	Roles []string
}

// HasRole reports whether role was granted, ignoring case.
func (c *Claims) HasRole(role string) bool {
	return slices.ContainsFunc(c.Roles, func(r string) bool {
		return strings.EqualFold(r, role)
	})
}

// identityHeaders are the header names claims are read from.
type identityHeaders struct {
	subject string
	roles   string
}

func headersFor(cfg *config.AuthConfig) identityHeaders {
	h := identityHeaders{subject: "X-User-ID", roles: "X-User-Roles"}

	if cfg == nil {
		return h
	}

	if cfg.SubjectHeader != "" {
		h.subject = cfg.SubjectHeader
	}

	if cfg.RolesHeader != "" {
		h.roles = cfg.RolesHeader
	}

	return h
}

// ExtractClaims reads claims from the request headers named in cfg. Roles
// are a comma-separated list; blanks and duplicates are dropped.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	h := headersFor(cfg)

	claims := &Claims{Subject: strings.TrimSpace(c.GetHeader(h.subject))}

	for role := range strings.SplitSeq(c.GetHeader(h.roles), ",") {
		role = strings.TrimSpace(role)
		if role != "" && !claims.HasRole(role) {
			claims.Roles = append(claims.Roles, role)
		}
	}

	return claims
}

// GetClaims returns the claims cached on c, or nil.
func GetClaims(c *gin.Context) *Claims {
	v, _ := c.Get(ContextKeyClaims)
	claims, _ := v.(*Claims)

	return claims
}

// claimsOf returns the cached claims, extracting them on first use.
func claimsOf(c *gin.Context, cfg *config.AuthConfig) *Claims {
	if claims := GetClaims(c); claims != nil {
		return claims
	}

	claims := ExtractClaims(c, cfg)
	c.Set(ContextKeyClaims, claims)

	return claims
}

// RequireAdmin guards the maintenance API. A request without a subject is
// rejected with 401 UNAUTHORIZED; one lacking cfg.AdminRole with 403
// FORBIDDEN.
func RequireAdmin(cfg *config.AuthConfig) gin.HandlerFunc {
	role := DefaultAdminRole
	if cfg != nil && cfg.AdminRole != "" {
		role = cfg.AdminRole
	}

	return func(c *gin.Context) {
		claims := claimsOf(c, cfg)
		ctx := c.Request.Context()

		switch {
		case claims.Subject == "":
			logging.FromContext(ctx).InfoContext(ctx, "admin request without subject",
				slog.String("path", c.FullPath()))
			dto.AbortWithErrorCode(c, dto.ErrorCodeUnauthorized, "authentication required")

		case !claims.HasRole(role):
			logging.FromContext(ctx).WarnContext(ctx, "admin request without role",
				slog.String("path", c.FullPath()),
				slog.String("user_id", claims.Subject))
			dto.AbortWithErrorCode(c, dto.ErrorCodeForbidden, "insufficient permissions: role "+role+" required")

		default:
			c.Next()
		}
	}
}
