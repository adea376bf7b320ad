package middleware

import (
	"errors"
	"strings"

	"projectdesk/apperror"
	"projectdesk/policy"
	"projectdesk/services"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// AccessTokenMiddleware resolves the bearer token to a principal or aborts
// with 401.
func AccessTokenMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apperror.Respond(c, apperror.Unauthorized())
			return
		}
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			apperror.Respond(c, apperror.Unauthorized())
			return
		}

		principal, err := tokens.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				apperror.Respond(c, apperror.Unauthorized())
				return
			}
			apperror.Respond(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Set("userId", principal.ID)
		c.Next()
	}
}

// CurrentPrincipal returns the caller set by AccessTokenMiddleware.
func CurrentPrincipal(c *gin.Context) policy.Principal {
	return c.MustGet(principalKey).(policy.Principal)
}
