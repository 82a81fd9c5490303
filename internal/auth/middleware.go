package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key under which verified claims are stored.
const ContextKey = "claims"

// Bearer enforces bearer JWT tokens signed with HS256 and attaches the
// caller's claims to the request context.
func Bearer(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextKey, claims)
		c.Next()
	}
}

// FromContext returns the claims attached by Bearer, if any.
func FromContext(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

// Require aborts with 403 unless the caller's role permits op.
func Require(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing credentials"})
			return
		}
		if d := Permit(claims.Role, op); !d.Allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": d.Reason})
			return
		}
		c.Next()
	}
}
