package token

import (
	"github.com/gin-gonic/gin"
)

// ContextClaims is the gin context key under which Identify stores the
// session claims.
const ContextClaims = "sessionClaims"

// Identify returns a Gin middleware that parses the session cookie when one
// is present and stores the verified claims in the request context. It never
// aborts the request; handlers decide what an anonymous caller may do.
func Identify(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)
		if err == nil && raw != "" {
			// 署名検証に失敗したクッキーは匿名扱い
			if claims, parseErr := issuer.ParseSession(raw); parseErr == nil {
				c.Set(ContextClaims, claims)
			}
		}
		c.Next()
	}
}

// CurrentClaims returns the session claims stored by Identify, if any.
func CurrentClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
