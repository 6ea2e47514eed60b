package middleware

import (
	"net/http"
	"strings"

	"options-pricer/auth"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// TokenParser verifies an access token.
type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's identity on the context.
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required", "")
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			unauthorized(c, "Invalid authorization header", "expected \"Bearer <token>\"")
			return
		}

		id, err := tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			unauthorized(c, "Could not validate user", err.Error())
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by JWTAuth.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func unauthorized(c *gin.Context, msg, details string) {
	c.Header("WWW-Authenticate", "Bearer")
	body := gin.H{"error": msg}
	if details != "" {
		body["details"] = details
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}
