// Package middleware holds the Echo middleware chain: JWT auth, role
// checks, the Redis token bucket and the response cache.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth and read by handlers and the rate limiter.
const (
	CtxAccountID = "account_id"
	CtxRole      = "role"
)

// JWTAuth validates a Bearer access token signed with secret and stores the
// subject (account id) and role claims in the Echo context.  Wraps every
// /v1 route except auth itself.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Numeric claims decode as float64; normalize to uint64 here so
			// handlers never repeat the dance.
			if sub, ok := claims["sub"].(float64); ok {
				c.Set(CtxAccountID, uint64(sub))
			}
			if role, ok := claims["role"].(string); ok {
				c.Set(CtxRole, role)
			}
			return next(c)
		}
	}
}

// AccountID returns the authenticated account id, or 0 when the request is
// unauthenticated.
func AccountID(c echo.Context) uint64 {
	if v, ok := c.Get(CtxAccountID).(uint64); ok {
		return v
	}
	return 0
}

// Role returns the authenticated role, or "" when unauthenticated.
func Role(c echo.Context) string {
	if v, ok := c.Get(CtxRole).(string); ok {
		return v
	}
	return ""
}
