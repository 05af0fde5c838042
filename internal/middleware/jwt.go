package middleware // reusable HTTP middleware for the admin surface

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject and role claims into the
// request context.  The provided secret must match the one used when
// issuing tokens.  This middleware wraps the admin routes so handlers
// can access the authenticated admin via c.Get("admin_id") and
// c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject any other
			// signing method.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid claims"})
			}

			c.Set("admin_id", claims["sub"])
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}
