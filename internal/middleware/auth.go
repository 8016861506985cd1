package middleware

import (
	"fmt"
	"log"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// adminFlagKey is the locals key under which the resolved admin flag is stored.
const adminFlagKey = "isAdmin"

// ResolveAdmin resolves the caller's admin flag from a bearer token claim
// and stores it in the request locals. It never blocks the request itself;
// authorization decisions belong to the handlers behind it.
func ResolveAdmin(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(adminFlagKey, false)

		authHeader := c.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Next()
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			// Validate the alg is what we expect:
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Next()
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
			if isAdmin, ok := claims["isAdmin"].(bool); ok {
				c.Locals(adminFlagKey, isAdmin)
			}
		}
		return c.Next()
	}
}

// IsAdmin reads the resolved admin flag from the request locals.
func IsAdmin(c *fiber.Ctx) bool {
	isAdmin, _ := c.Locals(adminFlagKey).(bool)
	return isAdmin
}
