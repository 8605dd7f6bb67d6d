package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/auth"
	"github.com/krishkalaria12/linegrade/models"
)

const (
	// JWTCookie is the cookie set on login for browser clients.
	JWTCookie = "JWT"

	userKey = "user"
)

// AuthMiddleware requires a valid user token, read from the Authorization
// header or the JWT cookie, and stores the user in the request locals.
func AuthMiddleware(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tokenStr string
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			scheme, value, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				return apperror.Unauthenticated("invalid authorization header")
			}
			tokenStr = strings.TrimSpace(value)
		} else {
			tokenStr = c.Cookies(JWTCookie)
		}

		user, err := svc.Authenticate(c.UserContext(), tokenStr)
		if err != nil {
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (models.User, error) {
	user, ok := c.Locals(userKey).(models.User)
	if !ok {
		return models.User{}, apperror.Unauthenticated("authentication credentials were not provided")
	}
	return user, nil
}
