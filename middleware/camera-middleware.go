package middleware

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/krishkalaria12/linegrade/apperror"
)

const CameraTokenHeader = "X-CONSTANT-TOKEN"

var errCameraToken = errors.New("invalid camera token")

// CameraToken admits requests whose X-CONSTANT-TOKEN header equals secret.
func CameraToken(secret string) fiber.Handler {
	expected := []byte(secret)

	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + CameraTokenHeader,
		ContextKey: "camera_token",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
				return false, errCameraToken
			}
			return true, nil
		},
		ErrorHandler: func(_ *fiber.Ctx, err error) error {
			if errors.Is(err, keyauth.ErrMissingOrMalformedAPIKey) {
				return apperror.Unauthenticated("authentication credentials were not provided")
			}
			return apperror.Wrap(apperror.Authentication, "invalid camera token", err)
		},
	})
}
