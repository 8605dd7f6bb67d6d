package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/middleware"
	"github.com/krishkalaria12/linegrade/response"
)

type loginInput struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type loginView struct {
	UserView
	Token string `json:"token"`
}

// Login exchanges an email and password for a token. The token is also set
// as an HTTP-only cookie for browser clients.
func (h *Handler) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	user, tokenStr, err := h.auth.Login(c.UserContext(), in.Identity, in.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.JWTCookie,
		Value:    tokenStr,
		Expires:  time.Now().Add(time.Hour * 24),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: "Lax",
	})

	return response.OK(c, "Login successful", loginView{UserView: userView(user), Token: tokenStr})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.JWTCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return response.OK(c, "Logout successful", nil)
}
