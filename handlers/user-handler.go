package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/auth"
	"github.com/krishkalaria12/linegrade/middleware"
	"github.com/krishkalaria12/linegrade/response"
)

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return response.Created(c, "User created successfully", userView(user))
}

func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	return response.OK(c, "User found", userView(user))
}

// DeleteCurrentUser removes the acting user together with their production
// lines, cameras and images.
func (h *Handler) DeleteCurrentUser(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	paths, err := h.store.DeleteUser(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	h.removeBlobs(c.UserContext(), paths)
	return response.OK(c, "User successfully deleted", nil)
}
