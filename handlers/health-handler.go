package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/response"
)

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		return apperror.Wrap(apperror.Internal, "database unavailable", err)
	}
	return response.OK(c, "ok", nil)
}
