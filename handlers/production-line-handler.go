package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/middleware"
	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/response"
	"github.com/krishkalaria12/linegrade/service"
	"github.com/krishkalaria12/linegrade/validation"
)

func (h *Handler) ListProductionLines(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	p, err := page(c)
	if err != nil {
		return err
	}

	lines, err := h.store.ListProductionLines(c.UserContext(), user.ID, p)
	if err != nil {
		return err
	}
	return response.OK(c, "Production lines found", mapViews(lines, func(line models.ProductionLine) *LineView {
		return lineView(&line)
	}))
}

// CreateProductionLine returns the owner's line with the given name,
// creating it when missing. The status tells which case happened.
func (h *Handler) CreateProductionLine(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var in service.LineInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	line, created, err := h.lines.Resolve(c.UserContext(), user.ID, in)
	if err != nil {
		return err
	}
	if created {
		return response.Created(c, "Production line created", lineView(&line))
	}
	return response.OK(c, "Production line already exists", lineView(&line))
}

func (h *Handler) GetProductionLine(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	line, err := h.store.GetProductionLine(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return response.OK(c, "Production line found", lineView(&line))
}

func (h *Handler) UpdateProductionLine(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := middleware.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := paramID(c)
		if err != nil {
			return err
		}

		var patch service.LinePatch
		if partial {
			if err := parseBody(c, &patch); err != nil {
				return err
			}
		} else {
			var in service.LineInput
			if err := parseBody(c, &in); err != nil {
				return err
			}
			if err := validation.ValidateStruct(&in); err != nil {
				return err
			}
			patch = in.Patch()
		}

		line, err := h.lines.Update(c.UserContext(), user.ID, id, patch)
		if err != nil {
			return err
		}
		return response.OK(c, "Production line updated", lineView(&line))
	}
}

func (h *Handler) DeleteProductionLine(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	paths, err := h.store.DeleteProductionLine(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	h.removeBlobs(c.UserContext(), paths)
	return response.OK(c, "Production line deleted", nil)
}
