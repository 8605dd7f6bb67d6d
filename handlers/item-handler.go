package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/response"
	"github.com/krishkalaria12/linegrade/service"
	"github.com/krishkalaria12/linegrade/validation"
)

func itemID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFoundf("no item with id %q", c.Params("id"))
	}
	return id, nil
}

func (h *Handler) ListItems(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}

	items, err := h.store.ListItems(c.UserContext(), p)
	if err != nil {
		return err
	}
	return response.OK(c, "Items found", mapViews(items, func(item models.Item) *ItemView {
		return itemView(&item)
	}))
}

func (h *Handler) CreateItem(c *fiber.Ctx) error {
	var in service.ItemInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	item, err := h.items.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return response.Created(c, "Item created", itemView(&item))
}

func (h *Handler) GetItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.store.GetItem(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "Item found", itemView(&item))
}

func (h *Handler) UpdateItem(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemID(c)
		if err != nil {
			return err
		}

		var in service.ItemInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		if !partial {
			if err := validation.ValidateStruct(&in); err != nil {
				return err
			}
		}

		item, err := h.items.Update(c.UserContext(), id, in.Index)
		if err != nil {
			return err
		}
		return response.OK(c, "Item updated", itemView(&item))
	}
}

func (h *Handler) DeleteItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	paths, err := h.store.DeleteItem(c.UserContext(), id)
	if err != nil {
		return err
	}
	h.removeBlobs(c.UserContext(), paths)
	return response.OK(c, "Item deleted", nil)
}
