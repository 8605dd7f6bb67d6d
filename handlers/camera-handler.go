package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/middleware"
	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/response"
	"github.com/krishkalaria12/linegrade/service"
	"github.com/krishkalaria12/linegrade/validation"
)

func (h *Handler) ListCameras(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	p, err := page(c)
	if err != nil {
		return err
	}

	cameras, err := h.store.ListCameras(c.UserContext(), user.ID, p)
	if err != nil {
		return err
	}
	return response.OK(c, "Cameras found", mapViews(cameras, func(camera models.Camera) *CameraSummary {
		return cameraSummary(&camera)
	}))
}

// CreateCamera registers a camera on the named production line, creating the
// line for the owner when it does not exist yet.
func (h *Handler) CreateCamera(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var in service.CameraInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	camera, err := h.cameras.Create(c.UserContext(), user.ID, in)
	if err != nil {
		return err
	}
	return response.Created(c, "Camera created", cameraDetail(camera))
}

func (h *Handler) GetCamera(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	camera, err := h.store.GetCamera(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return response.OK(c, "Camera found", cameraDetail(camera))
}

func (h *Handler) UpdateCamera(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := middleware.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := paramID(c)
		if err != nil {
			return err
		}

		var patch service.CameraPatch
		if partial {
			if err := parseBody(c, &patch); err != nil {
				return err
			}
		} else {
			var in service.CameraInput
			if err := parseBody(c, &in); err != nil {
				return err
			}
			if err := validation.ValidateStruct(&in); err != nil {
				return err
			}
			patch = in.Patch()
		}

		camera, err := h.cameras.Update(c.UserContext(), user.ID, id, patch)
		if err != nil {
			return err
		}
		return response.OK(c, "Camera updated", cameraDetail(camera))
	}
}

func (h *Handler) DeleteCamera(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	paths, err := h.store.DeleteCamera(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	h.removeBlobs(c.UserContext(), paths)
	return response.OK(c, "Camera deleted", nil)
}
