package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/middleware"
	"github.com/krishkalaria12/linegrade/response"
	"github.com/krishkalaria12/linegrade/service"
	"github.com/krishkalaria12/linegrade/validation"
)

const imageFormField = "image"

// CreateImage ingests one camera submission. It accepts either a multipart
// form with dotted field names and an optional file, or a JSON document.
func (h *Handler) CreateImage(c *fiber.Ctx) error {
	var sub service.ImageSubmission

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if err := parseBody(c, &sub); err != nil {
			return err
		}
	} else {
		if err := submissionFromForm(c, &sub); err != nil {
			return err
		}

		if file, err := c.FormFile(imageFormField); err == nil {
			blobFile, err := file.Open()
			if err != nil {
				return apperror.Wrap(apperror.Validation, "error opening the file", err)
			}
			defer blobFile.Close()

			sub.File = &service.Upload{Filename: file.Filename, Body: blobFile}
		}
	}

	image, err := h.ingestor.Ingest(c.UserContext(), sub)
	if err != nil {
		return err
	}
	return response.Created(c, "Image stored", imageDetail(image))
}

func submissionFromForm(c *fiber.Ctx, sub *service.ImageSubmission) error {
	sub.Camera = service.CameraRef{
		IP:       c.FormValue("camera.IP"),
		Username: c.FormValue("camera.username"),
		Password: c.FormValue("camera.password"),
	}

	if raw := c.FormValue("item.index"); raw != "" {
		index, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperror.Invalid("item.index", "a valid integer is required")
		}
		sub.Item.Index = &index
	}

	if raw := c.FormValue("grade"); raw != "" {
		grade, err := strconv.Atoi(raw)
		if err != nil {
			return apperror.Invalid("grade", "a valid integer is required")
		}
		sub.Grade = &grade
	}

	if raw := c.FormValue("capture_time"); raw != "" {
		captured, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperror.Invalid("capture_time", "datetime has wrong format, use RFC 3339")
		}
		sub.CaptureTime = &captured
	}
	return nil
}

func (h *Handler) ListImages(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	p, err := page(c)
	if err != nil {
		return err
	}

	images, err := h.store.ListImages(c.UserContext(), user.ID, p)
	if err != nil {
		return err
	}
	return response.OK(c, "Images found", mapViews(images, imageSummary))
}

func (h *Handler) GetImage(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	image, err := h.store.GetImage(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return response.OK(c, "Image found", imageDetail(image))
}

func (h *Handler) UpdateImage(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := middleware.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := paramID(c)
		if err != nil {
			return err
		}

		var patch service.ImagePatch
		if partial {
			if err := parseBody(c, &patch); err != nil {
				return err
			}
		} else {
			var in service.ImageInput
			if err := parseBody(c, &in); err != nil {
				return err
			}
			if err := validation.ValidateStruct(&in); err != nil {
				return err
			}
			patch = in.Patch()
		}

		image, err := h.images.Update(c.UserContext(), user.ID, id, patch)
		if err != nil {
			return err
		}
		return response.OK(c, "Image updated", imageDetail(image))
	}
}

func (h *Handler) DeleteImage(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	image, err := h.store.DeleteImage(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	if image.FilePath != nil {
		h.removeBlobs(c.UserContext(), []string{*image.FilePath})
	}
	return response.OK(c, "Image deleted", nil)
}

// ImageURL redirects to where the stored file of an image is served from.
func (h *Handler) ImageURL(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	image, err := h.store.GetImage(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	if image.FilePath == nil {
		return apperror.NotFoundf("image %d has no stored file", image.ID)
	}
	return c.Redirect(h.blobs.URL(*image.FilePath), fiber.StatusFound)
}
