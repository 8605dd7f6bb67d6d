package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/auth"
	"github.com/krishkalaria12/linegrade/logging"
	"github.com/krishkalaria12/linegrade/repository"
	"github.com/krishkalaria12/linegrade/service"
	"github.com/krishkalaria12/linegrade/storage"
)

// Handler serves the HTTP API on top of the store and its services.
type Handler struct {
	store    *repository.Store
	auth     *auth.Service
	blobs    storage.BlobStore
	lines    *service.Lines
	cameras  *service.Cameras
	items    *service.Items
	images   *service.Images
	ingestor *service.Ingestor
}

func New(store *repository.Store, authService *auth.Service, blobs storage.BlobStore) *Handler {
	return &Handler{
		store:    store,
		auth:     authService,
		blobs:    blobs,
		lines:    service.NewLines(store),
		cameras:  service.NewCameras(store),
		items:    service.NewItems(store),
		images:   service.NewImages(store),
		ingestor: service.NewIngestor(store, blobs),
	}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Wrap(apperror.Validation, "invalid request body", err)
	}
	return nil
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, apperror.NotFoundf("no record with id %q", c.Params("id"))
	}
	return uint(id), nil
}

func page(c *fiber.Ctx) (repository.Page, error) {
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)
	if limit < 0 {
		return repository.Page{}, apperror.Invalid("limit", "must be a positive integer")
	}
	if offset < 0 {
		return repository.Page{}, apperror.Invalid("offset", "must be a positive integer")
	}
	return repository.Page{Limit: limit, Offset: offset}, nil
}

// removeBlobs deletes stored files of removed images. Failures are logged
// and otherwise ignored since the rows are already gone.
func (h *Handler) removeBlobs(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := h.blobs.Delete(ctx, path); err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("failed to remove image file")
		}
	}
}
