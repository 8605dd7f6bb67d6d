package service

import (
	"context"
	"time"

	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/repository"
	"github.com/krishkalaria12/linegrade/validation"
)

// ImageInput is the full replacement of an image's mutable fields.
type ImageInput struct {
	Grade       *int       `json:"grade" validate:"required,gte=0,lte=3"`
	CaptureTime *time.Time `json:"capture_time" validate:"required"`
}

type ImagePatch struct {
	Grade       *int       `json:"grade" validate:"omitempty,gte=0,lte=3"`
	CaptureTime *time.Time `json:"capture_time"`
}

func (in ImageInput) Patch() ImagePatch {
	return ImagePatch(in)
}

// Images edits images owned through the capturing camera. The item, camera
// and stored file are fixed once ingested.
type Images struct {
	store *repository.Store
}

func NewImages(store *repository.Store) *Images {
	return &Images{store: store}
}

func (s *Images) Update(ctx context.Context, ownerID, id uint, patch ImagePatch) (models.Image, error) {
	if err := validation.ValidateStruct(&patch); err != nil {
		return models.Image{}, err
	}

	image, err := s.store.GetImage(ctx, ownerID, id)
	if err != nil {
		return models.Image{}, err
	}
	if patch.Grade != nil {
		image.Grade = *patch.Grade
	}
	if patch.CaptureTime != nil {
		image.CaptureTime = patch.CaptureTime.UTC()
	}
	if err := s.store.UpdateImage(ctx, &image); err != nil {
		return models.Image{}, err
	}
	return image, nil
}
