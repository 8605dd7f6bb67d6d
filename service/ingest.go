package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/logging"
	"github.com/krishkalaria12/linegrade/metrics"
	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/repository"
	"github.com/krishkalaria12/linegrade/storage"
	"github.com/krishkalaria12/linegrade/validation"
)

type ItemRef struct {
	Index *int64 `json:"index" validate:"required"`
}

// CameraRef identifies the submitting camera. Only IP takes part in the
// lookup; the credentials are accepted for compatibility with camera
// firmware that always sends them.
type CameraRef struct {
	IP       string `json:"IP" validate:"required,ip"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Upload is the optional photo attached to a submission.
type Upload struct {
	Filename string
	Body     io.Reader
}

type ImageSubmission struct {
	Item        ItemRef    `json:"item"`
	Camera      CameraRef  `json:"camera"`
	Grade       *int       `json:"grade" validate:"required,gte=0,lte=3"`
	CaptureTime *time.Time `json:"capture_time" validate:"required"`
	File        *Upload    `json:"-" validate:"-"`
}

// Ingestor turns camera submissions into Image records.
type Ingestor struct {
	store *repository.Store
	blobs storage.BlobStore
	now   func() time.Time
}

func NewIngestor(store *repository.Store, blobs storage.BlobStore) *Ingestor {
	return &Ingestor{store: store, blobs: blobs, now: time.Now}
}

// Ingest validates sub, resolves the camera by IP and the item by index and
// stores one image for the pair. It runs in a single transaction: on any
// failure no item, image or blob is left behind.
//
// The camera is resolved before the item so an unknown camera never creates
// an orphan item.
func (in *Ingestor) Ingest(ctx context.Context, sub ImageSubmission) (image models.Image, err error) {
	defer func() { metrics.ObserveIngest(err) }()

	if err := validation.ValidateStruct(&sub); err != nil {
		return models.Image{}, err
	}
	sub.Camera.IP = canonicalIP(sub.Camera.IP)
	if sub.File != nil && in.blobs == nil {
		return models.Image{}, fmt.Errorf("no blob storage configured")
	}

	var stored string
	var itemCreated bool
	err = in.store.Transaction(ctx, func(tx *repository.Store) error {
		camera, err := tx.FindCameraByIP(ctx, sub.Camera.IP)
		if err != nil {
			if apperror.Is(err, apperror.NotFound) {
				return apperror.NotFoundf("camera %s not recognized", sub.Camera.IP)
			}
			return err
		}

		item, created, err := tx.GetOrCreateItem(ctx, *sub.Item.Index)
		if err != nil {
			return err
		}
		itemCreated = created

		image = models.Image{
			ItemID:      item.ID,
			CameraID:    camera.ID,
			Grade:       *sub.Grade,
			CaptureTime: sub.CaptureTime.UTC(),
			CreatedAt:   in.now().UTC(),
		}
		if sub.File != nil {
			p := storage.ImageFilePath(image.CreatedAt, sub.File.Filename)
			image.FilePath = &p
		}

		if err := tx.CreateImage(ctx, &image); err != nil {
			return err
		}

		if image.FilePath != nil {
			if err := in.blobs.Save(ctx, *image.FilePath, sub.File.Body); err != nil {
				return fmt.Errorf("storing image file: %w", err)
			}
			stored = *image.FilePath
		}

		image, err = tx.LoadImage(ctx, image.ID)
		return err
	})
	if err != nil {
		if stored != "" {
			if derr := in.blobs.Delete(context.WithoutCancel(ctx), stored); derr != nil {
				logging.Warn().Err(derr).Str("path", stored).Msg("failed to remove orphaned image file")
			}
		}
		return models.Image{}, err
	}

	if itemCreated {
		metrics.ItemsCreated.Inc()
	}
	logging.Info().
		Uint("image_id", image.ID).
		Str("camera_ip", sub.Camera.IP).
		Int64("item_index", *sub.Item.Index).
		Int("grade", image.Grade).
		Msg("image ingested")

	return image, nil
}
