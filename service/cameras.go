package service

import (
	"context"
	"net/netip"

	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/repository"
	"github.com/krishkalaria12/linegrade/validation"
)

type CameraInput struct {
	ProductionLine *LineInput `json:"production_line" validate:"required"`
	IP             string     `json:"IP" validate:"required,ip"`
	Username       string     `json:"username" validate:"required,max=255"`
	Password       string     `json:"password" validate:"required,max=255"`
}

type CameraPatch struct {
	ProductionLine *LineInput `json:"production_line"`
	IP             *string    `json:"IP" validate:"omitempty,ip"`
	Username       *string    `json:"username" validate:"omitempty,min=1,max=255"`
	Password       *string    `json:"password" validate:"omitempty,min=1,max=255"`
}

func (in CameraInput) Patch() CameraPatch {
	return CameraPatch{ProductionLine: in.ProductionLine, IP: &in.IP, Username: &in.Username, Password: &in.Password}
}

// Cameras registers cameras, resolving the nested production line for the
// owner on the way.
type Cameras struct {
	store *repository.Store
}

func NewCameras(store *repository.Store) *Cameras {
	return &Cameras{store: store}
}

func (s *Cameras) Create(ctx context.Context, ownerID uint, in CameraInput) (models.Camera, error) {
	if err := validation.ValidateStruct(&in); err != nil {
		return models.Camera{}, err
	}
	in.IP = canonicalIP(in.IP)

	var camera models.Camera
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		line, _, err := resolveLine(ctx, tx, ownerID, *in.ProductionLine)
		if err != nil {
			return err
		}

		camera = models.Camera{
			UserID:           ownerID,
			ProductionLineID: line.ID,
			IP:               in.IP,
			Username:         in.Username,
			Password:         in.Password,
		}
		return tx.CreateCamera(ctx, &camera)
	})
	if err != nil {
		return models.Camera{}, err
	}
	return camera, nil
}

func (s *Cameras) Update(ctx context.Context, ownerID, id uint, patch CameraPatch) (models.Camera, error) {
	if err := validation.ValidateStruct(&patch); err != nil {
		return models.Camera{}, err
	}

	var camera models.Camera
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if camera, err = tx.GetCamera(ctx, ownerID, id); err != nil {
			return err
		}

		if patch.ProductionLine != nil {
			line, _, err := resolveLine(ctx, tx, ownerID, *patch.ProductionLine)
			if err != nil {
				return err
			}
			camera.ProductionLineID = line.ID
			camera.ProductionLine = nil
		}
		if patch.IP != nil {
			camera.IP = canonicalIP(*patch.IP)
		}
		if patch.Username != nil {
			camera.Username = *patch.Username
		}
		if patch.Password != nil {
			camera.Password = *patch.Password
		}
		return tx.UpdateCamera(ctx, &camera)
	})
	if err != nil {
		return models.Camera{}, err
	}
	return camera, nil
}

// canonicalIP returns the standard spelling of a validated address, so every
// spelling of one IPv6 address (and IPv4-mapped forms) names the same camera.
func canonicalIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}
	return addr.Unmap().String()
}
