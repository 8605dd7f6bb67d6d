package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/linegrade/models"
)

type LineView struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Product string `json:"product"`
}

type CameraSummary struct {
	ID             uint      `json:"id"`
	ProductionLine *LineView `json:"production_line"`
	IP             string    `json:"IP"`
}

type CameraDetail struct {
	CameraSummary
	Username string `json:"username"`
	Password string `json:"password"`
}

type ItemView struct {
	ID    uuid.UUID `json:"id"`
	Index int64     `json:"index"`
}

type ImageSummary struct {
	ID          uint      `json:"id"`
	Item        *ItemView `json:"item"`
	Grade       int       `json:"grade"`
	CaptureTime time.Time `json:"capture_time"`
}

type ImageDetail struct {
	ImageSummary
	Camera    *CameraSummary `json:"camera"`
	CreatedAt time.Time      `json:"created_at"`
	Image     *string        `json:"image"`
}

type UserView struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func lineView(line *models.ProductionLine) *LineView {
	if line == nil {
		return nil
	}
	return &LineView{ID: line.ID, Name: line.Name, Product: line.Product}
}

func cameraSummary(camera *models.Camera) *CameraSummary {
	if camera == nil {
		return nil
	}
	return &CameraSummary{
		ID:             camera.ID,
		ProductionLine: lineView(camera.ProductionLine),
		IP:             camera.IP,
	}
}

func cameraDetail(camera models.Camera) CameraDetail {
	return CameraDetail{
		CameraSummary: *cameraSummary(&camera),
		Username:      camera.Username,
		Password:      camera.Password,
	}
}

func itemView(item *models.Item) *ItemView {
	if item == nil {
		return nil
	}
	return &ItemView{ID: item.ID, Index: item.Index}
}

func imageSummary(image models.Image) ImageSummary {
	return ImageSummary{
		ID:          image.ID,
		Item:        itemView(image.Item),
		Grade:       image.Grade,
		CaptureTime: image.CaptureTime,
	}
}

func imageDetail(image models.Image) ImageDetail {
	return ImageDetail{
		ImageSummary: imageSummary(image),
		Camera:       cameraSummary(image.Camera),
		CreatedAt:    image.CreatedAt,
		Image:        image.FilePath,
	}
}

func userView(user models.User) UserView {
	return UserView{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}
}

func mapViews[T, V any](rows []T, view func(T) V) []V {
	out := make([]V, 0, len(rows))
	for _, row := range rows {
		out = append(out, view(row))
	}
	return out
}
