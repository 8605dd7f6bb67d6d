package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinGrade = 0
	MaxGrade = 3
)

// Image is one graded photograph of an Item taken by a Camera. Each camera
// contributes at most one image per item.
type Image struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ItemID      uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_images_item_camera"`
	Item        *Item     `json:"item,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CameraID    uint      `json:"-" gorm:"not null;index;uniqueIndex:idx_images_item_camera"`
	Camera      *Camera   `json:"camera,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Grade       int       `json:"grade" gorm:"not null;check:chk_images_grade,grade >= 0 AND grade <= 3"`
	CaptureTime time.Time `json:"capture_time" gorm:"not null;index"`
	FilePath    *string   `json:"image" gorm:"column:image;size:512"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i Image) String() string {
	if i.Item != nil {
		return "Image of " + i.Item.String()
	}
	return "Image of Item " + i.ItemID.String()
}

// All lists the models in migration order.
func All() []any {
	return []any{&User{}, &ProductionLine{}, &Camera{}, &Item{}, &Image{}}
}
