package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is an object photographed from several angles, one image per camera.
type Item struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Index     int64     `json:"index" gorm:"column:item_index;not null;uniqueIndex"`
	CreatedAt time.Time `json:"-"`
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i Item) String() string {
	return "Item " + i.ID.String()
}
