package models

import "time"

// ProductionLine names are unique per owner.
type ProductionLine struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"not null;uniqueIndex:idx_production_lines_owner_name"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex:idx_production_lines_owner_name"`
	Product   string    `json:"product" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (p ProductionLine) String() string {
	return p.Name + " producing " + p.Product
}
