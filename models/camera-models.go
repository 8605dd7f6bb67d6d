package models

import "time"

// Camera is addressed by its IP when images are ingested, so IP is unique.
type Camera struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	UserID           uint            `json:"-" gorm:"not null;index"`
	User             *User           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ProductionLineID uint            `json:"-" gorm:"not null;index"`
	ProductionLine   *ProductionLine `json:"production_line,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	IP               string          `json:"IP" gorm:"column:ip;size:45;not null;uniqueIndex"`
	Username         string          `json:"username" gorm:"size:255;not null"`
	Password         string          `json:"password" gorm:"size:255;not null"`
	CreatedAt        time.Time       `json:"-"`
	UpdatedAt        time.Time       `json:"-"`
}

func (c Camera) String() string {
	return "Camera at " + c.IP
}
