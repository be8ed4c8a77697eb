package models

import (
	"gorm.io/gorm"
)

// Service is a catalog entry the business offers (haircut, color, etc).
type Service struct {
	gorm.Model
	BusinessID         uint    `gorm:"column:business_id;not null;index" json:"business_id"`
	Name               string  `gorm:"column:name;size:255;not null" json:"name"`
	Price              float64 `gorm:"column:price;not null" json:"price"`
	DefaultDurationMin int     `gorm:"column:default_duration_min;default:30" json:"default_duration_min"`
	Active             bool    `gorm:"column:active;default:true" json:"active"`
}
