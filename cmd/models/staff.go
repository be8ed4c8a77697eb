package models

import (
	"gorm.io/gorm"
)

type Staff struct {
	gorm.Model
	BusinessID uint   `gorm:"column:business_id;not null;index" json:"business_id"`
	FullName   string `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Phone      string `gorm:"column:phone;size:20" json:"phone,omitempty"`
	Active     bool   `gorm:"column:active;default:true" json:"active"`
}

func (Staff) TableName() string {
	return "staff"
}
