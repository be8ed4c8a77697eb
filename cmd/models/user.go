package models

import (
	"time"

	"gorm.io/gorm"
)

type Business struct {
	gorm.Model
	Name     string `gorm:"column:name;size:255;not null" json:"name"`
	Timezone string `gorm:"column:timezone;size:64;not null;default:UTC" json:"timezone"`
}

func (Business) TableName() string {
	return "businesses"
}

type User struct {
	gorm.Model
	BusinessID            uint      `gorm:"column:business_id;not null;index" json:"business_id"`
	FullName              string    `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Email                 string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash          string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role                  string    `gorm:"column:role;size:50;not null;default:owner" json:"role"`
	Refresh               string    `gorm:"column:refresh_token;size:255" json:"-"`
	RefreshTokenExpiredAt time.Time `gorm:"column:refresh_token_expired_at" json:"-"`

	Business *Business `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
}
