package models

import (
	"time"

	"gorm.io/gorm"
)

// Exception kinds.
const (
	ExceptionSkip = "skip"
	ExceptionMove = "move"
)

// AppointmentException overrides a single instance of a recurring
// appointment. It is matched against generated occurrences by the
// composite key (AppointmentID, OriginalStartAt) using instant equality,
// never by comparing formatted timestamp strings.
type AppointmentException struct {
	gorm.Model
	BusinessID      uint       `gorm:"column:business_id;not null;index" json:"business_id"`
	AppointmentID   uint       `gorm:"column:appointment_id;not null;index" json:"appointment_id"`
	OriginalStartAt time.Time  `gorm:"column:original_start_at;not null" json:"original_start_at"`
	Kind            string     `gorm:"column:kind;size:10;not null" json:"kind"`
	NewStartAt      *time.Time `gorm:"column:new_start_at" json:"new_start_at,omitempty"`
	NewDurationMin  *int       `gorm:"column:new_duration_min" json:"new_duration_min,omitempty"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}

func (AppointmentException) TableName() string {
	return "appointment_exceptions"
}
