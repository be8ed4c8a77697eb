package models

import (
	"time"

	"gorm.io/gorm"
)

type Client struct {
	gorm.Model
	BusinessID  uint   `gorm:"column:business_id;not null;index" json:"business_id"`
	FullName    string `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Phone       string `gorm:"column:phone;size:20" json:"phone,omitempty"`
	Email       string `gorm:"column:email;size:255" json:"email,omitempty"`
	Notes       string `gorm:"column:notes;type:text" json:"notes,omitempty"`
	VisitCount  int    `gorm:"column:visit_count;default:0" json:"visit_count"`
	CancelCount int    `gorm:"column:cancel_count;default:0" json:"cancel_count"`
}

// History entry kinds.
const (
	HistoryVisitCompleted = "visit_completed"
	HistoryCancelled      = "cancelled"
)

// ClientHistory is the append-only log of client-facing side effects.
// One visit_completed row per (appointment, occurrence) is the idempotency
// guard for the expander's status promotion.
type ClientHistory struct {
	ID            string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	BusinessID    uint      `gorm:"column:business_id;not null;index" json:"business_id"`
	ClientID      uint      `gorm:"column:client_id;not null;index" json:"client_id"`
	AppointmentID uint      `gorm:"column:appointment_id;not null;index" json:"appointment_id"`
	OccurredAt    time.Time `gorm:"column:occurred_at;not null" json:"occurred_at"`
	Kind          string    `gorm:"column:kind;size:20;not null" json:"kind"`
	Reason        string    `gorm:"column:reason;type:text" json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	Client *Client `gorm:"foreignKey:ClientID" json:"-"`
}

func (ClientHistory) TableName() string {
	return "client_history"
}
