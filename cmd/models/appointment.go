package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Lifecycle states for an appointment.
const (
	StatusPending   = "pending"
	StatusDone      = "done"
	StatusCancelled = "cancelled"
)

// Recurrence frequencies.
const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
)

// Payment states.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Appointment struct {
	gorm.Model
	BusinessID    uint      `gorm:"column:business_id;not null;index" json:"business_id"`
	ClientID      *uint     `gorm:"column:client_id" json:"client_id,omitempty"`
	ServiceID     *uint     `gorm:"column:service_id" json:"service_id,omitempty"`
	CustomService string    `gorm:"column:custom_service;size:255" json:"custom_service,omitempty"`
	CustomPrice   float64   `gorm:"column:custom_price" json:"custom_price,omitempty"`
	Title         string    `gorm:"column:title;size:255;not null" json:"title"`
	StartAt       time.Time `gorm:"column:start_at;not null;index" json:"start_at"`
	DurationMin   int       `gorm:"column:duration_min;not null" json:"duration_min"`
	Timezone      string    `gorm:"column:timezone;size:64" json:"timezone,omitempty"`
	Status        string    `gorm:"column:status;size:20;not null;default:pending" json:"status"`
	StaffID       *uint     `gorm:"column:staff_id" json:"staff_id,omitempty"`

	IsRecurring bool       `gorm:"column:is_recurring;default:false" json:"is_recurring"`
	Frequency   string     `gorm:"column:frequency;size:10" json:"frequency,omitempty"`
	Interval    int        `gorm:"column:interval;default:1" json:"interval,omitempty"`
	Weekdays    int16      `gorm:"column:weekdays;default:0" json:"weekdays,omitempty"`
	Until       *time.Time `gorm:"column:until" json:"until,omitempty"`
	Count       *int       `gorm:"column:count" json:"count,omitempty"`

	PaymentMethod string  `gorm:"column:payment_method;size:20" json:"payment_method,omitempty"`
	ListPrice     float64 `gorm:"column:list_price" json:"list_price"`
	DiscountPct   float64 `gorm:"column:discount_pct" json:"discount_pct"`
	FinalPrice    float64 `gorm:"column:final_price" json:"final_price"`
	PaymentStatus string  `gorm:"column:payment_status;size:20;not null;default:unpaid" json:"payment_status"`
	PaymentRef    string  `gorm:"column:payment_ref;size:64" json:"payment_ref,omitempty"`
	PaymentNotes  string  `gorm:"column:payment_notes;type:text" json:"payment_notes,omitempty"`

	StartedAt         *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt       *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ActualDurationMin *int       `gorm:"column:actual_duration_min" json:"actual_duration_min,omitempty"`

	Client  *Client  `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Staff   *Staff   `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}

// EndAt returns the scheduled end instant of the base appointment.
func (a *Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.DurationMin) * time.Minute)
}

// WeekdayList decodes the weekday bitmask (bit 0 = Monday .. bit 6 = Sunday).
func (a *Appointment) WeekdayList() []int {
	var days []int
	for i := 0; i < 7; i++ {
		if a.Weekdays&(1<<i) != 0 {
			days = append(days, i)
		}
	}
	return days
}

// Validate enforces the structural invariants handlers must reject on:
// positive duration, a recurrence rule present exactly when the appointment
// is recurring, and a recognized frequency when one is set.
func (a *Appointment) Validate() error {
	if a.DurationMin <= 0 {
		return errors.New("duration must be positive")
	}
	if a.IsRecurring {
		switch a.Frequency {
		case FreqDaily, FreqWeekly, FreqMonthly:
		case "":
			return errors.New("recurring appointment requires a frequency")
		default:
			return fmt.Errorf("unknown frequency %q", a.Frequency)
		}
		if a.Interval < 1 {
			return errors.New("recurrence interval must be at least 1")
		}
	} else if a.Frequency != "" {
		return errors.New("non-recurring appointment must not carry a recurrence rule")
	}
	return nil
}
