package models

import (
	"testing"
	"time"
)

func TestAppointmentValidate(t *testing.T) {
	base := Appointment{
		Title:       "Corte",
		StartAt:     time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		DurationMin: 30,
		Status:      StatusPending,
	}

	tests := []struct {
		name    string
		mutate  func(*Appointment)
		wantErr bool
	}{
		{"valid one-off", func(a *Appointment) {}, false},
		{"zero duration", func(a *Appointment) { a.DurationMin = 0 }, true},
		{"negative duration", func(a *Appointment) { a.DurationMin = -15 }, true},
		{"valid weekly", func(a *Appointment) {
			a.IsRecurring = true
			a.Frequency = FreqWeekly
			a.Interval = 1
		}, false},
		{"recurring without frequency", func(a *Appointment) {
			a.IsRecurring = true
			a.Interval = 1
		}, true},
		{"recurring unknown frequency", func(a *Appointment) {
			a.IsRecurring = true
			a.Frequency = "yearly"
			a.Interval = 1
		}, true},
		{"recurring zero interval", func(a *Appointment) {
			a.IsRecurring = true
			a.Frequency = FreqDaily
		}, true},
		{"rule on non-recurring", func(a *Appointment) {
			a.Frequency = FreqDaily
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWeekdayList(t *testing.T) {
	a := Appointment{Weekdays: 1<<0 | 1<<3 | 1<<6} // Monday, Thursday, Sunday
	got := a.WeekdayList()
	want := []int{0, 3, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if list := (&Appointment{}).WeekdayList(); list != nil {
		t.Fatalf("expected nil for empty mask, got %v", list)
	}
}

func TestEndAt(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	a := Appointment{StartAt: start, DurationMin: 45}
	if got := a.EndAt(); !got.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("expected %v, got %v", start.Add(45*time.Minute), got)
	}
}
