package schedule

import (
	"errors"
	"fmt"

	"github.com/teambition/rrule-go"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
)

// ErrBadFrequency marks a recurrence rule whose frequency the engine does
// not understand. Expansion reports these instead of dropping them.
var ErrBadFrequency = errors.New("unsupported recurrence frequency")

// Bit 0 = Monday .. bit 6 = Sunday, matching models.Appointment.Weekdays.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// RuleForAppointment builds the rrule evaluator for a recurring
// appointment, anchored at its start instant. WEEKLY with an empty weekday
// set falls back to the anchor's own weekday (rrule semantics). Until and
// Count are both applied when present.
func RuleForAppointment(a *models.Appointment) (*rrule.RRule, error) {
	var freq rrule.Frequency
	switch a.Frequency {
	case models.FreqDaily:
		freq = rrule.DAILY
	case models.FreqWeekly:
		freq = rrule.WEEKLY
	case models.FreqMonthly:
		freq = rrule.MONTHLY
	default:
		return nil, fmt.Errorf("appointment %d: %w: %q", a.ID, ErrBadFrequency, a.Frequency)
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: a.Interval,
		Dtstart:  a.StartAt,
	}
	if opt.Interval < 1 {
		opt.Interval = 1
	}
	for _, d := range a.WeekdayList() {
		opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
	}
	if a.Until != nil {
		opt.Until = *a.Until
	}
	if a.Count != nil {
		opt.Count = *a.Count
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("appointment %d: building rule: %w", a.ID, err)
	}
	return rule, nil
}
