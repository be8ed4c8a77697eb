package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
)

// Clock abstracts wall-clock time so status derivation is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}

// AppointmentSource supplies candidate appointments for a window and
// persists the time-driven pending -> done promotion.
type AppointmentSource interface {
	Candidates(ctx context.Context, businessID uint, from, to time.Time) ([]models.Appointment, error)
	MarkDone(ctx context.Context, id uint, completedAt time.Time) error
}

// ExceptionSource supplies skip/move overrides.
type ExceptionSource interface {
	ListExceptions(ctx context.Context, businessID uint) ([]models.AppointmentException, error)
}

// HistorySink records client-visible side effects. HasVisit is the
// idempotency guard: a visit is recorded at most once per appointment.
type HistorySink interface {
	HasVisit(ctx context.Context, appointmentID uint) (bool, error)
	RecordVisitCompleted(ctx context.Context, businessID, clientID, appointmentID uint, occurredAt time.Time) error
	RecordCancellation(ctx context.Context, businessID, clientID, appointmentID uint, reason string) error
}

// Occurrence is one concrete, time-bounded instance of an appointment,
// derived at query time. It is never persisted.
type Occurrence struct {
	ID            string    `json:"id"`
	AppointmentID uint      `json:"appointment_id"`
	Title         string    `json:"title"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Status        string    `json:"status"`
	IsRecurring   bool      `json:"is_recurring"`
	ClientID      *uint     `json:"client_id,omitempty"`
	ServiceID     *uint     `json:"service_id,omitempty"`
	StaffID       *uint     `json:"staff_id,omitempty"`
}

// InvalidRule reports a recurring appointment whose rule could not be
// interpreted. These are surfaced, not silently dropped.
type InvalidRule struct {
	AppointmentID uint   `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type ExpandResult struct {
	Occurrences []Occurrence  `json:"occurrences"`
	Invalid     []InvalidRule `json:"invalid_rules,omitempty"`

	// Promoted counts non-recurring appointments moved to done during
	// this expansion.
	Promoted int `json:"-"`
}

// OccurrenceID derives the occurrence identity: the bare appointment id
// for one-off appointments, id::start for expanded recurring instances.
func OccurrenceID(appointmentID uint, start time.Time, recurring bool) string {
	if !recurring {
		return fmt.Sprintf("%d", appointmentID)
	}
	return fmt.Sprintf("%d::%s", appointmentID, start.UTC().Format(time.RFC3339))
}

// Engine expands stored appointments into occurrences and answers
// availability queries. All reads and writes go through the injected
// sources; the engine itself holds no state between calls.
type Engine struct {
	appointments AppointmentSource
	exceptions   ExceptionSource
	history      HistorySink
	clock        Clock
}

func NewEngine(appointments AppointmentSource, exceptions ExceptionSource, history HistorySink, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock
	}
	return &Engine{
		appointments: appointments,
		exceptions:   exceptions,
		history:      history,
		clock:        clock,
	}
}

// Expand produces every occurrence intersecting [from, to), recurring
// rules included, with exceptions applied and lifecycle status derived
// against the current time. Results are sorted by start ascending.
//
// As a side effect, non-recurring pending appointments whose window has
// fully elapsed are persisted as done and a client visit is recorded
// (once per appointment, guarded by the history log).
func (e *Engine) Expand(ctx context.Context, businessID uint, from, to time.Time) (ExpandResult, error) {
	var result ExpandResult

	if to.Before(from) {
		return result, errors.New("expand: window end before window start")
	}

	now := e.clock.Now()

	appts, err := e.appointments.Candidates(ctx, businessID, from, to)
	if err != nil {
		return result, fmt.Errorf("expand: loading appointments: %w", err)
	}
	excs, err := e.exceptions.ListExceptions(ctx, businessID)
	if err != nil {
		return result, fmt.Errorf("expand: loading exceptions: %w", err)
	}
	ix := NewExceptionIndex(excs)

	for i := range appts {
		a := &appts[i]
		if a.Status == models.StatusCancelled {
			continue
		}

		if !a.IsRecurring {
			occ, promoted, err := e.expandSingle(ctx, a, from, to, now)
			if err != nil {
				return result, err
			}
			if promoted {
				result.Promoted++
			}
			if occ != nil {
				result.Occurrences = append(result.Occurrences, *occ)
			}
			continue
		}

		rule, err := RuleForAppointment(a)
		if err != nil {
			log.Printf("Skipping appointment %d: %v", a.ID, err)
			result.Invalid = append(result.Invalid, InvalidRule{AppointmentID: a.ID, Reason: err.Error()})
			continue
		}

		for _, start := range rule.Between(from, to, true) {
			effStart, durationMin, keep := ix.Apply(a.ID, start, a.DurationMin)
			if !keep {
				continue
			}
			effEnd := effStart.Add(time.Duration(durationMin) * time.Minute)

			// Recurring instances share the base status; only the
			// time-based pending -> done derivation is per instance.
			status := a.Status
			if status == models.StatusPending && effEnd.Before(now) {
				status = models.StatusDone
			}

			result.Occurrences = append(result.Occurrences, Occurrence{
				ID:            OccurrenceID(a.ID, start, true),
				AppointmentID: a.ID,
				Title:         a.Title,
				StartAt:       effStart,
				EndAt:         effEnd,
				Status:        status,
				IsRecurring:   true,
				ClientID:      a.ClientID,
				ServiceID:     a.ServiceID,
				StaffID:       a.StaffID,
			})
		}
	}

	sort.Slice(result.Occurrences, func(i, j int) bool {
		return result.Occurrences[i].StartAt.Before(result.Occurrences[j].StartAt)
	})
	return result, nil
}

// expandSingle handles one non-recurring appointment: window intersection,
// elapsed-status promotion, and the visit side effect.
func (e *Engine) expandSingle(ctx context.Context, a *models.Appointment, from, to, now time.Time) (*Occurrence, bool, error) {
	end := a.EndAt()
	if !intervalsOverlap(a.StartAt, end, from, to) {
		return nil, false, nil
	}

	status := a.Status
	promoted := false

	if status == models.StatusPending && end.Before(now) {
		if err := e.appointments.MarkDone(ctx, a.ID, end); err != nil {
			return nil, false, fmt.Errorf("expand: marking appointment %d done: %w", a.ID, err)
		}
		status = models.StatusDone
		promoted = true

		if a.ClientID != nil {
			seen, err := e.history.HasVisit(ctx, a.ID)
			if err != nil {
				return nil, false, fmt.Errorf("expand: checking visit history for appointment %d: %w", a.ID, err)
			}
			if !seen {
				if err := e.history.RecordVisitCompleted(ctx, a.BusinessID, *a.ClientID, a.ID, end); err != nil {
					return nil, false, fmt.Errorf("expand: recording visit for appointment %d: %w", a.ID, err)
				}
			}
		}
	}

	return &Occurrence{
		ID:            OccurrenceID(a.ID, a.StartAt, false),
		AppointmentID: a.ID,
		Title:         a.Title,
		StartAt:       a.StartAt,
		EndAt:         end,
		Status:        status,
		ClientID:      a.ClientID,
		ServiceID:     a.ServiceID,
		StaffID:       a.StaffID,
	}, promoted, nil
}

// Half-open on both sides: touching intervals do not overlap.
func intervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
