package schedule

import (
	"time"

	"github.com/samber/mo"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
)

// exceptionKey identifies one instance of a recurring appointment.
// Appointment times are minute-granular, so second precision is enough
// and keeps equality independent of wall-clock formatting and zone.
type exceptionKey struct {
	appointmentID uint
	startUnix     int64
}

// ExceptionIndex answers "is this generated instant skipped or moved"
// for a batch of exceptions. At most one exception applies per instant;
// when duplicates exist the most recently created row wins.
type ExceptionIndex struct {
	byKey map[exceptionKey]models.AppointmentException
}

func NewExceptionIndex(excs []models.AppointmentException) *ExceptionIndex {
	ix := &ExceptionIndex{byKey: make(map[exceptionKey]models.AppointmentException, len(excs))}
	for _, exc := range excs {
		key := exceptionKey{exc.AppointmentID, exc.OriginalStartAt.Unix()}
		if prev, ok := ix.byKey[key]; ok && prev.CreatedAt.After(exc.CreatedAt) {
			continue
		}
		ix.byKey[key] = exc
	}
	return ix
}

// Lookup returns the exception overriding the given generated instant,
// if any.
func (ix *ExceptionIndex) Lookup(appointmentID uint, start time.Time) mo.Option[models.AppointmentException] {
	exc, ok := ix.byKey[exceptionKey{appointmentID, start.Unix()}]
	if !ok {
		return mo.None[models.AppointmentException]()
	}
	return mo.Some(exc)
}

// Apply resolves the effective start and duration for one generated
// instant. The third return is false when a skip exception suppresses
// the occurrence entirely.
func (ix *ExceptionIndex) Apply(appointmentID uint, start time.Time, durationMin int) (time.Time, int, bool) {
	exc, ok := ix.Lookup(appointmentID, start).Get()
	if !ok {
		return start, durationMin, true
	}
	if exc.Kind == models.ExceptionSkip {
		return start, durationMin, false
	}
	if exc.NewStartAt != nil {
		start = *exc.NewStartAt
	}
	if exc.NewDurationMin != nil {
		durationMin = *exc.NewDurationMin
	}
	return start, durationMin, true
}
