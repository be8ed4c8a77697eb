package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
)

func exceptionSkipAt(appointmentID uint, at time.Time) models.AppointmentException {
	return models.AppointmentException{
		BusinessID:      testBusiness,
		AppointmentID:   appointmentID,
		OriginalStartAt: at,
		Kind:            models.ExceptionSkip,
	}
}

func TestExceptionLookupMatchesByInstantNotFormatting(t *testing.T) {
	at := time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC)
	ix := NewExceptionIndex([]models.AppointmentException{exceptionSkipAt(1, at)})

	// Same instant expressed in another zone still matches.
	buenosAires := time.FixedZone("-03", -3*60*60)
	assert.True(t, ix.Lookup(1, at.In(buenosAires)).IsPresent())

	assert.True(t, ix.Lookup(2, at).IsAbsent(), "other appointment")
	assert.True(t, ix.Lookup(1, at.Add(time.Minute)).IsAbsent(), "other instant")
}

func TestExceptionApplyDefaults(t *testing.T) {
	at := time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC)
	moved := at.Add(time.Hour)

	// Move with only a new start keeps the base duration.
	ix := NewExceptionIndex([]models.AppointmentException{{
		AppointmentID:   1,
		OriginalStartAt: at,
		Kind:            models.ExceptionMove,
		NewStartAt:      &moved,
	}})
	start, dur, keep := ix.Apply(1, at, 30)
	assert.True(t, keep)
	assert.Equal(t, moved, start)
	assert.Equal(t, 30, dur)

	// Move with only a new duration keeps the generated start.
	ix = NewExceptionIndex([]models.AppointmentException{{
		AppointmentID:   1,
		OriginalStartAt: at,
		Kind:            models.ExceptionMove,
		NewDurationMin:  intp(45),
	}})
	start, dur, keep = ix.Apply(1, at, 30)
	assert.True(t, keep)
	assert.Equal(t, at, start)
	assert.Equal(t, 45, dur)

	// Untouched instants pass through.
	start, dur, keep = ix.Apply(1, at.Add(24*time.Hour), 30)
	assert.True(t, keep)
	assert.Equal(t, at.Add(24*time.Hour), start)
	assert.Equal(t, 30, dur)
}

func TestExceptionApplySkip(t *testing.T) {
	at := time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC)
	ix := NewExceptionIndex([]models.AppointmentException{exceptionSkipAt(1, at)})
	_, _, keep := ix.Apply(1, at, 30)
	assert.False(t, keep)
}
