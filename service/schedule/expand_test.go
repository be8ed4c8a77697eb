package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
)

const testBusiness uint = 1

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

// fakeStore implements all three engine collaborator interfaces in memory.
type fakeStore struct {
	appts  []models.Appointment
	excs   []models.AppointmentException
	visits map[uint]int
	marked map[uint]int
}

func newFakeStore(appts ...models.Appointment) *fakeStore {
	return &fakeStore{
		appts:  appts,
		visits: make(map[uint]int),
		marked: make(map[uint]int),
	}
}

func (s *fakeStore) Candidates(_ context.Context, businessID uint, _, _ time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range s.appts {
		if a.BusinessID == businessID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkDone(_ context.Context, id uint, completedAt time.Time) error {
	s.marked[id]++
	for i := range s.appts {
		if s.appts[i].ID == id && s.appts[i].Status == models.StatusPending {
			s.appts[i].Status = models.StatusDone
			t := completedAt
			s.appts[i].CompletedAt = &t
		}
	}
	return nil
}

func (s *fakeStore) ListExceptions(_ context.Context, businessID uint) ([]models.AppointmentException, error) {
	var out []models.AppointmentException
	for _, e := range s.excs {
		if e.BusinessID == businessID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) HasVisit(_ context.Context, appointmentID uint) (bool, error) {
	return s.visits[appointmentID] > 0, nil
}

func (s *fakeStore) RecordVisitCompleted(_ context.Context, _, _, appointmentID uint, _ time.Time) error {
	s.visits[appointmentID]++
	return nil
}

func (s *fakeStore) RecordCancellation(_ context.Context, _, _, _ uint, _ string) error {
	return nil
}

func newTestEngine(store *fakeStore, now time.Time) *Engine {
	return NewEngine(store, store, store, fakeClock{now: now})
}

func uintp(v uint) *uint { return &v }
func intp(v int) *int    { return &v }

func oneOff(id uint, start time.Time, durationMin int) models.Appointment {
	return models.Appointment{
		Model:       gorm.Model{ID: id},
		BusinessID:  testBusiness,
		Title:       "appt",
		StartAt:     start,
		DurationMin: durationMin,
		Status:      models.StatusPending,
	}
}

func weekly(id uint, start time.Time, durationMin int) models.Appointment {
	a := oneOff(id, start, durationMin)
	a.IsRecurring = true
	a.Frequency = models.FreqWeekly
	a.Interval = 1
	return a
}

func TestExpandExcludesNonRecurringOutsideWindow(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	store := newFakeStore(oneOff(1, start, 30))
	eng := newTestEngine(store, start)

	// Window is the following day; the appointment must not appear.
	res, err := eng.Expand(context.Background(), testBusiness,
		time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, res.Occurrences)
}

func TestExpandIncludesPartialOverlap(t *testing.T) {
	// 23:45 + 30min reaches into the next day's window.
	start := time.Date(2025, 3, 3, 23, 45, 0, 0, time.UTC)
	store := newFakeStore(oneOff(1, start, 30))
	eng := newTestEngine(store, start)

	res, err := eng.Expand(context.Background(), testBusiness,
		time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)
	assert.Equal(t, "1", res.Occurrences[0].ID)
}

func TestExpandWeeklyThursdayFourWeeks(t *testing.T) {
	// 2025-01-02 is a Thursday.
	anchor := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	a := weekly(1, anchor, 30)
	a.Weekdays = 1 << 3 // Thursday
	store := newFakeStore(a)
	eng := newTestEngine(store, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	res, err := eng.Expand(context.Background(), testBusiness,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 4)

	for i, occ := range res.Occurrences {
		assert.Equal(t, time.Thursday, occ.StartAt.Weekday())
		assert.Equal(t, 10, occ.StartAt.Hour())
		assert.Equal(t, anchor.AddDate(0, 0, 7*i), occ.StartAt)
		assert.Equal(t, models.StatusPending, occ.Status)
		assert.True(t, occ.IsRecurring)
	}
}

func TestExpandRecurringAnchorInFuture(t *testing.T) {
	anchor := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	a := weekly(1, anchor, 30)
	a.Frequency = models.FreqDaily
	store := newFakeStore(a)
	eng := newTestEngine(store, anchor)

	res, err := eng.Expand(context.Background(), testBusiness,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, res.Occurrences, "no instants before the anchor")
}

func TestExpandHonorsUntilAndCount(t *testing.T) {
	anchor := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	window := func(e *Engine) []Occurrence {
		res, err := e.Expand(context.Background(), testBusiness,
			anchor, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		return res.Occurrences
	}

	until := anchor.AddDate(0, 0, 14)
	a := weekly(1, anchor, 30)
	a.Until = &until
	eng := newTestEngine(newFakeStore(a), anchor)
	assert.Len(t, window(eng), 3, "until bound")

	b := weekly(2, anchor, 30)
	b.Count = intp(2)
	eng = newTestEngine(newFakeStore(b), anchor)
	assert.Len(t, window(eng), 2, "count bound")
}

func TestExpandSkipExceptionRemovesExactlyOne(t *testing.T) {
	anchor := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	a := weekly(1, anchor, 30)
	store := newFakeStore(a)
	store.excs = []models.AppointmentException{{
		BusinessID:      testBusiness,
		AppointmentID:   1,
		OriginalStartAt: anchor.AddDate(0, 0, 7),
		Kind:            models.ExceptionSkip,
	}}
	eng := newTestEngine(store, anchor)

	res, err := eng.Expand(context.Background(), testBusiness,
		anchor, time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 3)
	for _, occ := range res.Occurrences {
		assert.NotEqual(t, anchor.AddDate(0, 0, 7), occ.StartAt)
	}
}

func TestExpandMoveExceptionMovesOnlyTarget(t *testing.T) {
	anchor := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	target := anchor.AddDate(0, 0, 14)
	moved := target.Add(2 * time.Hour)
	a := weekly(1, anchor, 30)
	store := newFakeStore(a)
	store.excs = []models.AppointmentException{{
		BusinessID:      testBusiness,
		AppointmentID:   1,
		OriginalStartAt: target,
		Kind:            models.ExceptionMove,
		NewStartAt:      &moved,
		NewDurationMin:  intp(45),
	}}
	eng := newTestEngine(store, anchor)

	res, err := eng.Expand(context.Background(), testBusiness,
		anchor, time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 4)

	var found bool
	for _, occ := range res.Occurrences {
		if occ.StartAt.Equal(moved) {
			found = true
			assert.Equal(t, moved.Add(45*time.Minute), occ.EndAt)
			// Identity still keyed by the original generated instant.
			assert.Equal(t, OccurrenceID(1, target, true), occ.ID)
			continue
		}
		assert.Equal(t, 30*time.Minute, occ.EndAt.Sub(occ.StartAt))
		assert.Equal(t, time.Thursday, occ.StartAt.Weekday())
	}
	assert.True(t, found, "moved occurrence present at new start")
}

func TestExpandPromotesElapsedPendingAndRecordsVisit(t *testing.T) {
	// Appointment today 09:00 for 30 minutes; it is now 10:00.
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	a := oneOff(1, start, 30)
	a.ClientID = uintp(7)
	store := newFakeStore(a)
	eng := newTestEngine(store, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC))

	res, err := eng.Expand(context.Background(), testBusiness,
		time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)

	assert.Equal(t, models.StatusDone, res.Occurrences[0].Status)
	assert.Equal(t, 1, res.Promoted)
	assert.Equal(t, 1, store.marked[1])
	assert.Equal(t, 1, store.visits[1])
	assert.Equal(t, models.StatusDone, store.appts[0].Status, "promotion persisted")
}

func TestExpandVisitRecordedAtMostOnce(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	a := oneOff(1, start, 30)
	a.ClientID = uintp(7)
	store := newFakeStore(a)
	eng := newTestEngine(store, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))

	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	_, err := eng.Expand(context.Background(), testBusiness, from, to)
	require.NoError(t, err)
	_, err = eng.Expand(context.Background(), testBusiness, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, store.visits[1])

	// Even if the stored status somehow reverts, the history guard holds.
	store.appts[0].Status = models.StatusPending
	_, err = eng.Expand(context.Background(), testBusiness, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, store.visits[1])
}

func TestExpandRecurringStatusDerivedPerInstance(t *testing.T) {
	anchor := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	a := weekly(1, anchor, 30)
	store := newFakeStore(a)
	// Between the second and third instance.
	eng := newTestEngine(store, anchor.AddDate(0, 0, 10))

	res, err := eng.Expand(context.Background(), testBusiness,
		anchor, time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 4)

	assert.Equal(t, models.StatusDone, res.Occurrences[0].Status)
	assert.Equal(t, models.StatusDone, res.Occurrences[1].Status)
	assert.Equal(t, models.StatusPending, res.Occurrences[2].Status)
	assert.Equal(t, models.StatusPending, res.Occurrences[3].Status)

	// Derivation only: nothing persisted for recurring instances.
	assert.Empty(t, store.marked)
	assert.Empty(t, store.visits)
}

func TestExpandReportsBadFrequency(t *testing.T) {
	a := weekly(1, time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), 30)
	a.Frequency = "fortnightly"
	store := newFakeStore(a)
	eng := newTestEngine(store, a.StartAt)

	res, err := eng.Expand(context.Background(), testBusiness,
		a.StartAt, a.StartAt.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, res.Occurrences)
	require.Len(t, res.Invalid, 1)
	assert.Equal(t, uint(1), res.Invalid[0].AppointmentID)
	assert.Contains(t, res.Invalid[0].Reason, "fortnightly")
}

func TestExpandSkipsCancelled(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	a := oneOff(1, start, 30)
	a.Status = models.StatusCancelled
	store := newFakeStore(a)
	eng := newTestEngine(store, start)

	res, err := eng.Expand(context.Background(), testBusiness,
		start.AddDate(0, 0, -1), start.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, res.Occurrences)
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	eng := newTestEngine(newFakeStore(), time.Now())
	_, err := eng.Expand(context.Background(), testBusiness,
		time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestExpandResultsSortedByStart(t *testing.T) {
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(
		oneOff(1, day.Add(15*time.Hour), 30),
		oneOff(2, day.Add(9*time.Hour), 30),
		oneOff(3, day.Add(12*time.Hour), 30),
	)
	eng := newTestEngine(store, day)

	res, err := eng.Expand(context.Background(), testBusiness, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 3)
	for i := 1; i < len(res.Occurrences); i++ {
		assert.False(t, res.Occurrences[i].StartAt.Before(res.Occurrences[i-1].StartAt))
	}
}
