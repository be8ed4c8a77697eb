package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotUnavailableForSameStaffOverlap(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	existing := oneOff(1, start, 30)
	existing.StaffID = uintp(10)
	eng := newTestEngine(newFakeStore(existing), start.Add(-time.Hour))

	// Same staff member, one-minute overlap.
	ok, err := eng.IsSlotAvailable(context.Background(), testBusiness,
		start.Add(29*time.Minute), 30, 0, uintp(10))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSlotAvailableForDifferentStaff(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	existing := oneOff(1, start, 30)
	existing.StaffID = uintp(10)
	eng := newTestEngine(newFakeStore(existing), start.Add(-time.Hour))

	// Identical slot but another chair.
	ok, err := eng.IsSlotAvailable(context.Background(), testBusiness, start, 30, 0, uintp(11))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnassignedBucketBlocksUnassigned(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	withStaff := oneOff(1, start, 30)
	withStaff.StaffID = uintp(10)
	unassigned := oneOff(2, start, 30)
	eng := newTestEngine(newFakeStore(withStaff, unassigned), start.Add(-time.Hour))

	// A third unassigned candidate collides with the unassigned occurrence.
	ok, err := eng.IsSlotAvailable(context.Background(), testBusiness, start, 30, 0, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Staff Y is free: the unassigned bucket never blocks an assigned one.
	ok, err = eng.IsSlotAvailable(context.Background(), testBusiness, start, 30, 0, uintp(11))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSlotAvailableWhenEditingInPlace(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	existing := oneOff(1, start, 30)
	existing.StaffID = uintp(10)
	eng := newTestEngine(newFakeStore(existing), start.Add(-time.Hour))

	ok, err := eng.IsSlotAvailable(context.Background(), testBusiness, start, 30, 1, uintp(10))
	require.NoError(t, err)
	assert.True(t, ok, "editing an appointment must not conflict with itself")
}

func TestTouchingIntervalsDoNotConflict(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	existing := oneOff(1, start, 30)
	eng := newTestEngine(newFakeStore(existing), start.Add(-time.Hour))

	// Back to back at 09:30, same (unassigned) bucket.
	ok, err := eng.IsSlotAvailable(context.Background(), testBusiness,
		start.Add(30*time.Minute), 30, 0, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecurringOccurrenceBlocksSlot(t *testing.T) {
	anchor := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	a := weekly(1, anchor, 60)
	a.StaffID = uintp(10)
	eng := newTestEngine(newFakeStore(a), anchor)

	// Three weeks later the rule still occupies Thursday 10:00.
	candidate := anchor.AddDate(0, 0, 21).Add(30 * time.Minute)
	ok, err := eng.IsSlotAvailable(context.Background(), testBusiness, candidate, 30, 0, uintp(10))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSkippedOccurrenceFreesSlot(t *testing.T) {
	anchor := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	a := weekly(1, anchor, 60)
	a.StaffID = uintp(10)
	store := newFakeStore(a)
	store.excs = append(store.excs, exceptionSkipAt(1, anchor.AddDate(0, 0, 7)))
	eng := newTestEngine(store, anchor)

	ok, err := eng.IsSlotAvailable(context.Background(), testBusiness,
		anchor.AddDate(0, 0, 7), 30, 0, uintp(10))
	require.NoError(t, err)
	assert.True(t, ok)
}
