package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

var fixedNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *EntityStore {
	t.Helper()
	seq := 0
	store := NewEntityStore(
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		}),
	)
	require.NoError(t, SeedDemoData(store))
	return store
}

func TestSeedDemoData(t *testing.T) {
	store := newTestStore(t)

	assert.Len(t, store.Courses(), 7)
	assert.Len(t, store.TimeSlots(), 18)
	assert.Len(t, store.Rooms(), 5)
	assert.Len(t, store.TimingRequests(), 5)
	assert.Len(t, store.Polls(), 3)

	notifications := store.Notifications()
	require.Len(t, notifications, 4)
	assert.Equal(t, "1", notifications[0].ID)
	assert.Equal(t, "4", notifications[3].ID)

	for _, poll := range store.Polls() {
		for _, option := range poll.Options {
			assert.Equal(t, len(option.Voters), option.Votes, "poll %s option %s", poll.ID, option.ID)
		}
	}
}

func TestAddCourseAssignsID(t *testing.T) {
	store := newTestStore(t)

	course, err := store.AddCourse(models.Course{Name: "Compilers", Code: "CS402", Credits: 3, Capacity: 40})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", course.ID)

	courses := store.Courses()
	assert.Equal(t, course, courses[len(courses)-1])

	_, err = store.AddCourse(models.Course{ID: "1", Name: "dup"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestUpdateCourseMergesPatch(t *testing.T) {
	store := newTestStore(t)

	enrolled := 70
	course, err := store.UpdateCourse("1", models.CoursePatch{Enrolled: &enrolled})
	require.NoError(t, err)
	assert.Equal(t, 70, course.Enrolled)
	assert.Equal(t, "CS301", course.Code)

	_, err = store.UpdateCourse("missing", models.CoursePatch{Enrolled: &enrolled})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCourseCascadesSlots(t *testing.T) {
	store := newTestStore(t)

	removed, err := store.DeleteCourse("1")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Len(t, store.Courses(), 6)
	for _, slot := range store.TimeSlots() {
		assert.NotEqual(t, "1", slot.CourseID)
	}

	before := len(store.TimeSlots())
	_, err = store.DeleteCourse("1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, store.TimeSlots(), before)
}

func TestDeleteCourseClosesItsPolls(t *testing.T) {
	store := newTestStore(t)

	_, err := store.DeleteCourse("1")
	require.NoError(t, err)

	for _, poll := range store.Polls() {
		switch poll.ID {
		case "1":
			assert.False(t, poll.IsActive, "poll of the deleted course stays open")
			assert.Equal(t, 9, poll.TotalVotes())
		case "2":
			assert.True(t, poll.IsActive)
		}
	}
}

func TestUpdateTimeSlotKeepsID(t *testing.T) {
	store := newTestStore(t)

	room := "CR-200"
	slot, err := store.UpdateTimeSlot("2", models.TimeSlotPatch{Room: &room})
	require.NoError(t, err)
	assert.Equal(t, "2", slot.ID)
	assert.Equal(t, "CR-200", slot.Room)
	assert.Equal(t, models.Wednesday, slot.Day)
}

func TestDeleteTimeSlotMissingLeavesStoreUntouched(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteTimeSlot("404")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, store.TimeSlots(), 18)
}

func TestAddNotificationPrependsAndStamps(t *testing.T) {
	store := newTestStore(t)

	n, err := store.AddNotification(models.Notification{UserID: "2", Title: "Hello", Type: models.NotificationInfo})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, n.CreatedAt)
	assert.False(t, n.Read)
	assert.Equal(t, n.ID, store.Notifications()[0].ID)
}

func TestMarkNotificationReadIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	n, err := store.MarkNotificationRead("1")
	require.NoError(t, err)
	assert.True(t, n.Read)

	n, err = store.MarkNotificationRead("1")
	require.NoError(t, err)
	assert.True(t, n.Read)

	_, err = store.MarkNotificationRead("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	boom := errors.New("boom")

	err := store.Update(func(tx *Tx) error {
		if _, err := tx.DeleteCourse("1"); err != nil {
			return err
		}
		if _, err := tx.AddNotification(models.Notification{UserID: "2", Title: "x"}); err != nil {
			return err
		}
		room := "Lab-999"
		if _, err := tx.UpdateTimeSlot("4", models.TimeSlotPatch{Room: &room}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Len(t, store.Courses(), 7)
	assert.Equal(t, "1", store.Courses()[0].ID)
	assert.Len(t, store.TimeSlots(), 18)
	assert.Equal(t, "1", store.TimeSlots()[0].ID)
	assert.Len(t, store.Notifications(), 4)
	assert.True(t, store.Polls()[0].IsActive)

	var slot models.TimeSlot
	require.NoError(t, store.View(func(tx *Tx) error {
		var err error
		slot, err = tx.TimeSlot("4")
		return err
	}))
	assert.Equal(t, "CR-103", slot.Room)
}

func TestPollsAreCopied(t *testing.T) {
	store := newTestStore(t)

	polls := store.Polls()
	polls[0].Options[0].Voters[0] = "tampered"
	polls[0].Options[0].Votes = 99

	fresh := store.Polls()
	assert.Equal(t, "student1", fresh[0].Options[0].Voters[0])
	assert.Equal(t, 3, fresh[0].Options[0].Votes)
}
