package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestTimeSlotCreateChecksRoomAndCourse(t *testing.T) {
	store := newSeededStore(t)
	svc := NewTimeSlotService(store, nil, nil, nil)
	ctx := context.Background()
	req := dto.CreateTimeSlotRequest{CourseID: "2", Day: models.Monday, StartTime: "16:00", EndTime: "17:00", Room: "CR-101", Type: models.SlotTutorial}

	slot, err := svc.Create(ctx, req, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "gen-1", slot.ID)

	clash := req
	clash.StartTime, clash.EndTime = "15:00", "16:30"
	_, err = svc.Create(ctx, clash, adminClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	touching := req
	touching.StartTime, touching.EndTime = "15:30", "16:00"
	_, err = svc.Create(ctx, touching, adminClaims())
	require.NoError(t, err, "adjacent slots do not overlap")

	orphan := req
	orphan.CourseID, orphan.Room = "99", "CR-999"
	_, err = svc.Create(ctx, orphan, adminClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	badDay := req
	badDay.Day, badDay.Room = "Funday", "CR-999"
	_, err = svc.Create(ctx, badDay, adminClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, req, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Len(t, store.TimeSlots(), 20)
}

func TestTimeSlotUpdateRollsBackInvalidMerge(t *testing.T) {
	store := newSeededStore(t)
	svc := NewTimeSlotService(store, nil, nil, nil)
	ctx := context.Background()

	end := "08:00"
	_, err := svc.Update(ctx, "1", dto.UpdateTimeSlotRequest{EndTime: &end}, adminClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	slot, err := svc.Get(ctx, "1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "10:30", slot.EndTime)

	room := "CR-106"
	updated, err := svc.Update(ctx, "1", dto.UpdateTimeSlotRequest{Room: &room}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "CR-106", updated.Room)
	assert.Equal(t, "1", updated.CourseID)
}

func TestTimeSlotListAndConflicts(t *testing.T) {
	store := newSeededStore(t)
	svc := NewTimeSlotService(store, nil, nil, nil)
	ctx := context.Background()

	slots, err := svc.List(ctx, dto.TimeSlotQuery{Day: "monday"}, studentClaims())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "1", slots[0].ID)
	assert.Equal(t, "6", slots[1].ID)

	conflicts, err := svc.Conflicts(ctx, dto.ConflictQuery{Day: models.Tuesday, StartTime: "10:00", EndTime: "12:00", Room: "cr-105"})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "10", conflicts[0].ID)

	conflicts, err = svc.Conflicts(ctx, dto.ConflictQuery{Day: models.Tuesday, StartTime: "10:00", EndTime: "12:00", Room: "CR-105", ExcludeID: "10"})
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	require.NoError(t, svc.Delete(ctx, "10", adminClaims()))
	err = svc.Delete(ctx, "10", adminClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTimeSlotGetIsScopedToVisibleCourses(t *testing.T) {
	svc := NewTimeSlotService(newSeededStore(t), nil, nil, nil)
	ctx := context.Background()

	slot, err := svc.Get(ctx, "1", studentClaims())
	require.NoError(t, err)
	assert.Equal(t, "1", slot.CourseID)

	// Slot 4 belongs to a semester 4 course.
	_, err = svc.Get(ctx, "4", studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Get(ctx, "4", professorClaims("3"))
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Get(ctx, "4", professorClaims("4"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, "4", adminClaims())
	require.NoError(t, err)

	_, err = svc.Get(ctx, "404", studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
