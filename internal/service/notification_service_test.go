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

func TestNotificationInboxTabs(t *testing.T) {
	svc := NewNotificationService(newSeededStore(t), nil)
	ctx := context.Background()

	all, err := svc.List(ctx, dto.NotificationQuery{}, studentClaims())
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "1", all[0].ID)

	unread, err := svc.List(ctx, dto.NotificationQuery{Category: models.NotificationCategoryUnread}, studentClaims())
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	schedule, err := svc.List(ctx, dto.NotificationQuery{Category: models.NotificationCategorySchedule}, studentClaims())
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, "1", schedule[0].ID)

	other, err := svc.List(ctx, dto.NotificationQuery{}, professorClaims("3"))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestNotificationMarkRead(t *testing.T) {
	svc := NewNotificationService(newSeededStore(t), nil)
	ctx := context.Background()

	_, err := svc.MarkRead(ctx, "1", professorClaims("3"))
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	n, err := svc.MarkRead(ctx, "1", studentClaims())
	require.NoError(t, err)
	assert.True(t, n.Read)

	count, err := svc.UnreadCount(ctx, studentClaims())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	updated, err := svc.MarkAllRead(ctx, studentClaims())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	updated, err = svc.MarkAllRead(ctx, studentClaims())
	require.NoError(t, err)
	assert.Zero(t, updated)

	_, err = svc.MarkRead(ctx, "404", studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
