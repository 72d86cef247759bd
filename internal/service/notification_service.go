package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// NotificationService serves the per-user inbox.
type NotificationService struct {
	store  entityStore
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(store entityStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{store: store, logger: defaultLogger(logger)}
}

// List returns the actor's notifications for the selected tab, newest first.
func (s *NotificationService) List(ctx context.Context, query dto.NotificationQuery, actor *models.JWTClaims) ([]models.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	category := query.Category
	if category == "" {
		category = models.NotificationCategoryAll
	}
	var notifications []models.Notification
	err := s.store.View(func(tx *repository.Tx) error {
		notifications = tx.Notifications(func(n models.Notification) bool {
			return n.UserID == actor.UserID && category.Matches(n)
		})
		return nil
	})
	return notifications, storeError(err, "notification not found")
}

// UnreadCount returns how many of the actor's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, actor *models.JWTClaims) (int, error) {
	unread, err := s.List(ctx, dto.NotificationQuery{Category: models.NotificationCategoryUnread}, actor)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string, actor *models.JWTClaims) (*models.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var notification models.Notification
	err := s.store.Update(func(tx *repository.Tx) error {
		current, err := tx.Notification(id)
		if err != nil {
			return err
		}
		if current.UserID != actor.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "notification belongs to another user")
		}
		notification, err = tx.MarkNotificationRead(id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "notification not found")
	}
	return &notification, nil
}

// MarkAllRead flags every unread notification of the actor and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *models.JWTClaims) (int, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	updated := 0
	err := s.store.Update(func(tx *repository.Tx) error {
		unread := tx.Notifications(func(n models.Notification) bool {
			return n.UserID == actor.UserID && !n.Read
		})
		for _, n := range unread {
			if _, err := tx.MarkNotificationRead(n.ID); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, storeError(err, "notification not found")
	}
	if updated > 0 {
		s.logger.Debug("notifications marked read", zap.String("user_id", actor.UserID), zap.Int("count", updated))
	}
	return updated, nil
}
