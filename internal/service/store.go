package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// entityStore is the transactional view of the in-memory store services depend on.
type entityStore interface {
	Update(fn func(tx *repository.Tx) error) error
	View(fn func(tx *repository.Tx) error) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// notificationPublisher fans committed notifications out to realtime subscribers.
type notificationPublisher interface {
	Publish(ctx context.Context, notifications []models.Notification)
}

// storeError maps repository sentinels onto API errors. Typed errors pass through.
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrDuplicateID):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "identifier already exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store operation failed")
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// requireText rejects values that are empty once surrounding whitespace is trimmed.
func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must not be blank", field))
	}
	return nil
}

func defaultValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return validator.New()
	}
	return v
}

func defaultLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// auditTrail persists audit entries when a sink is configured and only warns on failure.
type auditTrail struct {
	sink   auditLogger
	source string
	logger *zap.Logger
}

func (a auditTrail) emit(ctx context.Context, actor *models.JWTClaims, action, resource, resourceID string, newValues interface{}) {
	if a.sink == nil {
		return
	}
	log := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: "system",
		UserAgent: a.source,
	}
	if actor != nil {
		userID := actor.UserID
		log.UserID = &userID
	}
	if resourceID != "" {
		id := resourceID
		log.ResourceID = &id
	}
	if newValues != nil {
		if payload, err := json.Marshal(newValues); err == nil {
			log.NewValues = payload
		}
	}
	if err := a.sink.CreateAuditLog(ctx, log); err != nil {
		a.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}

func requireActor(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	return nil
}

func hasRole(actor *models.JWTClaims, roles ...models.UserRole) bool {
	if actor == nil {
		return false
	}
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
