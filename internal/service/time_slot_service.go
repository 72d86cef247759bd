package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// TimeSlotService manages the weekly timetable entries.
type TimeSlotService struct {
	store     entityStore
	validator *validator.Validate
	audit     auditTrail
	logger    *zap.Logger
}

// NewTimeSlotService constructs a TimeSlotService.
func NewTimeSlotService(store entityStore, validate *validator.Validate, audit auditLogger, logger *zap.Logger) *TimeSlotService {
	logger = defaultLogger(logger)
	return &TimeSlotService{
		store:     store,
		validator: defaultValidator(validate),
		audit:     auditTrail{sink: audit, source: "time-slot-service", logger: logger},
		logger:    logger,
	}
}

// List returns the slots of every course visible to the actor.
func (s *TimeSlotService) List(ctx context.Context, query dto.TimeSlotQuery, actor *models.JWTClaims) ([]models.TimeSlot, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var slots []models.TimeSlot
	err := s.store.View(func(tx *repository.Tx) error {
		visible := visibleCourseIDs(tx, actor)
		slots = tx.TimeSlots(func(slot models.TimeSlot) bool {
			if _, ok := visible[slot.CourseID]; !ok {
				return false
			}
			if query.CourseID != "" && slot.CourseID != query.CourseID {
				return false
			}
			if query.Day != "" && !strings.EqualFold(string(slot.Day), query.Day) {
				return false
			}
			if query.Room != "" && !strings.EqualFold(slot.Room, query.Room) {
				return false
			}
			return true
		})
		return nil
	})
	return slots, storeError(err, "time slot not found")
}

// Get returns a single slot when its course is visible to the actor.
func (s *TimeSlotService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.TimeSlot, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var slot models.TimeSlot
	err := s.store.View(func(tx *repository.Tx) error {
		var err error
		slot, err = tx.TimeSlot(id)
		if err != nil {
			return err
		}
		if actor.Role == models.RoleAdmin {
			return nil
		}
		if course, err := tx.Course(slot.CourseID); err != nil || !CanSee(actor, course) {
			return appErrors.Clone(appErrors.ErrForbidden, "time slot belongs to a course outside your scope")
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "time slot not found")
	}
	return &slot, nil
}

// Create schedules a new slot after checking the room is free.
func (s *TimeSlotService) Create(ctx context.Context, req dto.CreateTimeSlotRequest, actor *models.JWTClaims) (*models.TimeSlot, error) {
	if !hasRole(actor, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can manage time slots")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid time slot payload")
	}
	slot := req.TimeSlot()
	if err := validateSlotFields(slot.Fields()); err != nil {
		return nil, err
	}

	err := s.store.Update(func(tx *repository.Tx) error {
		if _, err := tx.Course(slot.CourseID); err != nil {
			return storeError(err, "course not found")
		}
		if err := ensureRoomFree(tx, slot, ""); err != nil {
			return err
		}
		var err error
		slot, err = tx.AddTimeSlot(slot)
		return err
	})
	if err != nil {
		return nil, storeError(err, "time slot not found")
	}

	s.logger.Info("time slot created", zap.String("slot_id", slot.ID), zap.String("course_id", slot.CourseID))
	s.audit.emit(ctx, actor, models.AuditActionSlotCreate, "time_slot", slot.ID, slot)
	return &slot, nil
}

// Update merges the payload into an existing slot. The merged slot must remain valid and conflict free.
func (s *TimeSlotService) Update(ctx context.Context, id string, req dto.UpdateTimeSlotRequest, actor *models.JWTClaims) (*models.TimeSlot, error) {
	if !hasRole(actor, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can manage time slots")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid time slot payload")
	}

	var slot models.TimeSlot
	err := s.store.Update(func(tx *repository.Tx) error {
		var err error
		slot, err = tx.UpdateTimeSlot(id, req.Patch())
		if err != nil {
			return err
		}
		if err := validateSlotFields(slot.Fields()); err != nil {
			return err
		}
		if _, err := tx.Course(slot.CourseID); err != nil {
			return storeError(err, "course not found")
		}
		return ensureRoomFree(tx, slot, id)
	})
	if err != nil {
		return nil, storeError(err, "time slot not found")
	}

	s.audit.emit(ctx, actor, models.AuditActionSlotUpdate, "time_slot", id, slot)
	return &slot, nil
}

// Delete removes a slot.
func (s *TimeSlotService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if !hasRole(actor, models.RoleAdmin) {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can manage time slots")
	}
	err := s.store.Update(func(tx *repository.Tx) error {
		return tx.DeleteTimeSlot(id)
	})
	if err != nil {
		return storeError(err, "time slot not found")
	}
	s.audit.emit(ctx, actor, models.AuditActionSlotDelete, "time_slot", id, nil)
	return nil
}

// Conflicts lists the slots that would collide with the candidate placement.
func (s *TimeSlotService) Conflicts(ctx context.Context, query dto.ConflictQuery) ([]models.TimeSlot, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "invalid conflict query")
	}
	candidate := models.TimeSlot{Day: query.Day, StartTime: query.StartTime, EndTime: query.EndTime, Room: query.Room, Type: models.SlotLecture}
	if err := validateSlotFields(candidate.Fields()); err != nil {
		return nil, err
	}
	var conflicts []models.TimeSlot
	err := s.store.View(func(tx *repository.Tx) error {
		conflicts = roomConflicts(tx, candidate, query.ExcludeID)
		return nil
	})
	return conflicts, storeError(err, "time slot not found")
}

func validateSlotFields(f models.SlotFields) error {
	if !f.Day.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %q is not a weekday name", f.Day))
	}
	if !f.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot type %q is not supported", f.Type))
	}
	if strings.TrimSpace(f.Room) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "room is required")
	}
	if _, _, err := models.SlotRange(f.StartTime, f.EndTime); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return nil
}

// roomConflicts returns slots in the same room whose time range intersects the candidate.
func roomConflicts(tx *repository.Tx, candidate models.TimeSlot, excludeID string) []models.TimeSlot {
	return tx.TimeSlots(func(existing models.TimeSlot) bool {
		if excludeID != "" && existing.ID == excludeID {
			return false
		}
		return strings.EqualFold(existing.Room, candidate.Room) && existing.Overlaps(candidate)
	})
}

func ensureRoomFree(tx *repository.Tx, candidate models.TimeSlot, excludeID string) error {
	conflicts := roomConflicts(tx, candidate, excludeID)
	if len(conflicts) == 0 {
		return nil
	}
	c := conflicts[0]
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %s is already booked on %s %s-%s (slot %s)", c.Room, c.Day, c.StartTime, c.EndTime, c.ID))
}

func visibleCourseIDs(tx *repository.Tx, actor *models.JWTClaims) map[string]models.Course {
	visible := make(map[string]models.Course)
	for _, course := range tx.Courses(func(c models.Course) bool { return CanSee(actor, c) }) {
		visible[course.ID] = course
	}
	return visible
}
