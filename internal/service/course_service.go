package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// CourseService manages the course catalogue.
type CourseService struct {
	store     entityStore
	validator *validator.Validate
	audit     auditTrail
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(store entityStore, validate *validator.Validate, audit auditLogger, logger *zap.Logger) *CourseService {
	logger = defaultLogger(logger)
	return &CourseService{
		store:     store,
		validator: defaultValidator(validate),
		audit:     auditTrail{sink: audit, source: "course-service", logger: logger},
		logger:    logger,
	}
}

// CanSee reports whether the actor may view the course.
func CanSee(actor *models.JWTClaims, course models.Course) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleProfessor:
		return course.ProfessorID == actor.UserID
	case models.RoleStudent:
		return actor.Actor().AssociatedWith(course)
	}
	return false
}

// List returns the courses visible to the actor.
func (s *CourseService) List(ctx context.Context, actor *models.JWTClaims) ([]models.Course, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var courses []models.Course
	err := s.store.View(func(tx *repository.Tx) error {
		courses = tx.Courses(func(c models.Course) bool { return CanSee(actor, c) })
		return nil
	})
	return courses, storeError(err, "course not found")
}

// Get returns a course by id when visible to the actor.
func (s *CourseService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Course, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var course models.Course
	err := s.store.View(func(tx *repository.Tx) error {
		var err error
		course, err = tx.Course(id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "course not found")
	}
	if !CanSee(actor, course) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course is outside your scope")
	}
	return &course, nil
}

// Create adds a course to the catalogue.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest, actor *models.JWTClaims) (*models.Course, error) {
	if !hasRole(actor, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can manage courses")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course := req.Course()
	if err := validateCourse(course); err != nil {
		return nil, err
	}

	err := s.store.Update(func(tx *repository.Tx) error {
		var err error
		course, err = tx.AddCourse(course)
		return err
	})
	if err != nil {
		return nil, storeError(err, "course not found")
	}

	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("code", course.Code))
	s.audit.emit(ctx, actor, models.AuditActionCourseCreate, "course", course.ID, course)
	return &course, nil
}

// Update merges the payload into an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest, actor *models.JWTClaims) (*models.Course, error) {
	if !hasRole(actor, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can manage courses")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}

	var course models.Course
	err := s.store.Update(func(tx *repository.Tx) error {
		var err error
		course, err = tx.UpdateCourse(id, req.Patch())
		if err != nil {
			return err
		}
		// Validated after the merge so the rollback restores the old record.
		return validateCourse(course)
	})
	if err != nil {
		return nil, storeError(err, "course not found")
	}

	s.audit.emit(ctx, actor, models.AuditActionCourseUpdate, "course", id, req)
	return &course, nil
}

// Delete removes a course and its time slots.
func (s *CourseService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if !hasRole(actor, models.RoleAdmin) {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can manage courses")
	}
	var removed int
	err := s.store.Update(func(tx *repository.Tx) error {
		var err error
		removed, err = tx.DeleteCourse(id)
		return err
	})
	if err != nil {
		return storeError(err, "course not found")
	}

	s.logger.Info("course deleted", zap.String("course_id", id), zap.Int("slots_removed", removed))
	s.audit.emit(ctx, actor, models.AuditActionCourseDelete, "course", id, map[string]int{"slotsRemoved": removed})
	return nil
}

func validateCourse(course models.Course) error {
	if course.Credits <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "credits must be positive")
	}
	if course.Capacity <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "capacity must be positive")
	}
	if course.Enrolled < 0 || course.Enrolled > course.Capacity {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("enrolled must be between 0 and capacity (%d)", course.Capacity))
	}
	return nil
}
