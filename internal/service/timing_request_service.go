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

type studentDirectory interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// TimingRequestService runs the schedule change workflow: professors submit, administrators decide.
type TimingRequestService struct {
	store     entityStore
	students  studentDirectory
	validator *validator.Validate
	publisher notificationPublisher
	metrics   *MetricsService
	audit     auditTrail
	logger    *zap.Logger
}

// TimingRequestServiceOption configures the service.
type TimingRequestServiceOption func(*TimingRequestService)

// WithTimingRequestPublisher forwards committed notifications to realtime subscribers.
func WithTimingRequestPublisher(publisher notificationPublisher) TimingRequestServiceOption {
	return func(s *TimingRequestService) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithTimingRequestMetrics records workflow counters.
func WithTimingRequestMetrics(metrics *MetricsService) TimingRequestServiceOption {
	return func(s *TimingRequestService) {
		s.metrics = metrics
	}
}

// WithTimingRequestAudit enables the persistent audit trail.
func WithTimingRequestAudit(audit auditLogger) TimingRequestServiceOption {
	return func(s *TimingRequestService) {
		s.audit.sink = audit
	}
}

// NewTimingRequestService constructs the service with defaults.
func NewTimingRequestService(store entityStore, students studentDirectory, validate *validator.Validate, logger *zap.Logger, opts ...TimingRequestServiceOption) *TimingRequestService {
	logger = defaultLogger(logger)
	svc := &TimingRequestService{
		store:     store,
		students:  students,
		validator: defaultValidator(validate),
		audit:     auditTrail{source: "timing-request-service", logger: logger},
		logger:    logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Submit stores a pending request to move one of the professor's slots.
func (s *TimingRequestService) Submit(ctx context.Context, req dto.SubmitTimingRequest, actor *models.JWTClaims) (*models.TimingChangeRequest, error) {
	if !hasRole(actor, models.RoleProfessor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only professors can request timing changes")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid timing request payload")
	}
	if err := requireText("reason", req.Reason); err != nil {
		return nil, err
	}
	if err := validateSlotFields(req.ProposedSlot); err != nil {
		return nil, err
	}

	var request models.TimingChangeRequest
	err := s.store.Update(func(tx *repository.Tx) error {
		course, err := tx.Course(req.CourseID)
		if err != nil {
			return storeError(err, "course not found")
		}
		if course.ProfessorID != actor.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "course is taught by another professor")
		}
		slot, err := tx.TimeSlot(req.CurrentSlotID)
		if err != nil {
			return storeError(err, "time slot not found")
		}
		if slot.CourseID != course.ID {
			return appErrors.Clone(appErrors.ErrValidation, "time slot does not belong to the course")
		}

		proposed := slot
		proposed.ApplyFields(req.ProposedSlot)
		if err := ensureRoomFree(tx, proposed, slot.ID); err != nil {
			return err
		}

		request, err = tx.AddTimingRequest(models.TimingChangeRequest{
			ProfessorID:  actor.UserID,
			CourseID:     course.ID,
			CurrentSlot:  slot,
			ProposedSlot: req.ProposedSlot,
			Reason:       req.Reason,
			Status:       models.RequestStatusPending,
		})
		return err
	})
	if err != nil {
		return nil, storeError(err, "timing request not found")
	}

	s.logger.Info("timing request submitted",
		zap.String("request_id", request.ID),
		zap.String("course_id", request.CourseID),
		zap.String("professor_id", request.ProfessorID),
	)
	s.metrics.RecordTimingRequest(string(models.RequestStatusPending))
	s.audit.emit(ctx, actor, models.AuditActionRequestSubmit, "timing_request", request.ID, request.ProposedSlot)
	return &request, nil
}

// Decide applies the administrator's outcome. The status change, the slot update and the
// notifications commit together or not at all.
func (s *TimingRequestService) Decide(ctx context.Context, id string, req dto.DecideTimingRequest, actor *models.JWTClaims) (*models.TimingChangeRequest, error) {
	if !hasRole(actor, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can review timing requests")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "status must be approved or rejected")
	}

	students, err := s.students.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	var (
		request models.TimingChangeRequest
		sent    []models.Notification
	)
	err = s.store.Update(func(tx *repository.Tx) error {
		var err error
		request, err = tx.TimingRequest(id)
		if err != nil {
			return err
		}
		if request.Status != models.RequestStatusPending {
			return appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("timing request already %s", request.Status))
		}

		course, courseErr := tx.Course(request.CourseID)
		now := tx.Now()
		reviewer := actor.UserID
		request.Status = req.Status
		request.ReviewedAt = &now
		request.ReviewedBy = &reviewer

		var outgoing []models.Notification
		switch req.Status {
		case models.RequestStatusApproved:
			slot, err := tx.TimeSlot(request.CurrentSlot.ID)
			if err != nil {
				return appErrors.Clone(appErrors.ErrPreconditionFailed, "the time slot referenced by the request no longer exists")
			}
			slot.ApplyFields(request.ProposedSlot)
			if err := ensureRoomFree(tx, slot, slot.ID); err != nil {
				return err
			}
			if _, err := tx.UpdateTimeSlot(slot.ID, fieldsPatch(request.ProposedSlot)); err != nil {
				return err
			}
			if courseErr == nil {
				outgoing = approvalNotifications(course, request.ProposedSlot, students)
			}
		case models.RequestStatusRejected:
			courseName := request.CourseID
			if courseErr == nil {
				courseName = course.Name
			}
			outgoing = []models.Notification{rejectionNotification(request.ProfessorID, courseName)}
		}

		if err := tx.SaveTimingRequest(request); err != nil {
			return err
		}
		for _, n := range outgoing {
			stored, err := tx.AddNotification(n)
			if err != nil {
				return err
			}
			sent = append(sent, stored)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "timing request not found")
	}

	s.logger.Info("timing request decided",
		zap.String("request_id", request.ID),
		zap.String("status", string(request.Status)),
		zap.String("reviewer_id", actor.UserID),
		zap.Int("notifications", len(sent)),
	)
	s.metrics.RecordTimingRequest(string(request.Status))
	s.metrics.RecordNotifications(len(sent))
	if s.publisher != nil && len(sent) > 0 {
		s.publisher.Publish(ctx, sent)
	}
	s.audit.emit(ctx, actor, models.AuditActionRequestDecision, "timing_request", request.ID, map[string]string{"status": string(request.Status)})
	return &request, nil
}

// List returns requests in scope: administrators see all, professors their own.
func (s *TimingRequestService) List(ctx context.Context, query dto.TimingRequestQuery, actor *models.JWTClaims) ([]models.TimingChangeRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	filter := models.TimingRequestFilter{Status: query.Status, CourseID: query.CourseID}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleProfessor:
		filter.ProfessorID = actor.UserID
	default:
		return nil, appErrors.ErrForbidden
	}

	var requests []models.TimingChangeRequest
	err := s.store.View(func(tx *repository.Tx) error {
		requests = tx.TimingRequests(filter.Matches)
		return nil
	})
	return requests, storeError(err, "timing request not found")
}

// Get returns a request enforcing the same scope as List.
func (s *TimingRequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.TimingChangeRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !hasRole(actor, models.RoleAdmin, models.RoleProfessor) {
		return nil, appErrors.ErrForbidden
	}
	var request models.TimingChangeRequest
	err := s.store.View(func(tx *repository.Tx) error {
		var err error
		request, err = tx.TimingRequest(id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "timing request not found")
	}
	if actor.Role == models.RoleProfessor && request.ProfessorID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return &request, nil
}

func fieldsPatch(f models.SlotFields) models.TimeSlotPatch {
	return models.TimeSlotPatch{
		Day:       &f.Day,
		StartTime: &f.StartTime,
		EndTime:   &f.EndTime,
		Room:      &f.Room,
		Type:      &f.Type,
	}
}

func approvalNotifications(course models.Course, slot models.SlotFields, students []models.User) []models.Notification {
	message := fmt.Sprintf("The schedule for %s (%s) has been updated. New timing: %s %s - %s in %s.",
		course.Name, course.Code, slot.Day, models.Format12h(slot.StartTime), models.Format12h(slot.EndTime), slot.Room)
	var out []models.Notification
	for _, student := range students {
		if !student.AssociatedWith(course) {
			continue
		}
		out = append(out, models.Notification{
			UserID:  student.ID,
			Title:   "Schedule Change Approved",
			Message: message,
			Type:    models.NotificationWarning,
		})
	}
	return out
}

func rejectionNotification(professorID, courseName string) models.Notification {
	return models.Notification{
		UserID:  professorID,
		Title:   "Schedule Change Request Rejected",
		Message: fmt.Sprintf("Your request to change the schedule for %s has been rejected. Please contact the administration for more details.", courseName),
		Type:    models.NotificationError,
	}
}
