package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// PollService runs professor-created preference polls.
type PollService struct {
	store     entityStore
	validator *validator.Validate
	metrics   *MetricsService
	audit     auditTrail
	logger    *zap.Logger
}

// PollServiceOption configures the service.
type PollServiceOption func(*PollService)

// WithPollMetrics records vote counters.
func WithPollMetrics(metrics *MetricsService) PollServiceOption {
	return func(s *PollService) {
		s.metrics = metrics
	}
}

// WithPollAudit enables the persistent audit trail.
func WithPollAudit(audit auditLogger) PollServiceOption {
	return func(s *PollService) {
		s.audit.sink = audit
	}
}

// NewPollService constructs a PollService.
func NewPollService(store entityStore, validate *validator.Validate, logger *zap.Logger, opts ...PollServiceOption) *PollService {
	logger = defaultLogger(logger)
	svc := &PollService{
		store:     store,
		validator: defaultValidator(validate),
		audit:     auditTrail{source: "poll-service", logger: logger},
		logger:    logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create opens a poll for one of the professor's courses.
func (s *PollService) Create(ctx context.Context, req dto.CreatePollRequest, actor *models.JWTClaims) (*models.Poll, error) {
	if !hasRole(actor, models.RoleProfessor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only professors can create polls")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid poll payload")
	}
	if err := requireText("title", req.Title); err != nil {
		return nil, err
	}
	if err := requireText("description", req.Description); err != nil {
		return nil, err
	}
	options := make([]models.PollOption, 0, len(req.Options))
	for _, in := range req.Options {
		if !in.Day.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "poll option day must be a weekday name")
		}
		if _, _, err := models.SlotRange(in.StartTime, in.EndTime); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		options = append(options, models.PollOption{
			Day:       in.Day,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Room:      in.Room,
			Voters:    []string{},
		})
	}

	var poll models.Poll
	err := s.store.Update(func(tx *repository.Tx) error {
		if !req.EndDate.After(tx.Now()) {
			return appErrors.Clone(appErrors.ErrValidation, "endDate must be in the future")
		}
		course, err := tx.Course(req.CourseID)
		if err != nil {
			return storeError(err, "course not found")
		}
		if course.ProfessorID != actor.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "course is taught by another professor")
		}
		poll, err = tx.AddPoll(models.Poll{
			ProfessorID: actor.UserID,
			CourseID:    course.ID,
			Title:       req.Title,
			Description: req.Description,
			Options:     options,
			IsActive:    true,
			EndDate:     req.EndDate.UTC(),
		})
		return err
	})
	if err != nil {
		return nil, storeError(err, "poll not found")
	}

	s.logger.Info("poll created", zap.String("poll_id", poll.ID), zap.String("course_id", poll.CourseID), zap.Int("options", len(poll.Options)))
	s.audit.emit(ctx, actor, models.AuditActionPollCreate, "poll", poll.ID, map[string]interface{}{"title": poll.Title, "options": len(poll.Options)})
	return &poll, nil
}

// CastVote records the user's vote, moving any previous vote in the same poll.
func (s *PollService) CastVote(ctx context.Context, pollID string, req dto.CastVoteRequest, actor *models.JWTClaims) (*models.Poll, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "optionId is required")
	}

	var poll models.Poll
	err := s.store.Update(func(tx *repository.Tx) error {
		var err error
		poll, err = tx.Poll(pollID)
		if err != nil {
			return storeError(err, "poll not found")
		}
		if actor.Role == models.RoleStudent && !studentCanSeeCourse(tx, actor, poll.CourseID) {
			return appErrors.Clone(appErrors.ErrForbidden, "poll belongs to a course outside your cohort")
		}
		target := poll.Option(req.OptionID)
		if target < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "poll option not found")
		}
		if !poll.IsOpen(tx.Now()) {
			return appErrors.Clone(appErrors.ErrInvalidState, "poll is closed")
		}
		moveVote(&poll, target, actor.UserID)
		return tx.SavePoll(poll)
	})
	if err != nil {
		return nil, storeError(err, "poll not found")
	}

	s.logger.Debug("poll vote cast", zap.String("poll_id", pollID), zap.String("option_id", req.OptionID), zap.String("user_id", actor.UserID))
	s.metrics.RecordPollVote()
	return &poll, nil
}

// Close ends a poll early. Only the owning professor or an administrator may close it.
func (s *PollService) Close(ctx context.Context, pollID string, actor *models.JWTClaims) (*models.Poll, error) {
	if !hasRole(actor, models.RoleProfessor, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the poll owner or an administrator can close polls")
	}
	var (
		poll    models.Poll
		changed bool
	)
	err := s.store.Update(func(tx *repository.Tx) error {
		var err error
		poll, err = tx.Poll(pollID)
		if err != nil {
			return err
		}
		if actor.Role == models.RoleProfessor && poll.ProfessorID != actor.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "poll belongs to another professor")
		}
		if !poll.IsActive {
			return nil
		}
		poll.IsActive = false
		changed = true
		return tx.SavePoll(poll)
	})
	if err != nil {
		return nil, storeError(err, "poll not found")
	}
	if changed {
		s.logger.Info("poll closed", zap.String("poll_id", pollID), zap.String("actor_id", actor.UserID))
		s.audit.emit(ctx, actor, models.AuditActionPollClose, "poll", pollID, nil)
	}
	return &poll, nil
}

// List returns polls in scope. Students only see open polls of their cohort unless includeEnded is set.
func (s *PollService) List(ctx context.Context, query dto.PollQuery, actor *models.JWTClaims) ([]models.Poll, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var polls []models.Poll
	err := s.store.View(func(tx *repository.Tx) error {
		now := tx.Now()
		visible := visibleCourseIDs(tx, actor)
		polls = tx.Polls(func(p models.Poll) bool {
			if query.CourseID != "" && p.CourseID != query.CourseID {
				return false
			}
			switch actor.Role {
			case models.RoleAdmin:
				return true
			case models.RoleProfessor:
				return p.ProfessorID == actor.UserID
			case models.RoleStudent:
				if _, ok := visible[p.CourseID]; !ok {
					return false
				}
				return query.IncludeEnded || p.IsOpen(now)
			}
			return false
		})
		return nil
	})
	return polls, storeError(err, "poll not found")
}

// Get returns a poll with its tally.
func (s *PollService) Get(ctx context.Context, pollID string, actor *models.JWTClaims) (*models.Poll, *models.PollTally, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	var poll models.Poll
	err := s.store.View(func(tx *repository.Tx) error {
		var err error
		poll, err = tx.Poll(pollID)
		if err != nil {
			return err
		}
		switch actor.Role {
		case models.RoleProfessor:
			if poll.ProfessorID != actor.UserID {
				return appErrors.ErrForbidden
			}
		case models.RoleStudent:
			if !studentCanSeeCourse(tx, actor, poll.CourseID) {
				return appErrors.ErrForbidden
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, storeError(err, "poll not found")
	}
	tally := poll.Tally()
	return &poll, &tally, nil
}

// moveVote removes userID from every option and adds it to the target option.
func moveVote(poll *models.Poll, target int, userID string) {
	for i := range poll.Options {
		option := &poll.Options[i]
		kept := option.Voters[:0]
		for _, voter := range option.Voters {
			if voter == userID {
				option.Votes--
				continue
			}
			kept = append(kept, voter)
		}
		option.Voters = kept
	}
	poll.Options[target].Votes++
	poll.Options[target].Voters = append(poll.Options[target].Voters, userID)
}

// studentCanSeeCourse fails closed: a poll whose course is gone belongs to no cohort.
func studentCanSeeCourse(tx *repository.Tx, actor *models.JWTClaims, courseID string) bool {
	course, err := tx.Course(courseID)
	return err == nil && CanSee(actor, course)
}
