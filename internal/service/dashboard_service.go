package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
)

const recentRequestsLimit = 3

// DashboardService composes the landing page counters for each role.
type DashboardService struct {
	store  entityStore
	logger *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(store entityStore, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, logger: defaultLogger(logger)}
}

// Stats returns the counters relevant to the actor's role.
func (s *DashboardService) Stats(ctx context.Context, actor *models.JWTClaims) (*models.DashboardStats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	stats := &models.DashboardStats{Role: actor.Role}
	err := s.store.View(func(tx *repository.Tx) error {
		now := tx.Now()
		today := weekdayOf(now)
		visible := visibleCourseIDs(tx, actor)

		stats.TotalCourses = len(visible)
		for _, course := range visible {
			stats.TotalEnrollment += course.Enrolled
		}

		slots := tx.TimeSlots(func(slot models.TimeSlot) bool {
			_, ok := visible[slot.CourseID]
			return ok
		})
		stats.TotalTimeSlots = len(slots)

		if actor.Role != models.RoleAdmin {
			for _, slot := range slots {
				if slot.Day == today {
					stats.TodaySlots = append(stats.TodaySlots, slot)
				}
			}
			sortSlots(stats.TodaySlots)
		}

		if actor.Role != models.RoleStudent {
			filter := models.TimingRequestFilter{}
			if actor.Role == models.RoleProfessor {
				filter.ProfessorID = actor.UserID
			}
			requests := tx.TimingRequests(filter.Matches)
			for _, r := range requests {
				if r.Status == models.RequestStatusPending {
					stats.PendingRequests++
				}
			}
			sort.SliceStable(requests, func(i, j int) bool {
				return requests[i].CreatedAt.After(requests[j].CreatedAt)
			})
			if len(requests) > recentRequestsLimit {
				requests = requests[:recentRequestsLimit]
			}
			stats.RecentRequests = requests
		}

		stats.ActivePolls = len(tx.Polls(func(p models.Poll) bool {
			if !p.IsOpen(now) {
				return false
			}
			switch actor.Role {
			case models.RoleAdmin:
				return true
			case models.RoleProfessor:
				return p.ProfessorID == actor.UserID
			}
			_, ok := visible[p.CourseID]
			return ok
		}))

		stats.UnreadNotifications = len(tx.Notifications(func(n models.Notification) bool {
			return n.UserID == actor.UserID && !n.Read
		}))
		return nil
	})
	if err != nil {
		return nil, storeError(err, "dashboard unavailable")
	}
	if actor.Role == models.RoleStudent {
		stats.TotalEnrollment = 0
	}
	return stats, nil
}

// sortSlots orders slots by weekday then start time.
func sortSlots(slots []models.TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		di, dj := slots[i].Day.Index(), slots[j].Day.Index()
		if di != dj {
			return di < dj
		}
		si, _ := models.ClockMinutes(slots[i].StartTime)
		sj, _ := models.ClockMinutes(slots[j].StartTime)
		return si < sj
	})
}

func weekdayOf(t time.Time) models.Weekday {
	return models.Weekday(t.Weekday().String())
}
