package dto

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// PollOptionInput is one candidate slot in a new poll.
type PollOptionInput struct {
	Day       models.Weekday `json:"day" validate:"required"`
	StartTime string         `json:"startTime" validate:"required"`
	EndTime   string         `json:"endTime" validate:"required"`
	Room      string         `json:"room" validate:"required"`
}

// CreatePollRequest payload for opening a preference poll.
type CreatePollRequest struct {
	CourseID    string            `json:"courseId" validate:"required"`
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Options     []PollOptionInput `json:"options" validate:"min=2,dive"`
	EndDate     time.Time         `json:"endDate" validate:"required"`
}

// CastVoteRequest selects the option to vote for.
type CastVoteRequest struct {
	OptionID string `json:"optionId" validate:"required"`
}

// PollQuery filters poll listings.
type PollQuery struct {
	CourseID     string
	IncludeEnded bool
}
