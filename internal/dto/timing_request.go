package dto

import "github.com/noah-isme/timetable-api/internal/models"

// SubmitTimingRequest payload for a professor proposing to move a slot.
type SubmitTimingRequest struct {
	CourseID      string            `json:"courseId" validate:"required"`
	CurrentSlotID string            `json:"currentSlotId" validate:"required"`
	ProposedSlot  models.SlotFields `json:"proposedSlot"`
	Reason        string            `json:"reason" validate:"required"`
}

// DecideTimingRequest captures the administrator's outcome.
type DecideTimingRequest struct {
	Status models.RequestStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// TimingRequestQuery mirrors supported listing filters.
type TimingRequestQuery struct {
	Status   []models.RequestStatus
	CourseID string
}
