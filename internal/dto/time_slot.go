package dto

import "github.com/noah-isme/timetable-api/internal/models"

// CreateTimeSlotRequest payload for scheduling a recurring slot.
type CreateTimeSlotRequest struct {
	CourseID  string          `json:"courseId" validate:"required"`
	Day       models.Weekday  `json:"day" validate:"required"`
	StartTime string          `json:"startTime" validate:"required"`
	EndTime   string          `json:"endTime" validate:"required"`
	Room      string          `json:"room" validate:"required"`
	Type      models.SlotType `json:"type" validate:"required"`
}

// TimeSlot converts the payload into a slot without id.
func (r CreateTimeSlotRequest) TimeSlot() models.TimeSlot {
	return models.TimeSlot{
		CourseID:  r.CourseID,
		Day:       r.Day,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Room:      r.Room,
		Type:      r.Type,
	}
}

// UpdateTimeSlotRequest carries a partial slot update.
type UpdateTimeSlotRequest struct {
	CourseID  *string          `json:"courseId" validate:"omitempty,min=1"`
	Day       *models.Weekday  `json:"day"`
	StartTime *string          `json:"startTime"`
	EndTime   *string          `json:"endTime"`
	Room      *string          `json:"room" validate:"omitempty,min=1"`
	Type      *models.SlotType `json:"type"`
}

// Patch converts the payload into a store patch.
func (r UpdateTimeSlotRequest) Patch() models.TimeSlotPatch {
	return models.TimeSlotPatch{
		CourseID:  r.CourseID,
		Day:       r.Day,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Room:      r.Room,
		Type:      r.Type,
	}
}

// TimeSlotQuery filters slot listings.
type TimeSlotQuery struct {
	CourseID string `form:"courseId"`
	Day      string `form:"day"`
	Room     string `form:"room"`
}

// ConflictQuery describes a candidate placement to check against the timetable.
type ConflictQuery struct {
	Day       models.Weekday `form:"day" validate:"required"`
	StartTime string         `form:"startTime" validate:"required"`
	EndTime   string         `form:"endTime" validate:"required"`
	Room      string         `form:"room" validate:"required"`
	ExcludeID string         `form:"excludeId"`
}
