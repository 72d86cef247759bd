package dto

import "github.com/noah-isme/timetable-api/internal/models"

// NotificationQuery selects an inbox tab.
type NotificationQuery struct {
	Category models.NotificationCategory `form:"category"`
}

// ExportQuery picks the timetable export format.
type ExportQuery struct {
	Format string `form:"format"`
}
