package models

import (
	"strings"
	"time"
)

// NotificationType drives how a notification is rendered.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

// Notification is a message addressed to one user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotificationCategory mirrors the inbox tabs.
type NotificationCategory string

const (
	NotificationCategoryAll      NotificationCategory = "all"
	NotificationCategoryUnread   NotificationCategory = "unread"
	NotificationCategorySchedule NotificationCategory = "schedule"
	NotificationCategoryCourse   NotificationCategory = "course"
)

// Matches reports whether n belongs to the category. Unknown categories match everything.
func (c NotificationCategory) Matches(n Notification) bool {
	title := strings.ToLower(n.Title)
	switch c {
	case NotificationCategoryUnread:
		return !n.Read
	case NotificationCategorySchedule:
		return n.Type == NotificationWarning || strings.Contains(title, "schedule") || strings.Contains(title, "time")
	case NotificationCategoryCourse:
		return n.Type == NotificationInfo || strings.Contains(title, "course") || strings.Contains(title, "class")
	default:
		return true
	}
}
