package models

// DashboardStats aggregates the per-role counters shown on the landing dashboard.
// Fields irrelevant to the caller's role are omitted.
type DashboardStats struct {
	Role                UserRole              `json:"role"`
	TotalCourses        int                   `json:"totalCourses"`
	TotalTimeSlots      int                   `json:"totalTimeSlots"`
	PendingRequests     int                   `json:"pendingRequests"`
	TotalEnrollment     int                   `json:"totalEnrollment,omitempty"`
	ActivePolls         int                   `json:"activePolls"`
	UnreadNotifications int                   `json:"unreadNotifications"`
	TodaySlots          []TimeSlot            `json:"todaySlots,omitempty"`
	RecentRequests      []TimingChangeRequest `json:"recentRequests,omitempty"`
}
