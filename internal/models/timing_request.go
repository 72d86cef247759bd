package models

import "time"

// RequestStatus captures workflow states for timing change requests.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from the status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// TimingChangeRequest is a professor's proposal to move one of their course slots.
type TimingChangeRequest struct {
	ID           string        `json:"id"`
	ProfessorID  string        `json:"professorId"`
	CourseID     string        `json:"courseId"`
	CurrentSlot  TimeSlot      `json:"currentSlot"`
	ProposedSlot SlotFields    `json:"proposedSlot"`
	Reason       string        `json:"reason"`
	Status       RequestStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	ReviewedAt   *time.Time    `json:"reviewedAt,omitempty"`
	ReviewedBy   *string       `json:"reviewedBy,omitempty"`
}

// TimingRequestFilter constrains listing queries.
type TimingRequestFilter struct {
	Status      []RequestStatus
	ProfessorID string
	CourseID    string
}

// Matches reports whether the request satisfies every set criterion.
func (f TimingRequestFilter) Matches(r TimingChangeRequest) bool {
	if f.ProfessorID != "" && r.ProfessorID != f.ProfessorID {
		return false
	}
	if f.CourseID != "" && r.CourseID != f.CourseID {
		return false
	}
	if len(f.Status) == 0 {
		return true
	}
	for _, status := range f.Status {
		if r.Status == status {
			return true
		}
	}
	return false
}
