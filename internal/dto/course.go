package dto

import "github.com/noah-isme/timetable-api/internal/models"

// CreateCourseRequest payload for adding a catalogue course.
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Professor   string `json:"professor" validate:"required"`
	ProfessorID string `json:"professorId" validate:"required"`
	Credits     int    `json:"credits" validate:"required,gt=0"`
	Department  string `json:"department" validate:"required"`
	Semester    int    `json:"semester" validate:"required,min=1,max=12"`
	Capacity    int    `json:"capacity" validate:"required,gt=0"`
	Enrolled    int    `json:"enrolled" validate:"min=0"`
	Description string `json:"description"`
}

// Course converts the payload into a course without id.
func (r CreateCourseRequest) Course() models.Course {
	return models.Course{
		Name:        r.Name,
		Code:        r.Code,
		Professor:   r.Professor,
		ProfessorID: r.ProfessorID,
		Credits:     r.Credits,
		Department:  r.Department,
		Semester:    r.Semester,
		Capacity:    r.Capacity,
		Enrolled:    r.Enrolled,
		Description: r.Description,
	}
}

// UpdateCourseRequest carries the fields to change; omitted fields stay as they are.
type UpdateCourseRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Code        *string `json:"code" validate:"omitempty,min=1"`
	Professor   *string `json:"professor" validate:"omitempty,min=1"`
	ProfessorID *string `json:"professorId" validate:"omitempty,min=1"`
	Credits     *int    `json:"credits" validate:"omitempty,gt=0"`
	Department  *string `json:"department" validate:"omitempty,min=1"`
	Semester    *int    `json:"semester" validate:"omitempty,min=1,max=12"`
	Capacity    *int    `json:"capacity" validate:"omitempty,gt=0"`
	Enrolled    *int    `json:"enrolled" validate:"omitempty,min=0"`
	Description *string `json:"description"`
}

// Patch converts the payload into a store patch.
func (r UpdateCourseRequest) Patch() models.CoursePatch {
	return models.CoursePatch{
		Name:        r.Name,
		Code:        r.Code,
		Professor:   r.Professor,
		ProfessorID: r.ProfessorID,
		Credits:     r.Credits,
		Department:  r.Department,
		Semester:    r.Semester,
		Capacity:    r.Capacity,
		Enrolled:    r.Enrolled,
		Description: r.Description,
	}
}
