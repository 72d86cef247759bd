package models

// Course is a catalogue entry taught by a single professor.
type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Professor   string `json:"professor"`
	ProfessorID string `json:"professorId"`
	Credits     int    `json:"credits"`
	Department  string `json:"department"`
	Semester    int    `json:"semester"`
	Capacity    int    `json:"capacity"`
	Enrolled    int    `json:"enrolled"`
	Description string `json:"description,omitempty"`
}

// CoursePatch carries a partial course update; nil fields are left untouched.
type CoursePatch struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Professor   *string `json:"professor"`
	ProfessorID *string `json:"professorId"`
	Credits     *int    `json:"credits"`
	Department  *string `json:"department"`
	Semester    *int    `json:"semester"`
	Capacity    *int    `json:"capacity"`
	Enrolled    *int    `json:"enrolled"`
	Description *string `json:"description"`
}

// Apply merges the patch into the course.
func (c *Course) Apply(p CoursePatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Code != nil {
		c.Code = *p.Code
	}
	if p.Professor != nil {
		c.Professor = *p.Professor
	}
	if p.ProfessorID != nil {
		c.ProfessorID = *p.ProfessorID
	}
	if p.Credits != nil {
		c.Credits = *p.Credits
	}
	if p.Department != nil {
		c.Department = *p.Department
	}
	if p.Semester != nil {
		c.Semester = *p.Semester
	}
	if p.Capacity != nil {
		c.Capacity = *p.Capacity
	}
	if p.Enrolled != nil {
		c.Enrolled = *p.Enrolled
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}
