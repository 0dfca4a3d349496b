package models

// Teacher is the authenticated end user of the gateway.
type Teacher struct {
	ID        int64        `json:"id"`
	LastName  string       `json:"last_name"`
	FirstName string       `json:"first_name"`
	Email     string       `json:"email"`
	// Grade is the label of the teacher's rank ("Professeur", ...).
	Grade string `json:"grade"`
	// GradeHours carries the quota attached to a rich grade record; zero when
	// the backend sent a bare label.
	GradeHours float64 `json:"grade_hours,omitempty"`
	// ExplicitRequiredHours is a quota override supplied by the backend DTO.
	// It wins over any grade-derived value when positive.
	ExplicitRequiredHours float64      `json:"explicit_required_hours,omitempty"`
	Subjects              []SubjectRef `json:"subjects"`
}

// FullName renders the teacher for display and the printed planning.
func (t Teacher) FullName() string {
	switch {
	case t.LastName != "" && t.FirstName != "":
		return t.LastName + " " + t.FirstName
	case t.LastName != "":
		return t.LastName
	case t.FirstName != "":
		return t.FirstName
	default:
		return t.Email
	}
}
