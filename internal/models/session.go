package models

// Status classifies an exam session relative to the authenticated teacher.
// Exactly one status applies to a (teacher, session) pair at render time.
type Status string

const (
	// StatusSelected marks a session the teacher already supervises.
	StatusSelected Status = "selected"
	// StatusSubject marks a session covering a subject the teacher teaches;
	// the teacher is responsible for it and may not self-select.
	StatusSubject Status = "subject"
	// StatusForbidden is reported by the backend for sessions the teacher is
	// barred from (scheduling conflicts). It is never derived locally.
	StatusForbidden Status = "forbidden"
	// StatusFull marks a session whose supervisor capacity is exhausted.
	StatusFull Status = "full"
	// StatusAvailable marks a session the teacher may still select.
	StatusAvailable Status = "available"
)

// SubjectRef identifies a subject by ID when the backend supplies one, by
// name otherwise.
type SubjectRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// SupervisorRef names a teacher staffing a session.
type SupervisorRef struct {
	ID        int64  `json:"id,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// DisplayName renders the supervisor for listings and the printed planning.
func (r SupervisorRef) DisplayName() string {
	switch {
	case r.LastName != "" && r.FirstName != "":
		return r.LastName + " " + r.FirstName
	case r.LastName != "":
		return r.LastName
	default:
		return r.FirstName
	}
}

// Session is the canonical exam-supervision slot. All upstream shape
// variations are folded into this form by the planning engine.
type Session struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	Rooms       []string        `json:"rooms"`
	Subjects    []SubjectRef    `json:"subjects"`
	Supervisors []SupervisorRef `json:"supervisors"`
	// Capacity is the maximum supervisor head count. Zero means the backend
	// did not bound the session; fullness checks then never trigger.
	Capacity int `json:"capacity"`
}
