package planning

import (
	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

// IDSet is a membership set of session IDs.
type IDSet map[int64]struct{}

// NewIDSet builds a set from the given IDs.
func NewIDSet(ids ...int64) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// SessionIDs collects the IDs of the given sessions into a set.
func SessionIDs(sessions []models.Session) IDSet {
	set := make(IDSet, len(sessions))
	for _, s := range sessions {
		set[s.ID] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Classify derives the status of a session for a teacher. The precedence is
// fixed and must not be reordered:
//
//  1. selected — the session is in the teacher's own list;
//  2. subject — the session is in the subject-session list, or its subjects
//     intersect the teacher's;
//  3. full — capacity is bounded and exhausted;
//  4. available — none of the above.
//
// The forbidden status is backend-reported only and never derived here.
func Classify(s models.Session, t models.Teacher, mine, subjects IDSet) models.Status {
	if mine.Has(s.ID) {
		return models.StatusSelected
	}
	if subjects.Has(s.ID) || sharesSubject(s.Subjects, t.Subjects) {
		return models.StatusSubject
	}
	if s.Capacity > 0 && len(s.Supervisors) >= s.Capacity {
		return models.StatusFull
	}
	return models.StatusAvailable
}

// sharesSubject reports whether any session subject matches any teacher
// subject. Identifier equality decides whenever both sides carry an ID; the
// name comparison is only a fallback for records without identifiers.
func sharesSubject(sessionSubjects, teacherSubjects []models.SubjectRef) bool {
	for _, ss := range sessionSubjects {
		for _, ts := range teacherSubjects {
			if ss.ID != 0 && ts.ID != 0 {
				if ss.ID == ts.ID {
					return true
				}
				continue
			}
			if ss.Name != "" && ss.Name == ts.Name {
				return true
			}
		}
	}
	return false
}
