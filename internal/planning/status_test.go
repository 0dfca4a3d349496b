package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

func supervisors(n int) []models.SupervisorRef {
	refs := make([]models.SupervisorRef, n)
	for i := range refs {
		refs[i] = models.SupervisorRef{ID: int64(i + 1)}
	}
	return refs
}

func TestClassifySelectedWinsOverSubject(t *testing.T) {
	s := models.Session{ID: 1, Subjects: []models.SubjectRef{{Name: "Algèbre"}}}
	teacher := models.Teacher{Subjects: []models.SubjectRef{{Name: "Algèbre"}}}

	// The session is in both lists; selected has the higher precedence.
	status := Classify(s, teacher, NewIDSet(1), NewIDSet(1))
	assert.Equal(t, models.StatusSelected, status)
}

func TestClassifySubjectByListMembership(t *testing.T) {
	s := models.Session{ID: 2}
	status := Classify(s, models.Teacher{}, NewIDSet(), NewIDSet(2))
	assert.Equal(t, models.StatusSubject, status)
}

func TestClassifySubjectByIdentifierIntersection(t *testing.T) {
	s := models.Session{ID: 3, Subjects: []models.SubjectRef{{ID: 10, Name: "Analyse"}}}
	teacher := models.Teacher{Subjects: []models.SubjectRef{{ID: 10, Name: "renamed"}}}

	status := Classify(s, teacher, NewIDSet(), NewIDSet())
	assert.Equal(t, models.StatusSubject, status)
}

func TestClassifyIdentifierMismatchIgnoresEqualNames(t *testing.T) {
	// Both sides carry IDs, so the name fallback must not apply.
	s := models.Session{ID: 3, Subjects: []models.SubjectRef{{ID: 10, Name: "Analyse"}}}
	teacher := models.Teacher{Subjects: []models.SubjectRef{{ID: 11, Name: "Analyse"}}}

	status := Classify(s, teacher, NewIDSet(), NewIDSet())
	assert.Equal(t, models.StatusAvailable, status)
}

func TestClassifySubjectByNameFallback(t *testing.T) {
	s := models.Session{ID: 4, Subjects: []models.SubjectRef{{Name: "Physique"}}}
	teacher := models.Teacher{Subjects: []models.SubjectRef{{Name: "Physique"}}}

	status := Classify(s, teacher, NewIDSet(), NewIDSet())
	assert.Equal(t, models.StatusSubject, status)
}

func TestClassifyFullSession(t *testing.T) {
	s := models.Session{ID: 5, Capacity: 2, Supervisors: supervisors(2)}
	status := Classify(s, models.Teacher{}, NewIDSet(), NewIDSet())
	assert.Equal(t, models.StatusFull, status)
}

func TestClassifyOverfilledSessionIsFull(t *testing.T) {
	// Backend data violating the capacity invariant still reads as full.
	s := models.Session{ID: 5, Capacity: 2, Supervisors: supervisors(3)}
	status := Classify(s, models.Teacher{}, NewIDSet(), NewIDSet())
	assert.Equal(t, models.StatusFull, status)
}

func TestClassifyUnboundedCapacityNeverFull(t *testing.T) {
	s := models.Session{ID: 6, Supervisors: supervisors(12)}
	status := Classify(s, models.Teacher{}, NewIDSet(), NewIDSet())
	assert.Equal(t, models.StatusAvailable, status)
}

func TestClassifyScenarioFullThenAvailable(t *testing.T) {
	s := models.Session{
		ID:          1,
		Date:        "2024-06-10",
		StartTime:   "08:00",
		EndTime:     "10:00",
		Capacity:    2,
		Supervisors: supervisors(2),
	}
	teacherC := models.Teacher{ID: 99}

	assert.Equal(t, models.StatusFull, Classify(s, teacherC, NewIDSet(), NewIDSet()))

	s.Supervisors = supervisors(1)
	assert.Equal(t, models.StatusAvailable, Classify(s, teacherC, NewIDSet(), NewIDSet()))
}

func TestClassifyIsDeterministic(t *testing.T) {
	s := models.Session{ID: 7, Subjects: []models.SubjectRef{{Name: "Chimie"}}}
	teacher := models.Teacher{Subjects: []models.SubjectRef{{Name: "Chimie"}}}
	mine := NewIDSet(8)
	subjects := NewIDSet(9)

	first := Classify(s, teacher, mine, subjects)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(s, teacher, mine, subjects))
	}
}
