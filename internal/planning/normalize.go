// Package planning holds the session status and charge accounting engine
// shared by the web and mobile clients. Every function is pure: it receives a
// snapshot of the upstream data, allocates its result and never mutates its
// inputs, so the callers are free to invoke it on every render.
package planning

import (
	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

// Normalize folds the two historical upstream payload shapes into the
// canonical session form. It never fails: absent rooms and subjects become
// empty slices and an absent capacity becomes 0, which fullness checks treat
// as unbounded.
func Normalize(raw models.RawSession) models.Session {
	roomRefs := raw.Rooms
	if len(roomRefs) == 0 {
		roomRefs = raw.LegacyRooms
	}
	rooms := make([]string, 0, len(roomRefs))
	for _, r := range roomRefs {
		if r.Name != "" {
			rooms = append(rooms, r.Name)
		}
	}

	subjects := make([]models.SubjectRef, 0, len(raw.Subjects))
	for _, s := range raw.Subjects {
		subjects = append(subjects, s.Ref())
	}

	supervisorRefs := raw.Supervisors
	if len(supervisorRefs) == 0 {
		supervisorRefs = raw.LegacySupervisors
	}
	supervisors := make([]models.SupervisorRef, 0, len(supervisorRefs))
	for _, t := range supervisorRefs {
		supervisors = append(supervisors, t.Ref())
	}

	capacity := raw.Capacity
	if capacity == 0 {
		capacity = raw.LegacyCapacity
	}

	return models.Session{
		ID:          raw.ID,
		Date:        raw.Date,
		StartTime:   raw.StartTime,
		EndTime:     raw.EndTime,
		Rooms:       rooms,
		Subjects:    subjects,
		Supervisors: supervisors,
		Capacity:    capacity,
	}
}

// NormalizeAll maps a list of raw sessions into canonical form, preserving
// the upstream order.
func NormalizeAll(raws []models.RawSession) []models.Session {
	sessions := make([]models.Session, 0, len(raws))
	for _, raw := range raws {
		sessions = append(sessions, Normalize(raw))
	}
	return sessions
}

// NormalizeTeacher folds a raw teacher profile into the canonical form. A
// rich grade record contributes its own hour quota; the DTO-level gradeCharge
// field becomes the explicit override.
func NormalizeTeacher(raw models.RawTeacher) models.Teacher {
	subjects := make([]models.SubjectRef, 0, len(raw.Subjects))
	for _, s := range raw.Subjects {
		subjects = append(subjects, s.Ref())
	}

	return models.Teacher{
		ID:                    raw.ID,
		LastName:              raw.LastName,
		FirstName:             raw.FirstName,
		Email:                 raw.Email,
		Grade:                 raw.Grade.Label,
		GradeHours:            raw.Grade.Hours,
		ExplicitRequiredHours: raw.GradeCharge,
		Subjects:              subjects,
	}
}
