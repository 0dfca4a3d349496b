// Package dto defines the response shapes served to the web and mobile
// clients.
package dto

import (
	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

// SessionView is one row of the planning table. Status drives the row colour
// and Disabled greys out still-open sessions once the teacher's charge is
// complete.
type SessionView struct {
	ID             int64                  `json:"id"`
	Date           string                 `json:"date"`
	StartTime      string                 `json:"start_time"`
	EndTime        string                 `json:"end_time"`
	Rooms          []string               `json:"rooms"`
	Subjects       []models.SubjectRef    `json:"subjects"`
	Supervisors    []models.SupervisorRef `json:"supervisors"`
	Capacity       int                    `json:"capacity"`
	RemainingSeats *int                   `json:"remaining_seats,omitempty"`
	Status         models.Status          `json:"status"`
	Disabled       bool                   `json:"disabled"`
}

// TeacherHeader summarises the authenticated teacher's charge for the
// planning header.
type TeacherHeader struct {
	ID             int64   `json:"id"`
	FullName       string  `json:"full_name"`
	Grade          string  `json:"grade"`
	CurrentHours   float64 `json:"current_hours"`
	RequiredHours  float64 `json:"required_hours"`
	ChargeComplete bool    `json:"charge_complete"`
}

// OverviewResponse is the full planning payload for one teacher.
type OverviewResponse struct {
	Teacher  TeacherHeader `json:"teacher"`
	Sessions []SessionView `json:"sessions"`
}

// ActionResponse acknowledges a relayed select/cancel/auto-assign call.
type ActionResponse struct {
	Message string `json:"message"`
}
