package planning

import (
	"strconv"
	"strings"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

// gradeHours is the fallback quota table, keyed by grade label. It only
// applies when the backend sent a bare label without an hour value.
var gradeHours = map[string]float64{
	"Professeur":            10,
	"Maître de conférences": 8,
	"Maître assistant":      6,
	"Assistant":             4,
}

// RequiredHours resolves the teacher's supervision quota. First defined,
// positive value wins: the explicit DTO override, then the hours carried by a
// rich grade record, then the label table. Unknown grades yield 0, which
// ChargeComplete treats as trivially satisfied so an unassignable teacher is
// never shown as incomplete indefinitely.
func RequiredHours(t models.Teacher) float64 {
	if t.ExplicitRequiredHours > 0 {
		return t.ExplicitRequiredHours
	}
	if t.GradeHours > 0 {
		return t.GradeHours
	}
	if hours, ok := gradeHours[t.Grade]; ok {
		return hours
	}
	return 0
}

// CurrentHours sums the durations of the teacher's selected sessions in
// hours. Missing times count as midnight, so a session without times
// contributes zero. Negative durations are not corrected; they propagate
// arithmetically.
func CurrentHours(mySessions []models.Session) float64 {
	var minutes float64
	for _, s := range mySessions {
		minutes += float64(clockMinutes(s.EndTime) - clockMinutes(s.StartTime))
	}
	return minutes / 60
}

// ChargeComplete reports whether the accumulated hours meet the quota. The
// boundary is inclusive.
func ChargeComplete(current, required float64) bool {
	return current >= required
}

// clockMinutes parses a local time of day given as HH:MM or HH:MM:SS into
// minutes since midnight. Anything unparseable counts as midnight.
func clockMinutes(clock string) int {
	if clock == "" {
		return 0
	}
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return hours*60 + mins
}
