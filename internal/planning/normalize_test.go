package planning

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

func decodeRawSession(t *testing.T, payload string) models.RawSession {
	t.Helper()
	var raw models.RawSession
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestNormalizeCurrentShape(t *testing.T) {
	raw := decodeRawSession(t, `{
		"id": 12,
		"date": "2024-06-10",
		"heureDebut": "08:00:00",
		"heureFin": "10:00:00",
		"salle": ["A1", "A2"],
		"matieres": ["Algèbre", "Analyse"],
		"surveillants": ["Haddad Ali"],
		"maxSurveillants": 3
	}`)

	s := Normalize(raw)
	assert.Equal(t, int64(12), s.ID)
	assert.Equal(t, "2024-06-10", s.Date)
	assert.Equal(t, []string{"A1", "A2"}, s.Rooms)
	require.Len(t, s.Subjects, 2)
	assert.Equal(t, "Algèbre", s.Subjects[0].Name)
	require.Len(t, s.Supervisors, 1)
	assert.Equal(t, "Haddad", s.Supervisors[0].LastName)
	assert.Equal(t, "Ali", s.Supervisors[0].FirstName)
	assert.Equal(t, 3, s.Capacity)
}

func TestNormalizeLegacyShape(t *testing.T) {
	raw := decodeRawSession(t, `{
		"id": 12,
		"date": "2024-06-10",
		"heureDebut": "08:00",
		"heureFin": "10:00",
		"salles": [{"nom": "B7"}],
		"matieres": [{"id": 4, "nom": "Physique"}],
		"enseignants": [{"id": 9, "nom": "Trabelsi", "prenom": "Mouna"}],
		"nbSurveillantsMax": 2
	}`)

	s := Normalize(raw)
	assert.Equal(t, []string{"B7"}, s.Rooms)
	require.Len(t, s.Subjects, 1)
	assert.Equal(t, int64(4), s.Subjects[0].ID)
	assert.Equal(t, "Physique", s.Subjects[0].Name)
	require.Len(t, s.Supervisors, 1)
	assert.Equal(t, int64(9), s.Supervisors[0].ID)
	assert.Equal(t, "Trabelsi Mouna", s.Supervisors[0].DisplayName())
	assert.Equal(t, 2, s.Capacity)
}

func TestNormalizePrefersCurrentFieldsOverLegacy(t *testing.T) {
	raw := decodeRawSession(t, `{
		"id": 1,
		"salle": ["C1"],
		"salles": [{"nom": "ignored"}],
		"surveillants": ["Doe Jane"],
		"enseignants": [{"nom": "ignored"}],
		"maxSurveillants": 4,
		"nbSurveillantsMax": 2
	}`)

	s := Normalize(raw)
	assert.Equal(t, []string{"C1"}, s.Rooms)
	require.Len(t, s.Supervisors, 1)
	assert.Equal(t, "Doe", s.Supervisors[0].LastName)
	assert.Equal(t, 4, s.Capacity)
}

func TestNormalizeMissingOptionalFields(t *testing.T) {
	s := Normalize(decodeRawSession(t, `{"id": 3, "date": "2024-06-11"}`))

	assert.NotNil(t, s.Rooms)
	assert.Empty(t, s.Rooms)
	assert.NotNil(t, s.Subjects)
	assert.Empty(t, s.Subjects)
	assert.NotNil(t, s.Supervisors)
	assert.Empty(t, s.Supervisors)
	assert.Zero(t, s.Capacity)
	assert.Empty(t, s.StartTime)
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	sessions := NormalizeAll([]models.RawSession{{ID: 2}, {ID: 1}, {ID: 3}})
	require.Len(t, sessions, 3)
	assert.Equal(t, int64(2), sessions[0].ID)
	assert.Equal(t, int64(1), sessions[1].ID)
	assert.Equal(t, int64(3), sessions[2].ID)
}

func TestNormalizeTeacherPlainGrade(t *testing.T) {
	var raw models.RawTeacher
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 7,
		"nom": "Gharbi",
		"prenom": "Sami",
		"email": "sami@univ.tn",
		"grade": "Professeur",
		"matieres": ["Algèbre"]
	}`), &raw))

	teacher := NormalizeTeacher(raw)
	assert.Equal(t, "Professeur", teacher.Grade)
	assert.Zero(t, teacher.GradeHours)
	assert.Zero(t, teacher.ExplicitRequiredHours)
	require.Len(t, teacher.Subjects, 1)
	assert.Equal(t, "Gharbi Sami", teacher.FullName())
}

func TestNormalizeTeacherRichGradeAndOverride(t *testing.T) {
	var raw models.RawTeacher
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 7,
		"grade": {"intitule": "Assistant", "chargeH": 4},
		"gradeCharge": 7.5
	}`), &raw))

	teacher := NormalizeTeacher(raw)
	assert.Equal(t, "Assistant", teacher.Grade)
	assert.Equal(t, 4.0, teacher.GradeHours)
	assert.Equal(t, 7.5, teacher.ExplicitRequiredHours)
}
