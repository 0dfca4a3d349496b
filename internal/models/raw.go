package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// The upstream backend has shipped two generations of its session payload:
// the current DTO (salle as plain strings, surveillants, maxSurveillants) and
// the legacy entity shape (salles as {nom} objects, enseignants,
// nbSurveillantsMax). The Raw* types absorb both; nothing outside the
// normalization step may branch on these field names.

// RawSession mirrors a session record as the backend sends it.
type RawSession struct {
	ID                int64            `json:"id"`
	Date              string           `json:"date"`
	StartTime         string           `json:"heureDebut"`
	EndTime           string           `json:"heureFin"`
	Rooms             []FlexRoom       `json:"salle"`
	LegacyRooms       []FlexRoom       `json:"salles"`
	Subjects          []FlexSubject    `json:"matieres"`
	Supervisors       []FlexSupervisor `json:"surveillants"`
	LegacySupervisors []FlexSupervisor `json:"enseignants"`
	Capacity          int              `json:"maxSurveillants"`
	LegacyCapacity    int              `json:"nbSurveillantsMax"`
}

// RawTeacher mirrors the teacher profile record. The grade arrives either as
// a plain label or as a rich record carrying its own hour quota.
type RawTeacher struct {
	ID          int64         `json:"id"`
	LastName    string        `json:"nom"`
	FirstName   string        `json:"prenom"`
	Email       string        `json:"email"`
	Grade       FlexGrade     `json:"grade"`
	GradeCharge float64       `json:"gradeCharge"`
	Subjects    []FlexSubject `json:"matieres"`
}

// FlexRoom decodes a room label sent either as a bare string or as an object
// carrying a name.
type FlexRoom struct {
	Name string
}

func (r *FlexRoom) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.Name)
	}
	var obj struct {
		Nom  string `json:"nom"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Name = firstNonEmpty(obj.Nom, obj.Name)
	return nil
}

// FlexSubject decodes a subject sent as a bare name or as an object with an
// identifier and a name.
type FlexSubject struct {
	ID   int64
	Name string
}

func (s *FlexSubject) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Name)
	}
	var obj struct {
		ID   int64  `json:"id"`
		Nom  string `json:"nom"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.ID = obj.ID
	s.Name = firstNonEmpty(obj.Nom, obj.Name)
	return nil
}

// Ref converts the decoded subject into its canonical reference.
func (s FlexSubject) Ref() SubjectRef {
	return SubjectRef{ID: s.ID, Name: s.Name}
}

// FlexSupervisor decodes a supervisor reference sent as a bare full name or
// as an object with identifier and name parts.
type FlexSupervisor struct {
	ID        int64
	LastName  string
	FirstName string
}

func (t *FlexSupervisor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var full string
		if err := json.Unmarshal(data, &full); err != nil {
			return err
		}
		parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
		t.LastName = parts[0]
		if len(parts) == 2 {
			t.FirstName = parts[1]
		}
		return nil
	}
	var obj struct {
		ID        int64  `json:"id"`
		Nom       string `json:"nom"`
		Prenom    string `json:"prenom"`
		LastName  string `json:"last_name"`
		FirstName string `json:"first_name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.ID = obj.ID
	t.LastName = firstNonEmpty(obj.Nom, obj.LastName)
	t.FirstName = firstNonEmpty(obj.Prenom, obj.FirstName)
	return nil
}

// Ref converts the decoded supervisor into its canonical reference.
func (t FlexSupervisor) Ref() SupervisorRef {
	return SupervisorRef{ID: t.ID, LastName: t.LastName, FirstName: t.FirstName}
}

// FlexGrade decodes the teacher grade, either a plain label or a rich record
// carrying an explicit required-hours value.
type FlexGrade struct {
	Label string
	Hours float64
}

func (g *FlexGrade) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &g.Label)
	}
	var obj struct {
		Intitule string  `json:"intitule"`
		Name     string  `json:"name"`
		ChargeH  float64 `json:"chargeH"`
		Hours    float64 `json:"requiredHours"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	g.Label = firstNonEmpty(obj.Intitule, obj.Name)
	if obj.ChargeH != 0 {
		g.Hours = obj.ChargeH
	} else {
		g.Hours = obj.Hours
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
