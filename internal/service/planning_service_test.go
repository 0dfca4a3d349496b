package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
	"github.com/BenAmorMed/ExamSupervisor/internal/upstream"
	appErrors "github.com/BenAmorMed/ExamSupervisor/pkg/errors"
	"github.com/BenAmorMed/ExamSupervisor/pkg/export"
)

type fakePlanningUpstream struct {
	teacher *models.RawTeacher
	page    *upstream.SessionPage
	mine    []models.RawSession
	subject []models.RawSession

	selectErr error
	selected  [][2]int64
	cancelled [][2]int64
	auto      []int64
}

func (f *fakePlanningUpstream) Teacher(ctx context.Context, id int64) (*models.RawTeacher, error) {
	return f.teacher, nil
}

func (f *fakePlanningUpstream) Sessions(ctx context.Context, page, size int) (*upstream.SessionPage, error) {
	return f.page, nil
}

func (f *fakePlanningUpstream) MySessions(ctx context.Context, teacherID int64) ([]models.RawSession, error) {
	return f.mine, nil
}

func (f *fakePlanningUpstream) SubjectSessions(ctx context.Context, teacherID int64) ([]models.RawSession, error) {
	return f.subject, nil
}

func (f *fakePlanningUpstream) SelectSession(ctx context.Context, teacherID, sessionID int64) error {
	if f.selectErr != nil {
		return f.selectErr
	}
	f.selected = append(f.selected, [2]int64{teacherID, sessionID})
	return nil
}

func (f *fakePlanningUpstream) CancelSession(ctx context.Context, teacherID, sessionID int64) error {
	f.cancelled = append(f.cancelled, [2]int64{teacherID, sessionID})
	return nil
}

func (f *fakePlanningUpstream) AutoAssign(ctx context.Context, teacherID int64) error {
	f.auto = append(f.auto, teacherID)
	return nil
}

type fakePDF struct {
	dataset export.Dataset
	title   string
	meta    []string
}

func (f *fakePDF) Render(data export.Dataset, title string, meta []string) ([]byte, error) {
	f.dataset = data
	f.title = title
	f.meta = meta
	return []byte("%PDF-1.4"), nil
}

func rawSession(id int64, date, start, end string, capacity int, supervisors int, subjects ...string) models.RawSession {
	raw := models.RawSession{
		ID:        id,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Rooms:     []models.FlexRoom{{Name: "A1"}},
		Capacity:  capacity,
	}
	for i := 0; i < supervisors; i++ {
		raw.Supervisors = append(raw.Supervisors, models.FlexSupervisor{ID: int64(100 + i), LastName: "X"})
	}
	for i, name := range subjects {
		raw.Subjects = append(raw.Subjects, models.FlexSubject{ID: int64(200 + i), Name: name})
	}
	return raw
}

func professor() *models.RawTeacher {
	return &models.RawTeacher{
		ID:        4,
		LastName:  "Trabelsi",
		FirstName: "Mounir",
		Email:     "mounir@univ.tn",
		Grade:     models.FlexGrade{Label: "Professeur"},
	}
}

func TestPlanningServiceOverviewClassifiesAndAccounts(t *testing.T) {
	up := &fakePlanningUpstream{
		teacher: professor(),
		page: &upstream.SessionPage{
			Content: []models.RawSession{
				rawSession(1, "2025-05-10", "08:00", "10:00", 2, 2, "Algèbre"),
				rawSession(2, "2025-05-11", "10:00", "12:00", 2, 0, "Physique"),
				rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1, "Analyse"),
			},
			TotalPages:    3,
			TotalElements: 25,
			Number:        0,
			Size:          10,
		},
		mine:    []models.RawSession{rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1, "Analyse")},
		subject: []models.RawSession{rawSession(2, "2025-05-11", "10:00", "12:00", 2, 0, "Physique")},
	}
	svc := NewPlanningService(up, nil, nil, nil, nil, 10)

	overview, pagination, err := svc.Overview(context.Background(), 4, OverviewOptions{})
	require.NoError(t, err)
	require.NotNil(t, overview)

	assert.Equal(t, "Trabelsi Mounir", overview.Teacher.FullName)
	assert.Equal(t, float64(10), overview.Teacher.RequiredHours)
	assert.Equal(t, float64(2), overview.Teacher.CurrentHours)
	assert.False(t, overview.Teacher.ChargeComplete)

	require.Len(t, overview.Sessions, 3)
	byID := map[int64]models.Status{}
	for _, v := range overview.Sessions {
		byID[v.ID] = v.Status
	}
	assert.Equal(t, models.StatusFull, byID[1])
	assert.Equal(t, models.StatusSubject, byID[2])
	assert.Equal(t, models.StatusSelected, byID[3])

	require.NotNil(t, pagination)
	assert.Equal(t, 25, pagination.TotalCount)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 10, pagination.PageSize)
}

func TestPlanningServiceOverviewDisablesOpenRowsWhenChargeComplete(t *testing.T) {
	teacher := professor()
	teacher.GradeCharge = 2 // explicit override, met by the single 2h session
	up := &fakePlanningUpstream{
		teacher: teacher,
		page: &upstream.SessionPage{
			Content: []models.RawSession{
				rawSession(1, "2025-05-10", "08:00", "10:00", 2, 0),
				rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1),
			},
			Size: 10,
		},
		mine: []models.RawSession{rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1)},
	}
	svc := NewPlanningService(up, nil, nil, nil, nil, 10)

	overview, _, err := svc.Overview(context.Background(), 4, OverviewOptions{})
	require.NoError(t, err)
	assert.True(t, overview.Teacher.ChargeComplete)

	for _, v := range overview.Sessions {
		switch v.ID {
		case 1:
			assert.Equal(t, models.StatusAvailable, v.Status)
			assert.True(t, v.Disabled, "open session should grey out once charge is complete")
		case 3:
			assert.Equal(t, models.StatusSelected, v.Status)
			assert.False(t, v.Disabled, "own sessions stay active for cancellation")
		}
	}
}

func TestPlanningServiceOverviewTabMine(t *testing.T) {
	up := &fakePlanningUpstream{
		teacher: professor(),
		page: &upstream.SessionPage{
			Content: []models.RawSession{
				rawSession(1, "2025-05-10", "08:00", "10:00", 2, 0),
				rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1),
			},
			Size: 10,
		},
		mine: []models.RawSession{rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1)},
	}
	svc := NewPlanningService(up, nil, nil, nil, nil, 10)

	overview, _, err := svc.Overview(context.Background(), 4, OverviewOptions{Tab: TabMine})
	require.NoError(t, err)
	require.Len(t, overview.Sessions, 1)
	assert.Equal(t, int64(3), overview.Sessions[0].ID)
	assert.Equal(t, models.StatusSelected, overview.Sessions[0].Status)
}

func TestPlanningServiceOverviewAvailabilitySort(t *testing.T) {
	up := &fakePlanningUpstream{
		teacher: professor(),
		page: &upstream.SessionPage{
			Content: []models.RawSession{
				rawSession(1, "2025-05-10", "08:00", "10:00", 2, 2), // full
				rawSession(2, "2025-05-11", "10:00", "12:00", 2, 0), // vacant
			},
			Size: 10,
		},
	}
	svc := NewPlanningService(up, nil, nil, nil, nil, 10)

	overview, _, err := svc.Overview(context.Background(), 4, OverviewOptions{Sort: SortAvailability})
	require.NoError(t, err)
	require.Len(t, overview.Sessions, 2)
	assert.Equal(t, int64(2), overview.Sessions[0].ID, "vacant session sorts first")
	assert.Equal(t, int64(1), overview.Sessions[1].ID)
}

func TestPlanningServiceSelectRelaysAndAudits(t *testing.T) {
	up := &fakePlanningUpstream{teacher: professor()}
	audit := &captureAudit{}
	svc := NewPlanningService(up, nil, audit, nil, nil, 10)

	require.NoError(t, svc.Select(context.Background(), 4, 9, ActionMeta{IP: "10.0.0.1", UserAgent: "web"}))
	require.Len(t, up.selected, 1)
	assert.Equal(t, [2]int64{4, 9}, up.selected[0])

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionSelect, audit.entries[0].Action)
	assert.True(t, audit.entries[0].Succeeded)
	require.NotNil(t, audit.entries[0].SessionID)
	assert.Equal(t, int64(9), *audit.entries[0].SessionID)
}

func TestPlanningServiceSelectPassesThroughConflict(t *testing.T) {
	up := &fakePlanningUpstream{
		teacher:   professor(),
		selectErr: appErrors.Upstream(409, "La séance est déjà complète", nil),
	}
	audit := &captureAudit{}
	svc := NewPlanningService(up, nil, audit, nil, nil, 10)

	err := svc.Select(context.Background(), 4, 9, ActionMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "La séance est déjà complète", appErrors.FromError(err).Message)

	require.Len(t, audit.entries, 1)
	assert.False(t, audit.entries[0].Succeeded)
	assert.Equal(t, "La séance est déjà complète", audit.entries[0].Detail)
}

func TestPlanningServiceCancelAndAutoAssignRelay(t *testing.T) {
	up := &fakePlanningUpstream{teacher: professor()}
	svc := NewPlanningService(up, nil, nil, nil, nil, 10)

	require.NoError(t, svc.Cancel(context.Background(), 4, 9, ActionMeta{}))
	require.NoError(t, svc.AutoAssign(context.Background(), 4, ActionMeta{}))
	require.Len(t, up.cancelled, 1)
	assert.Equal(t, [2]int64{4, 9}, up.cancelled[0])
	assert.Equal(t, []int64{4}, up.auto)
}

func TestPlanningServiceSummaryGatedOnCharge(t *testing.T) {
	up := &fakePlanningUpstream{
		teacher: professor(), // requires 10h
		mine:    []models.RawSession{rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1)},
	}
	svc := NewPlanningService(up, nil, nil, &fakePDF{}, nil, 10)

	_, err := svc.Summary(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrChargeIncomplete.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 412, appErrors.FromError(err).Status)
}

func TestPlanningServiceSummaryRendersUnionDateOrdered(t *testing.T) {
	teacher := professor()
	teacher.GradeCharge = 4
	up := &fakePlanningUpstream{
		teacher: teacher,
		mine: []models.RawSession{
			rawSession(5, "2025-05-14", "08:00", "10:00", 2, 1, "Analyse"),
			rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1, "Algèbre"),
		},
		subject: []models.RawSession{
			rawSession(3, "2025-05-12", "14:00", "16:00", 2, 1, "Algèbre"), // already mine
			rawSession(7, "2025-05-13", "10:00", "12:00", 2, 0, "Physique"),
		},
	}
	pdf := &fakePDF{}
	svc := NewPlanningService(up, nil, nil, pdf, nil, 10)

	payload, err := svc.Summary(context.Background(), 4)
	require.NoError(t, err)
	assert.NotEmpty(t, payload)

	require.Len(t, pdf.dataset.Rows, 3)
	assert.Equal(t, "2025-05-12", pdf.dataset.Rows[0]["Date"])
	assert.Equal(t, "Choisie", pdf.dataset.Rows[0]["Rôle"])
	assert.Equal(t, "2025-05-13", pdf.dataset.Rows[1]["Date"])
	assert.Equal(t, "RESPONSABLE", pdf.dataset.Rows[1]["Rôle"])
	assert.Equal(t, "2025-05-14", pdf.dataset.Rows[2]["Date"])
	assert.Equal(t, "Choisie", pdf.dataset.Rows[2]["Rôle"])

	assert.Contains(t, pdf.meta[0], "Trabelsi Mounir")
}

func TestPlanningServiceSummaryNothingToPrint(t *testing.T) {
	up := &fakePlanningUpstream{
		teacher: &models.RawTeacher{ID: 4, LastName: "Trabelsi"}, // unknown grade, quota 0
	}
	svc := NewPlanningService(up, nil, nil, &fakePDF{}, nil, 10)

	_, err := svc.Summary(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
