package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/BenAmorMed/ExamSupervisor/internal/dto"
	"github.com/BenAmorMed/ExamSupervisor/internal/models"
	"github.com/BenAmorMed/ExamSupervisor/internal/planning"
	"github.com/BenAmorMed/ExamSupervisor/internal/upstream"
	appErrors "github.com/BenAmorMed/ExamSupervisor/pkg/errors"
	"github.com/BenAmorMed/ExamSupervisor/pkg/export"
)

// Tabs of the planning screen.
const (
	TabAll      = "all"
	TabMine     = "mine"
	TabSubjects = "subjects"
)

// SortAvailability orders vacant sessions first.
const SortAvailability = "availability"

type planningUpstream interface {
	Teacher(ctx context.Context, id int64) (*models.RawTeacher, error)
	Sessions(ctx context.Context, page, size int) (*upstream.SessionPage, error)
	MySessions(ctx context.Context, teacherID int64) ([]models.RawSession, error)
	SubjectSessions(ctx context.Context, teacherID int64) ([]models.RawSession, error)
	SelectSession(ctx context.Context, teacherID, sessionID int64) error
	CancelSession(ctx context.Context, teacherID, sessionID int64) error
	AutoAssign(ctx context.Context, teacherID int64) error
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, meta []string) ([]byte, error)
}

// OverviewOptions carries the query knobs of the planning screen.
type OverviewOptions struct {
	Page int
	Size int
	Sort string
	Tab  string
}

// ActionMeta carries request metadata recorded alongside relayed actions.
type ActionMeta struct {
	IP        string
	UserAgent string
}

// PlanningService orchestrates one planning screen load and relays session
// mutations to the backend. The backend stays the single source of truth:
// every overview is computed from a fresh (or briefly cached) snapshot and
// every mutation is followed by cache invalidation.
type PlanningService struct {
	upstream        planningUpstream
	cache           *CacheService
	audit           AuditRecorder
	pdf             pdfRenderer
	logger          *zap.Logger
	defaultPageSize int
}

// NewPlanningService constructs a PlanningService. Cache, audit and pdf may
// be nil; the corresponding features degrade gracefully.
func NewPlanningService(up planningUpstream, cache *CacheService, audit AuditRecorder, pdf pdfRenderer, logger *zap.Logger, defaultPageSize int) *PlanningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &PlanningService{
		upstream:        up,
		cache:           cache,
		audit:           audit,
		pdf:             pdf,
		logger:          logger,
		defaultPageSize: defaultPageSize,
	}
}

type cachedOverview struct {
	Overview   dto.OverviewResponse `json:"overview"`
	Pagination models.Pagination    `json:"pagination"`
}

// Overview assembles the planning screen for one teacher: the teacher header
// with charge accounting and the classified session list for the requested
// page.
func (s *PlanningService) Overview(ctx context.Context, teacherID int64, opts OverviewOptions) (*dto.OverviewResponse, *models.Pagination, error) {
	if opts.Page < 0 {
		opts.Page = 0
	}
	if opts.Size <= 0 {
		opts.Size = s.defaultPageSize
	}
	opts.Tab = normalizeTab(opts.Tab)

	cacheKey := fmt.Sprintf("plan:teacher:%d:%d:%d:%s:%s", teacherID, opts.Page, opts.Size, opts.Sort, opts.Tab)
	if s.cache.Enabled() {
		var cached cachedOverview
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached.Overview, &cached.Pagination, nil
		}
	}

	snapshot, err := s.fetchSnapshot(ctx, teacherID, opts.Page, opts.Size)
	if err != nil {
		return nil, nil, err
	}

	teacher := planning.NormalizeTeacher(*snapshot.teacher)
	all := planning.NormalizeAll(snapshot.page.Content)
	mine := planning.NormalizeAll(snapshot.mine)
	subject := planning.NormalizeAll(snapshot.subject)

	merged := planning.MergeForDisplay(all, subject, mine)
	mineIDs := planning.SessionIDs(mine)
	subjectIDs := planning.SessionIDs(subject)

	required := planning.RequiredHours(teacher)
	current := planning.CurrentHours(mine)
	complete := planning.ChargeComplete(current, required)

	if opts.Sort == SortAvailability {
		merged = planning.SortByAvailability(merged, mineIDs)
	}

	views := make([]dto.SessionView, 0, len(merged))
	for _, session := range merged {
		status := planning.Classify(session, teacher, mineIDs, subjectIDs)
		if !tabAccepts(opts.Tab, status) {
			continue
		}
		views = append(views, dto.SessionView{
			ID:             session.ID,
			Date:           session.Date,
			StartTime:      session.StartTime,
			EndTime:        session.EndTime,
			Rooms:          session.Rooms,
			Subjects:       session.Subjects,
			Supervisors:    session.Supervisors,
			Capacity:       session.Capacity,
			RemainingSeats: planning.RemainingSeats(session),
			Status:         status,
			Disabled:       status == models.StatusAvailable && complete,
		})
	}

	overview := dto.OverviewResponse{
		Teacher: dto.TeacherHeader{
			ID:             teacher.ID,
			FullName:       teacher.FullName(),
			Grade:          teacher.Grade,
			CurrentHours:   current,
			RequiredHours:  required,
			ChargeComplete: complete,
		},
		Sessions: views,
	}
	pagination := models.Pagination{
		Page:       snapshot.page.Number,
		PageSize:   snapshot.page.Size,
		TotalCount: snapshot.page.TotalElements,
		TotalPages: snapshot.page.TotalPages,
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, cachedOverview{Overview: overview, Pagination: pagination}, 0); err != nil {
			s.logger.Warn("failed to cache planning overview", zap.Error(err))
		}
	}

	return &overview, &pagination, nil
}

// Select relays a session choice to the backend. The backend enforces
// capacity, conflicts and charge; its verdict is passed through.
func (s *PlanningService) Select(ctx context.Context, teacherID, sessionID int64, meta ActionMeta) error {
	err := s.upstream.SelectSession(ctx, teacherID, sessionID)
	s.recordAction(ctx, teacherID, models.AuditActionSelect, &sessionID, err, meta)
	if err != nil {
		return err
	}
	s.invalidatePlans(ctx, teacherID)
	return nil
}

// Cancel relays a withdrawal to the backend.
func (s *PlanningService) Cancel(ctx context.Context, teacherID, sessionID int64, meta ActionMeta) error {
	err := s.upstream.CancelSession(ctx, teacherID, sessionID)
	s.recordAction(ctx, teacherID, models.AuditActionCancel, &sessionID, err, meta)
	if err != nil {
		return err
	}
	s.invalidatePlans(ctx, teacherID)
	return nil
}

// AutoAssign asks the backend to fill the teacher's remaining charge.
func (s *PlanningService) AutoAssign(ctx context.Context, teacherID int64, meta ActionMeta) error {
	err := s.upstream.AutoAssign(ctx, teacherID)
	s.recordAction(ctx, teacherID, models.AuditActionAutoAssign, nil, err, meta)
	if err != nil {
		return err
	}
	s.invalidatePlans(ctx, teacherID)
	return nil
}

// Summary renders the teacher's printable supervision planning. It is only
// available once the charge is complete and covers the union of selected
// sessions and sessions where the teacher is the subject responsible.
func (s *PlanningService) Summary(ctx context.Context, teacherID int64) ([]byte, error) {
	if s.pdf == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "pdf rendering is not configured")
	}

	var (
		wg               sync.WaitGroup
		rawTeacher       *models.RawTeacher
		rawMine, rawSubj []models.RawSession
		errTeacher       error
		errMine, errSubj error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		rawTeacher, errTeacher = s.upstream.Teacher(ctx, teacherID)
	}()
	go func() {
		defer wg.Done()
		rawMine, errMine = s.upstream.MySessions(ctx, teacherID)
	}()
	go func() {
		defer wg.Done()
		rawSubj, errSubj = s.upstream.SubjectSessions(ctx, teacherID)
	}()
	wg.Wait()
	for _, err := range []error{errTeacher, errMine, errSubj} {
		if err != nil {
			return nil, err
		}
	}

	teacher := planning.NormalizeTeacher(*rawTeacher)
	mine := planning.NormalizeAll(rawMine)
	subject := planning.NormalizeAll(rawSubj)

	required := planning.RequiredHours(teacher)
	current := planning.CurrentHours(mine)
	if !planning.ChargeComplete(current, required) {
		return nil, appErrors.Clone(appErrors.ErrChargeIncomplete,
			fmt.Sprintf("teaching charge incomplete: %.1f of %.1f hours", current, required))
	}

	mineIDs := planning.SessionIDs(mine)
	rows := make([]summaryRow, 0, len(mine)+len(subject))
	for _, session := range mine {
		rows = append(rows, summaryRow{session: session, role: "Choisie"})
	}
	for _, session := range subject {
		if mineIDs.Has(session.ID) {
			continue
		}
		rows = append(rows, summaryRow{session: session, role: "RESPONSABLE"})
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no sessions to print")
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].session.Date != rows[j].session.Date {
			return rows[i].session.Date < rows[j].session.Date
		}
		return rows[i].session.StartTime < rows[j].session.StartTime
	})

	dataset := export.Dataset{
		Headers: []string{"Date", "Horaire", "Salles", "Matières", "Rôle"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		subjects := make([]string, 0, len(row.session.Subjects))
		for _, subj := range row.session.Subjects {
			subjects = append(subjects, subj.Name)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     row.session.Date,
			"Horaire":  fmt.Sprintf("%s - %s", row.session.StartTime, row.session.EndTime),
			"Salles":   strings.Join(row.session.Rooms, ", "),
			"Matières": strings.Join(subjects, ", "),
			"Rôle":     row.role,
		})
	}

	meta := []string{
		fmt.Sprintf("Enseignant: %s", teacher.FullName()),
		fmt.Sprintf("Grade: %s", teacher.Grade),
		fmt.Sprintf("Charge: %.1f / %.1f heures", current, required),
	}
	return s.pdf.Render(dataset, "Planning de surveillance", meta)
}

type summaryRow struct {
	session models.Session
	role    string
}

type overviewSnapshot struct {
	teacher *models.RawTeacher
	page    *upstream.SessionPage
	mine    []models.RawSession
	subject []models.RawSession
}

// fetchSnapshot issues the four upstream reads concurrently. The first error
// in fetch order wins.
func (s *PlanningService) fetchSnapshot(ctx context.Context, teacherID int64, page, size int) (*overviewSnapshot, error) {
	var (
		wg       sync.WaitGroup
		snapshot overviewSnapshot

		errTeacher, errPage, errMine, errSubject error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		snapshot.teacher, errTeacher = s.upstream.Teacher(ctx, teacherID)
	}()
	go func() {
		defer wg.Done()
		snapshot.page, errPage = s.upstream.Sessions(ctx, page, size)
	}()
	go func() {
		defer wg.Done()
		snapshot.mine, errMine = s.upstream.MySessions(ctx, teacherID)
	}()
	go func() {
		defer wg.Done()
		snapshot.subject, errSubject = s.upstream.SubjectSessions(ctx, teacherID)
	}()
	wg.Wait()

	for _, err := range []error{errTeacher, errPage, errMine, errSubject} {
		if err != nil {
			return nil, err
		}
	}
	return &snapshot, nil
}

func (s *PlanningService) invalidatePlans(ctx context.Context, teacherID int64) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("plan:teacher:%d:*", teacherID)); err != nil {
		s.logger.Warn("failed to invalidate planning cache", zap.Int64("teacher_id", teacherID), zap.Error(err))
	}
}

func (s *PlanningService) recordAction(ctx context.Context, teacherID int64, action models.AuditAction, sessionID *int64, actionErr error, meta ActionMeta) {
	if s.audit == nil {
		return
	}
	detail := ""
	if actionErr != nil {
		detail = appErrors.FromError(actionErr).Message
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		TeacherID: teacherID,
		Action:    action,
		SessionID: sessionID,
		Succeeded: actionErr == nil,
		Detail:    detail,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", string(action)), zap.Error(err))
	}
}

func normalizeTab(tab string) string {
	switch tab {
	case TabMine, TabSubjects:
		return tab
	default:
		return TabAll
	}
}

func tabAccepts(tab string, status models.Status) bool {
	switch tab {
	case TabMine:
		return status == models.StatusSelected
	case TabSubjects:
		return status == models.StatusSubject
	default:
		return true
	}
}
