package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

// AuditRepository persists the gateway's trail of relayed actions.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit entry. ID and timestamp are filled in when
// absent.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO audit_logs (id, teacher_id, action, session_id, succeeded, detail, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.TeacherID,
		entry.Action,
		entry.SessionID,
		entry.Succeeded,
		entry.Detail,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}

// ListByTeacher returns the most recent entries for a teacher, newest first.
func (r *AuditRepository) ListByTeacher(ctx context.Context, teacherID int64, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf(`SELECT id, teacher_id, action, session_id, succeeded, detail, ip_address, user_agent, created_at
		FROM audit_logs WHERE teacher_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var entries []models.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, teacherID); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}

	return entries, nil
}
