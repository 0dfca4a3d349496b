package models

import "time"

// AuditAction enumerates the mutating operations the gateway relays.
type AuditAction string

const (
	AuditActionLogin      AuditAction = "LOGIN"
	AuditActionSelect     AuditAction = "SELECT_SESSION"
	AuditActionCancel     AuditAction = "CANCEL_SESSION"
	AuditActionAutoAssign AuditAction = "AUTO_ASSIGN"
)

// AuditLog records one relayed action. This is gateway-local operational
// data; the authoritative assignment state stays upstream.
type AuditLog struct {
	ID        string      `db:"id" json:"id"`
	TeacherID int64       `db:"teacher_id" json:"teacher_id"`
	Action    AuditAction `db:"action" json:"action"`
	SessionID *int64      `db:"session_id" json:"session_id,omitempty"`
	Succeeded bool        `db:"succeeded" json:"succeeded"`
	Detail    string      `db:"detail" json:"detail"`
	IPAddress string      `db:"ip_address" json:"ip_address"`
	UserAgent string      `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
