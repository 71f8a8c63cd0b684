package domain

import "time"

// AuditAction names a recorded identity mutation.
type AuditAction string

const (
	AuditCreated     AuditAction = "created"
	AuditUpdated     AuditAction = "updated"
	AuditDeleted     AuditAction = "deleted"
	AuditBulkUpdated AuditAction = "bulk_updated"
)

const (
	EntityUser = "user"
	EntityRole = "role"
)

// AuditEvent records a successful mutation of a user or role.
type AuditEvent struct {
	ID       string
	Entity   string
	EntityID string
	Action   AuditAction
	Fields   []string
	Matched  int64
	Modified int64
	At       time.Time
}
