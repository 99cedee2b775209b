package domain

import "time"

// Outcome values recorded in AuditLog.Outcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuditLog represents an audit event. UserID is empty for anonymous failures (e.g. a login with an unknown email).
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	Outcome   string
	IP        string
	Metadata  string // JSON
	CreatedAt time.Time
}
