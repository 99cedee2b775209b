package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies the component that produced an AuthEvent.
const SourceAuthService = "eventflow-auth"

// AuthEvent is a best-effort notification about an authentication operation, published to the
// event bus and to OTel logs. It never carries credentials.
type AuthEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"eventType"` // "<resource>.<action>", e.g. "session.login"
	Outcome   string    `json:"outcome"`   // "success" or "failure"
	Code      string    `json:"code"`      // gRPC status code name
	UserID    string    `json:"userId,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAuthEvent returns an event with ID, Source and CreatedAt populated.
func NewAuthEvent(eventType, outcome, code string, now time.Time) *AuthEvent {
	return &AuthEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Outcome:   outcome,
		Code:      code,
		Source:    SourceAuthService,
		CreatedAt: now.UTC(),
	}
}
