package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Authentication events
	LoginEvent          AuditEventType = "LOGIN"
	LoginFailureEvent   AuditEventType = "LOGIN_FAILED"
	LoginLockoutEvent   AuditEventType = "LOGIN_LOCKED_OUT"
	LogoutEvent         AuditEventType = "LOGOUT"
	SessionRefreshEvent AuditEventType = "SESSION_REFRESHED"

	// Two-factor events
	TwoFactorIssuedEvent  AuditEventType = "TWO_FACTOR_ISSUED"
	TwoFactorResendEvent  AuditEventType = "TWO_FACTOR_RESENT"
	TwoFactorVerifyEvent  AuditEventType = "TWO_FACTOR_VERIFIED"
	TwoFactorFailureEvent AuditEventType = "TWO_FACTOR_FAILED"

	// Account lifecycle events
	SignupEvent            AuditEventType = "SIGNUP"
	InvitationSentEvent    AuditEventType = "INVITATION_SENT"
	PasswordResetReqEvent  AuditEventType = "PASSWORD_RESET_REQUESTED"
	PasswordResetDoneEvent AuditEventType = "PASSWORD_RESET_COMPLETED"
)

// AuditEvent represents an authentication outcome worth keeping a trail of.
type AuditEvent struct {
	EventType AuditEventType `json:"event_type"`
	UserID    uint           `json:"user_id"`
	Email     string         `json:"email,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Success   bool           `json:"success"`
	Reason    string         `json:"reason,omitempty"`
}

// AuditLogger records authentication events. Implementations are best-effort:
// a failed write must never block the action being audited.
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// ClientContext carries request-origin information through the service layer.
type ClientContext struct {
	IPAddress string
	UserAgent string
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType, userID uint) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Success:   true,
	}
}

// WithError marks the event failed and records the machine reason code.
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.Reason = ReasonCode(err)
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithClientContext sets client origin information
func (e *AuditEvent) WithClientContext(cc *ClientContext) *AuditEvent {
	if cc != nil {
		e.IPAddress = cc.IPAddress
		e.UserAgent = cc.UserAgent
	}
	return e
}
