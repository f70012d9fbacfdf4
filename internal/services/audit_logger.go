package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// AttemptAuditLogger implements domain.AuditLogger over the login-attempt
// trail. Writes are best-effort: a failed append is logged at warn and never
// blocks the action being audited.
type AttemptAuditLogger struct {
	attemptRepo domain.LoginAttemptRepository
	logger      zerolog.Logger
}

var _ domain.AuditLogger = (*AttemptAuditLogger)(nil)

// NewAttemptAuditLogger creates an audit logger backed by the attempt trail
func NewAttemptAuditLogger(attemptRepo domain.LoginAttemptRepository, logger zerolog.Logger) *AttemptAuditLogger {
	return &AttemptAuditLogger{attemptRepo: attemptRepo, logger: logger}
}

// LogEvent implements domain.AuditLogger
func (l *AttemptAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	attempt := &domain.LoginAttempt{
		Email:     event.Email,
		UserID:    event.UserID,
		IP:        event.IPAddress,
		UserAgent: event.UserAgent,
		Success:   event.Success,
		Reason:    string(event.EventType),
		CreatedAt: event.Timestamp,
	}
	if !event.Success && event.Reason != "" {
		attempt.Reason = string(event.EventType) + ":" + event.Reason
	}
	if err := l.attemptRepo.Append(ctx, attempt); err != nil {
		l.logger.Warn().Err(err).Str("event", string(event.EventType)).Msg("audit write failed")
	}
}
