package domain

import (
	"errors"
	"time"
)

// Authentication errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrRateLimited        = errors.New("too many requests")
)

// Two-factor errors
var (
	ErrTwoFactorCodeInvalid = errors.New("invalid two-factor code")
	ErrTwoFactorCodeExpired = errors.New("two-factor code has expired")
	ErrTwoFactorMaxAttempts = errors.New("maximum two-factor attempts exceeded")
	ErrResendTooSoon        = errors.New("resend requested too soon")
	ErrResendLimit          = errors.New("resend limit exceeded")
)

// Token errors. Verification failures are deliberately collapsed into a
// single error so callers cannot distinguish malformed from expired from
// tampered.
var (
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// Account-recovery and onboarding errors
var (
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	ErrInvitationInvalid = errors.New("invalid or expired invitation")
)

// Configuration errors
var (
	ErrNotConfigured = errors.New("required configuration is missing")
)

// LockedError carries the lockout deadline alongside ErrAccountLocked so
// callers can tell legitimate users how long to wait.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return ErrAccountLocked.Error()
}

func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// RetryAfter returns the remaining lockout duration, never negative.
func (e *LockedError) RetryAfter(now time.Time) time.Duration {
	if d := e.Until.Sub(now); d > 0 {
		return d
	}
	return 0
}

// CredentialsError carries the decrementing attempts-remaining count
// alongside ErrInvalidCredentials. Wrong password and unknown account both
// produce it, indistinguishably.
type CredentialsError struct {
	AttemptsRemaining int
}

func (e *CredentialsError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *CredentialsError) Unwrap() error { return ErrInvalidCredentials }

// CooldownError carries the precise remaining wait alongside ErrResendTooSoon.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return ErrResendTooSoon.Error()
}

func (e *CooldownError) Unwrap() error { return ErrResendTooSoon }

// ReasonCode maps an authentication error to its stable machine-readable
// code. Responses carry the code alongside a generic message so clients can
// branch without parsing English text.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountNotFound):
		// Not-found collapses into invalid_credentials to prevent
		// account enumeration.
		return "invalid_credentials"
	case errors.Is(err, ErrTwoFactorMaxAttempts):
		return "two_factor_max_attempts"
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid_or_expired"
	case errors.Is(err, ErrTwoFactorCodeExpired):
		return "two_factor_code_expired"
	case errors.Is(err, ErrTwoFactorCodeInvalid):
		return "two_factor_code_invalid"
	case errors.Is(err, ErrResendTooSoon), errors.Is(err, ErrResendLimit), errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrResetTokenInvalid):
		return "reset_token_invalid"
	case errors.Is(err, ErrInvitationInvalid):
		return "invitation_invalid"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "unknown"
	}
}
