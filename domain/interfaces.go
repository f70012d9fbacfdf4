package domain

import (
	"context"
	"time"
)

// AccountRepository defines account data access operations
type AccountRepository interface {
	Create(ctx context.Context, acc *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uint) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
}

// TwoFactorCodeRepository defines two-factor code persistence operations.
// Codes are looked up by value, so implementations must be able to tell
// whether a candidate code collides with any currently-active one.
type TwoFactorCodeRepository interface {
	Insert(ctx context.Context, code *TwoFactorCode) error
	FindByID(ctx context.Context, id string) (*TwoFactorCode, error)
	FindActiveByCode(ctx context.Context, code string) (*TwoFactorCode, error)
	ActiveCodeExists(ctx context.Context, code string) (bool, error)
	MarkUsed(ctx context.Context, id string) error
	SupersedeActive(ctx context.Context, userID uint) error
	IncrementResend(ctx context.Context, id string) error
}

// PasswordResetTokenRepository defines reset token persistence operations
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	FindLive(ctx context.Context, token string) (*PasswordResetToken, error)
	MarkUsed(ctx context.Context, token string) error
	InvalidateForUser(ctx context.Context, userID uint) error
}

// InvitationRepository defines invitation record operations
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	FindLive(ctx context.Context, token string) (*Invitation, error)
	MarkAccepted(ctx context.Context, token string) error
}

// LoginAttemptRepository appends to the login-attempt audit trail.
type LoginAttemptRepository interface {
	Append(ctx context.Context, attempt *LoginAttempt) error
}

// TokenService signs and verifies identity tokens. Access and refresh tokens
// are signed with distinct secrets so a leaked access token cannot stand in
// for a refresh token or vice versa. The marker is the 2FA-verified signal,
// bound to a user id and living as long as a refresh token.
type TokenService interface {
	Issue(claims Claims) (*TokenPair, error)
	VerifyAccess(token string) (*Claims, error)
	VerifyRefresh(token string) (*Claims, error)
	IssueMarker(userID uint) (string, error)
	VerifyMarker(token string) (uint, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// NotificationService dispatches templated messages to account holders.
// Send delivers an email rendered from the named template; SendSMS pushes a
// short text message when a phone number is on file.
type NotificationService interface {
	Send(ctx context.Context, template, recipient string, vars map[string]string) error
	SendSMS(to, message string) error
}

// ThrottleResult reports the state of an attempt counter after a failure was
// recorded or a check was made.
type ThrottleResult struct {
	Remaining   int
	Locked      bool
	LockedUntil time.Time
}

// AttemptThrottle guards a verification path with an
// N-attempts-per-window-then-lock policy. Keys compose identity and origin so
// a single origin spraying many identities and many origins spraying one
// identity both accumulate independently.
type AttemptThrottle interface {
	RecordFailure(ctx context.Context, key string) (*ThrottleResult, error)
	CheckLocked(ctx context.Context, key string) (*ThrottleResult, error)
	Clear(ctx context.Context, key string) error
	Close() error
}

// ThrottleKey composes the attempt-counter key for an identity and its
// origin address.
func ThrottleKey(identity, origin string) string {
	return identity + "|" + origin
}

// ChallengeService runs the two-factor code state machine.
type ChallengeService interface {
	Issue(ctx context.Context, acc *Account) (*TwoFactorCode, error)
	Verify(ctx context.Context, code string) (uint, error)
	Resend(ctx context.Context, challengeID string) (*TwoFactorCode, error)
}

// AuthService defines authentication business logic
type AuthService interface {
	Login(ctx context.Context, email, password string, cc *ClientContext) (*AuthResult, error)
	CompleteTwoFactor(ctx context.Context, email, code string, cc *ClientContext) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Signup(ctx context.Context, inviteToken, password string, cc *ClientContext) (*Account, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Invite(ctx context.Context, email, role string, organisationID *uint, cc *ClientContext) (*Invitation, error)
	Profile(ctx context.Context, userID uint) (*Account, error)
	Logout(ctx context.Context, userID uint, cc *ClientContext) error
}
