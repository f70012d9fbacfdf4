package domain

import "time"

// Account roles. Admin-family roles manage the back office, referrer-family
// roles use the referrer portal.
const (
	RoleAdmin        = "admin"
	RoleAdminTeam    = "admin_team"
	RoleReferrer     = "referrer"
	RoleReferrerTeam = "referrer_team"
)

// IsAdminRole reports whether the role belongs to the admin family.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleAdminTeam
}

// IsReferrerRole reports whether the role belongs to the referrer family.
func IsReferrerRole(role string) bool {
	return role == RoleReferrer || role == RoleReferrerTeam
}

// LandingPath returns the default landing page for a role.
func LandingPath(role string) string {
	if IsAdminRole(role) {
		return "/admin"
	}
	return "/dashboard"
}

// Account represents a user account in the system
type Account struct {
	ID             uint
	Email          string
	Phone          string
	PasswordHash   string `gorm:"column:password"`
	Role           string
	OrganisationID *uint
	TwoFAEnabled   bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Claims is the identity payload signed into a token. It is re-derived from
// the account record on every issuance and never mutated afterwards.
type Claims struct {
	UserID         uint
	Email          string
	Role           string
	OrganisationID *uint
	TwoFAEnabled   bool
}

// ClaimsFromAccount derives token claims from an account record.
func ClaimsFromAccount(acc *Account) Claims {
	return Claims{
		UserID:         acc.ID,
		Email:          acc.Email,
		Role:           acc.Role,
		OrganisationID: acc.OrganisationID,
		TwoFAEnabled:   acc.TwoFAEnabled,
	}
}

// TokenPair is an access/refresh token set minted together over the same claims.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Two-factor code lifecycle states. A code leaves the active state exactly
// once: used on successful verification, superseded when a newer code is
// issued for the same user.
const (
	CodeStatusActive     = "active"
	CodeStatusUsed       = "used"
	CodeStatusSuperseded = "superseded"
)

// TwoFactorCode represents a one-time numeric login code
type TwoFactorCode struct {
	ID          string
	UserID      uint
	Code        string
	Status      string
	ResendCount int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *TwoFactorCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AuthResult represents the outcome of a credential check
type AuthResult struct {
	Account *Account
	Claims  Claims
	Tokens  *TokenPair
	// Marker is the signed 2FA-verified signal, present only after a
	// successful second-factor verification.
	Marker string
	// TwoFARequired is set when credentials were correct but a second
	// factor must be verified before a session is established.
	TwoFARequired bool
	ChallengeID   string
}

// LoginAttempt is a best-effort audit record of an authentication outcome.
type LoginAttempt struct {
	ID        uint
	Email     string
	UserID    uint
	IP        string
	UserAgent string
	Success   bool
	Reason    string
	CreatedAt time.Time
}

// PasswordResetToken is a single-use token mailed to an account holder.
type PasswordResetToken struct {
	Token     string
	UserID    uint
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Invitation grants the right to sign up with a preassigned role and
// organisation. Consumed exactly once.
type Invitation struct {
	Token          string
	Email          string
	Role           string
	OrganisationID *uint
	ExpiresAt      time.Time
	AcceptedAt     *time.Time
	CreatedAt      time.Time
}
