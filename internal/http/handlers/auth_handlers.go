package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jainabhi1607/loanease-sub003/domain"
	"github.com/jainabhi1607/loanease-sub003/internal/http/middleware"
	"github.com/jainabhi1607/loanease-sub003/internal/http/session"
)

// Non-browser callers identify themselves with this header and get the token
// pair in the response body instead of cookies.
const clientTypeHeader = "X-Client-Type"

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc      domain.AuthService
	challengeSvc domain.ChallengeService
	sessions     *session.Manager
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, challengeSvc domain.ChallengeService, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{
		authSvc:      authSvc,
		challengeSvc: challengeSvc,
		sessions:     sessions,
	}
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TwoFactorVerifyRequest represents two-factor verification request
type TwoFactorVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// TwoFactorResendRequest represents a resend request for a prior challenge
type TwoFactorResendRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
}

// RefreshRequest represents token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SignupRequest represents invitation-based signup
type SignupRequest struct {
	InvitationToken string `json:"invitation_token" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
}

// PasswordResetRequest starts the reset flow
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirm completes the reset flow
type PasswordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// InviteRequest asks for a signup invitation to be mailed out
type InviteRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Role           string `json:"role" binding:"required,oneof=admin admin_team referrer referrer_team"`
	OrganisationID *uint  `json:"organisation_id"`
}

// Login handles credential verification. For a 2FA-enabled account it issues
// a code and does not establish a session.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password, clientContext(c))
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if result.TwoFARequired {
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"two_fa_required": true,
				"challenge_id":    result.ChallengeID,
				"email":           result.Account.Email,
			},
		})
		return
	}

	h.respondSession(c, result)
}

// VerifyTwoFactor handles second-factor code submission and establishes the
// full session on success.
func (h *AuthHandlers) VerifyTwoFactor(c *gin.Context) {
	var req TwoFactorVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	result, err := h.authSvc.CompleteTwoFactor(c.Request.Context(), req.Email, req.Code, clientContext(c))
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.respondSession(c, result)
}

// ResendTwoFactor handles "did not receive a code" requests
func (h *AuthHandlers) ResendTwoFactor(c *gin.Context) {
	var req TwoFactorResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	challenge, err := h.challengeSvc.Resend(c.Request.Context(), req.ChallengeID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"challenge_id": challenge.ID,
			"expires_at":   challenge.ExpiresAt,
		},
	})
}

// Refresh handles explicit token refresh for bearer clients
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.respondSession(c, result)
}

// Signup handles invitation-based account creation
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	acc, err := h.authSvc.Signup(c.Request.Context(), req.InvitationToken, req.Password, clientContext(c))
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"user_id": acc.ID,
			"email":   acc.Email,
			"role":    acc.Role,
		},
	})
}

// RequestPasswordReset always answers OK so the response cannot be used to
// probe which emails hold accounts.
func (h *AuthHandlers) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process request", "code": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "If the address has an account, a reset email is on its way."},
	})
}

// ConfirmPasswordReset completes a password reset
func (h *AuthHandlers) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "Password updated. You can sign in now."},
	})
}

// Invite mails a signup invitation. Only the admin family may invite; the
// invitation token travels by email, never in the response.
func (h *AuthHandlers) Invite(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "unauthenticated"})
		return
	}
	if !domain.IsAdminRole(claims.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied", "code": "forbidden"})
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	inv, err := h.authSvc.Invite(c.Request.Context(), req.Email, req.Role, req.OrganisationID, clientContext(c))
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"email":      inv.Email,
			"role":       inv.Role,
			"expires_at": inv.ExpiresAt,
		},
	})
}

// Me returns the current caller identity (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "unauthenticated"})
		return
	}

	acc, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile", "code": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":              acc.ID,
			"email":           acc.Email,
			"role":            acc.Role,
			"organisation_id": acc.OrganisationID,
			"two_fa_enabled":  acc.TwoFAEnabled,
			"is_active":       acc.IsActive,
			"created_at":      acc.CreatedAt,
		},
	})
}

// Logout clears the caller's session cookies. Tokens issued to other devices
// stay valid until they expire.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if claims, ok := middleware.CurrentClaims(c); ok {
		_ = h.authSvc.Logout(c.Request.Context(), claims.UserID, clientContext(c))
	}
	h.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "Logged out successfully"},
	})
}

// respondSession establishes the session in the caller's transport: cookies
// for browsers, tokens in the body for clients that declared themselves
// non-browser.
func (h *AuthHandlers) respondSession(c *gin.Context, result *domain.AuthResult) {
	if c.GetHeader(clientTypeHeader) != "" {
		body := gin.H{
			"access_token":  result.Tokens.AccessToken,
			"refresh_token": result.Tokens.RefreshToken,
			"token_type":    "Bearer",
			"expires_in":    result.Tokens.ExpiresIn,
		}
		if result.Marker != "" {
			body["two_fa_marker"] = result.Marker
		}
		c.JSON(http.StatusOK, gin.H{"data": body})
		return
	}

	h.sessions.Establish(c, result)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user": gin.H{
				"id":    result.Account.ID,
				"email": result.Account.Email,
				"role":  result.Account.Role,
			},
			"expires_in": result.Tokens.ExpiresIn,
		},
	})
}

// respondAuthError maps the error taxonomy to a stable generic message plus
// machine-readable code. Lockouts carry retry_after; credential failures
// carry the decrementing attempts-remaining count.
func respondAuthError(c *gin.Context, err error) {
	var lockErr *domain.LockedError
	if errors.As(err, &lockErr) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many failed attempts",
			"code":        domain.ReasonCode(err),
			"retry_after": int(lockErr.RetryAfter(time.Now()).Seconds()),
		})
		return
	}

	var cdErr *domain.CooldownError
	if errors.As(err, &cdErr) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "please wait before requesting another code",
			"code":        domain.ReasonCode(err),
			"retry_after": int(cdErr.RetryAfter.Seconds()),
		})
		return
	}

	var credErr *domain.CredentialsError
	if errors.As(err, &credErr) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":              "invalid credentials",
			"code":               domain.ReasonCode(err),
			"attempts_remaining": credErr.AttemptsRemaining,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials", "code": domain.ReasonCode(err)})
	case errors.Is(err, domain.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "account is inactive", "code": domain.ReasonCode(err)})
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token", "code": domain.ReasonCode(err)})
	case errors.Is(err, domain.ErrTwoFactorCodeExpired),
		errors.Is(err, domain.ErrTwoFactorCodeInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired code", "code": domain.ReasonCode(err)})
	case errors.Is(err, domain.ErrResendLimit), errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests", "code": domain.ReasonCode(err)})
	case errors.Is(err, domain.ErrResetTokenInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired reset token", "code": domain.ReasonCode(err)})
	case errors.Is(err, domain.ErrInvitationInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired invitation", "code": domain.ReasonCode(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed", "code": "internal"})
	}
}

func clientContext(c *gin.Context) *domain.ClientContext {
	return &domain.ClientContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
