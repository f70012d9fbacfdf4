package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jainabhi1607/loanease-sub003/domain"
	"github.com/jainabhi1607/loanease-sub003/internal/infrastructure/notifications"
)

const (
	resetTokenTTL = time.Hour
	inviteTTL     = 7 * 24 * time.Hour
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	accountRepo     domain.AccountRepository
	audit           domain.AuditLogger
	resetRepo       domain.PasswordResetTokenRepository
	inviteRepo      domain.InvitationRepository
	passwordSvc     domain.PasswordService
	tokenSvc        domain.TokenService
	challengeSvc    domain.ChallengeService
	notificationSvc domain.NotificationService
	loginThrottle   domain.AttemptThrottle
	twoFAThrottle   domain.AttemptThrottle
	logger          zerolog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	accountRepo domain.AccountRepository,
	audit domain.AuditLogger,
	resetRepo domain.PasswordResetTokenRepository,
	inviteRepo domain.InvitationRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	challengeSvc domain.ChallengeService,
	notificationSvc domain.NotificationService,
	loginThrottle domain.AttemptThrottle,
	twoFAThrottle domain.AttemptThrottle,
	logger zerolog.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		accountRepo:     accountRepo,
		audit:           audit,
		resetRepo:       resetRepo,
		inviteRepo:      inviteRepo,
		passwordSvc:     passwordSvc,
		tokenSvc:        tokenSvc,
		challengeSvc:    challengeSvc,
		notificationSvc: notificationSvc,
		loginThrottle:   loginThrottle,
		twoFAThrottle:   twoFAThrottle,
		logger:          logger,
	}
}

// Login implements domain.AuthService
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string, cc *domain.ClientContext) (*domain.AuthResult, error) {
	key := domain.ThrottleKey(email, origin(cc))

	// A locked-out caller is refused before the password comparison path
	// runs at all.
	if res, err := s.loginThrottle.CheckLocked(ctx, key); err != nil {
		return nil, fmt.Errorf("throttle check failed: %w", err)
	} else if res.Locked {
		lockErr := &domain.LockedError{Until: res.LockedUntil}
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.LoginLockoutEvent, 0).WithEmail(email).WithClientContext(cc).WithError(lockErr))
		return nil, lockErr
	}

	acc, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Unknown accounts burn an attempt too, and surface
			// exactly like a wrong password.
			return nil, s.failLogin(ctx, key, email, 0, cc)
		}
		return nil, err
	}

	if !s.passwordSvc.Verify(acc.PasswordHash, password) {
		return nil, s.failLogin(ctx, key, email, acc.ID, cc)
	}

	// The inactive flag surfaces only after the password verified, so a
	// caller probing with bad credentials cannot tell a disabled account
	// from a nonexistent one.
	if !acc.IsActive {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.LoginFailureEvent, acc.ID).WithEmail(email).WithClientContext(cc).WithError(domain.ErrAccountInactive))
		return nil, domain.ErrAccountInactive
	}

	if err := s.loginThrottle.Clear(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to clear login throttle")
	}

	claims := domain.ClaimsFromAccount(acc)

	if acc.TwoFAEnabled {
		challenge, err := s.challengeSvc.Issue(ctx, acc)
		if err != nil {
			return nil, err
		}
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TwoFactorIssuedEvent, acc.ID).WithEmail(email).WithClientContext(cc))
		return &domain.AuthResult{
			Account:       acc,
			Claims:        claims,
			TwoFARequired: true,
			ChallengeID:   challenge.ID,
		}, nil
	}

	tokens, err := s.tokenSvc.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.LoginEvent, acc.ID).WithEmail(email).WithClientContext(cc))

	return &domain.AuthResult{
		Account: acc,
		Claims:  claims,
		Tokens:  tokens,
	}, nil
}

// CompleteTwoFactor implements domain.AuthService
func (s *AuthServiceImpl) CompleteTwoFactor(ctx context.Context, email, code string, cc *domain.ClientContext) (*domain.AuthResult, error) {
	key := domain.ThrottleKey(email, origin(cc))

	if res, err := s.twoFAThrottle.CheckLocked(ctx, key); err != nil {
		return nil, fmt.Errorf("throttle check failed: %w", err)
	} else if res.Locked {
		return nil, &domain.LockedError{Until: res.LockedUntil}
	}

	acc, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, s.failTwoFactor(ctx, key, email, 0, cc, domain.ErrTwoFactorCodeInvalid)
		}
		return nil, err
	}

	userID, err := s.challengeSvc.Verify(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrTwoFactorCodeInvalid) || errors.Is(err, domain.ErrTwoFactorCodeExpired) {
			return nil, s.failTwoFactor(ctx, key, email, acc.ID, cc, err)
		}
		return nil, err
	}

	// The code must belong to the identity being verified, or an attacker
	// holding any valid code could complete any pending login.
	if userID != acc.ID {
		return nil, s.failTwoFactor(ctx, key, email, acc.ID, cc, domain.ErrTwoFactorCodeInvalid)
	}

	if err := s.twoFAThrottle.Clear(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to clear two-factor throttle")
	}

	claims := domain.ClaimsFromAccount(acc)
	tokens, err := s.tokenSvc.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	marker, err := s.tokenSvc.IssueMarker(acc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue marker: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TwoFactorVerifyEvent, acc.ID).WithEmail(email).WithClientContext(cc))

	return &domain.AuthResult{
		Account: acc,
		Claims:  claims,
		Tokens:  tokens,
		Marker:  marker,
	}, nil
}

// Refresh implements domain.AuthService. Claims are re-derived from the
// account record, never copied from the old token, so role or 2FA changes
// take effect at the next refresh.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	acc, err := s.accountRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if !acc.IsActive {
		return nil, domain.ErrAccountInactive
	}

	fresh := domain.ClaimsFromAccount(acc)
	tokens, err := s.tokenSvc.Issue(fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SessionRefreshEvent, acc.ID).WithEmail(acc.Email))

	return &domain.AuthResult{
		Account: acc,
		Claims:  fresh,
		Tokens:  tokens,
	}, nil
}

// Signup implements domain.AuthService. Accounts are created only through a
// live invitation, which fixes the role and organisation.
func (s *AuthServiceImpl) Signup(ctx context.Context, inviteToken, password string, cc *domain.ClientContext) (*domain.Account, error) {
	inv, err := s.inviteRepo.FindLive(ctx, inviteToken)
	if err != nil {
		return nil, err
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := &domain.Account{
		Email:          inv.Email,
		PasswordHash:   hashed,
		Role:           inv.Role,
		OrganisationID: inv.OrganisationID,
		IsActive:       true,
	}
	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.inviteRepo.MarkAccepted(ctx, inviteToken); err != nil {
		return nil, fmt.Errorf("failed to consume invitation: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SignupEvent, acc.ID).WithEmail(acc.Email).WithClientContext(cc))

	return acc, nil
}

// Invite implements domain.AuthService. The invitation fixes the role and
// organisation the eventual signup gets, and the token reaches the invitee
// only by email.
func (s *AuthServiceImpl) Invite(ctx context.Context, email, role string, organisationID *uint, cc *domain.ClientContext) (*domain.Invitation, error) {
	if !domain.IsAdminRole(role) && !domain.IsReferrerRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvitationInvalid, role)
	}

	now := time.Now()
	inv := &domain.Invitation{
		Token:          randomToken(),
		Email:          email,
		Role:           role,
		OrganisationID: organisationID,
		ExpiresAt:      now.Add(inviteTTL),
		CreatedAt:      now,
	}
	if err := s.inviteRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to store invitation: %w", err)
	}

	if err := s.notificationSvc.Send(ctx, notifications.TemplateInvitation, email, map[string]string{
		"token": inv.Token,
		"role":  role,
	}); err != nil {
		return nil, fmt.Errorf("failed to dispatch invitation: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.InvitationSentEvent, 0).WithEmail(email).WithClientContext(cc))

	return inv, nil
}

// RequestPasswordReset implements domain.AuthService. The response is
// identical whether or not an account exists, to prevent enumeration.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	if err := s.resetRepo.InvalidateForUser(ctx, acc.ID); err != nil {
		return fmt.Errorf("failed to invalidate prior reset tokens: %w", err)
	}

	token := &domain.PasswordResetToken{
		Token:     randomToken(),
		UserID:    acc.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.notificationSvc.Send(ctx, notifications.TemplatePasswordReset, acc.Email, map[string]string{
		"token": token.Token,
	}); err != nil {
		return fmt.Errorf("failed to dispatch reset email: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PasswordResetReqEvent, acc.ID).WithEmail(email))

	return nil
}

// ResetPassword implements domain.AuthService
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.resetRepo.FindLive(ctx, token)
	if err != nil {
		return err
	}

	hashed, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, reset.UserID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.resetRepo.MarkUsed(ctx, token); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PasswordResetDoneEvent, reset.UserID))

	return nil
}

// Profile implements domain.AuthService
func (s *AuthServiceImpl) Profile(ctx context.Context, userID uint) (*domain.Account, error) {
	return s.accountRepo.FindByID(ctx, userID)
}

// Logout implements domain.AuthService. Clearing the transport (cookies or
// stored tokens) is the caller's job; here the sign-out only enters the audit
// trail. Tokens issued to other devices stay valid until they expire.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID uint, cc *domain.ClientContext) error {
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.LogoutEvent, userID).WithClientContext(cc))
	return nil
}

func (s *AuthServiceImpl) failLogin(ctx context.Context, key, email string, userID uint, cc *domain.ClientContext) error {
	res, terr := s.loginThrottle.RecordFailure(ctx, key)
	if terr != nil {
		return fmt.Errorf("throttle record failed: %w", terr)
	}

	var out error
	if res.Locked {
		out = &domain.LockedError{Until: res.LockedUntil}
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.LoginLockoutEvent, userID).WithEmail(email).WithClientContext(cc).WithError(out))
	} else {
		out = &domain.CredentialsError{AttemptsRemaining: res.Remaining}
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.LoginFailureEvent, userID).WithEmail(email).WithClientContext(cc).WithError(out))
	}
	return out
}

func (s *AuthServiceImpl) failTwoFactor(ctx context.Context, key, email string, userID uint, cc *domain.ClientContext, cause error) error {
	res, terr := s.twoFAThrottle.RecordFailure(ctx, key)
	if terr != nil {
		return fmt.Errorf("throttle record failed: %w", terr)
	}

	out := cause
	if res.Locked {
		out = fmt.Errorf("%w: %w", domain.ErrTwoFactorMaxAttempts, &domain.LockedError{Until: res.LockedUntil})
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TwoFactorFailureEvent, userID).WithEmail(email).WithClientContext(cc).WithError(out))
	return out
}

func origin(cc *domain.ClientContext) string {
	if cc == nil {
		return ""
	}
	return cc.IPAddress
}

func randomToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
