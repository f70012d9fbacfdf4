package mocks

import (
	"context"
	"time"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// MockPasswordService implements domain.PasswordService for testing
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

var _ domain.PasswordService = (*MockPasswordService)(nil)

// NewMockPasswordService creates a new MockPasswordService
func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return hashedPassword == "hashed_"+password
}

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	IssueFunc         func(claims domain.Claims) (*domain.TokenPair, error)
	VerifyAccessFunc  func(token string) (*domain.Claims, error)
	VerifyRefreshFunc func(token string) (*domain.Claims, error)
	IssueMarkerFunc   func(userID uint) (string, error)
	VerifyMarkerFunc  func(token string) (uint, error)
	AccessTTLValue    time.Duration
	RefreshTTLValue   time.Duration
}

var _ domain.TokenService = (*MockTokenService)(nil)

// NewMockTokenService creates a new MockTokenService with sane TTLs
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{
		AccessTTLValue:  15 * time.Minute,
		RefreshTTLValue: 7 * 24 * time.Hour,
	}
}

func (m *MockTokenService) Issue(claims domain.Claims) (*domain.TokenPair, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(claims)
	}
	return &domain.TokenPair{
		AccessToken:  "mock_access_token",
		RefreshToken: "mock_refresh_token",
		ExpiresIn:    int64(m.AccessTTLValue.Seconds()),
	}, nil
}

func (m *MockTokenService) VerifyAccess(token string) (*domain.Claims, error) {
	if m.VerifyAccessFunc != nil {
		return m.VerifyAccessFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) VerifyRefresh(token string) (*domain.Claims, error) {
	if m.VerifyRefreshFunc != nil {
		return m.VerifyRefreshFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) IssueMarker(userID uint) (string, error) {
	if m.IssueMarkerFunc != nil {
		return m.IssueMarkerFunc(userID)
	}
	return "mock_marker", nil
}

func (m *MockTokenService) VerifyMarker(token string) (uint, error) {
	if m.VerifyMarkerFunc != nil {
		return m.VerifyMarkerFunc(token)
	}
	return 0, domain.ErrTokenInvalid
}

func (m *MockTokenService) AccessTTL() time.Duration  { return m.AccessTTLValue }
func (m *MockTokenService) RefreshTTL() time.Duration { return m.RefreshTTLValue }

// MockNotificationService implements domain.NotificationService for testing
type MockNotificationService struct {
	SendFunc    func(ctx context.Context, template, recipient string, vars map[string]string) error
	SendSMSFunc func(to, message string) error

	SentEmails []SentEmail
	SentSMS    []string
}

// SentEmail records one dispatched email for assertions
type SentEmail struct {
	Template  string
	Recipient string
	Vars      map[string]string
}

var _ domain.NotificationService = (*MockNotificationService)(nil)

// NewMockNotificationService creates a new MockNotificationService
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) Send(ctx context.Context, template, recipient string, vars map[string]string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, template, recipient, vars)
	}
	m.SentEmails = append(m.SentEmails, SentEmail{Template: template, Recipient: recipient, Vars: vars})
	return nil
}

func (m *MockNotificationService) SendSMS(to, message string) error {
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(to, message)
	}
	m.SentSMS = append(m.SentSMS, to)
	return nil
}

// MockAttemptThrottle implements domain.AttemptThrottle for testing
type MockAttemptThrottle struct {
	RecordFailureFunc func(ctx context.Context, key string) (*domain.ThrottleResult, error)
	CheckLockedFunc   func(ctx context.Context, key string) (*domain.ThrottleResult, error)
	ClearFunc         func(ctx context.Context, key string) error
	CloseFunc         func() error

	ClearedKeys []string
}

var _ domain.AttemptThrottle = (*MockAttemptThrottle)(nil)

// NewMockAttemptThrottle creates a MockAttemptThrottle that never locks
func NewMockAttemptThrottle() *MockAttemptThrottle {
	return &MockAttemptThrottle{}
}

func (m *MockAttemptThrottle) RecordFailure(ctx context.Context, key string) (*domain.ThrottleResult, error) {
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(ctx, key)
	}
	return &domain.ThrottleResult{Remaining: 4}, nil
}

func (m *MockAttemptThrottle) CheckLocked(ctx context.Context, key string) (*domain.ThrottleResult, error) {
	if m.CheckLockedFunc != nil {
		return m.CheckLockedFunc(ctx, key)
	}
	return &domain.ThrottleResult{Remaining: 5}, nil
}

func (m *MockAttemptThrottle) Clear(ctx context.Context, key string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, key)
	}
	m.ClearedKeys = append(m.ClearedKeys, key)
	return nil
}

func (m *MockAttemptThrottle) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockChallengeService implements domain.ChallengeService for testing
type MockChallengeService struct {
	IssueFunc  func(ctx context.Context, acc *domain.Account) (*domain.TwoFactorCode, error)
	VerifyFunc func(ctx context.Context, code string) (uint, error)
	ResendFunc func(ctx context.Context, challengeID string) (*domain.TwoFactorCode, error)
}

var _ domain.ChallengeService = (*MockChallengeService)(nil)

// NewMockChallengeService creates a new MockChallengeService
func NewMockChallengeService() *MockChallengeService {
	return &MockChallengeService{}
}

func (m *MockChallengeService) Issue(ctx context.Context, acc *domain.Account) (*domain.TwoFactorCode, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, acc)
	}
	return &domain.TwoFactorCode{
		ID:        "mock-challenge-id",
		UserID:    acc.ID,
		Code:      "123456",
		Status:    domain.CodeStatusActive,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil
}

func (m *MockChallengeService) Verify(ctx context.Context, code string) (uint, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, code)
	}
	return 0, domain.ErrTwoFactorCodeInvalid
}

func (m *MockChallengeService) Resend(ctx context.Context, challengeID string) (*domain.TwoFactorCode, error) {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, challengeID)
	}
	return nil, domain.ErrTwoFactorCodeInvalid
}

// MockAuthService implements domain.AuthService for testing
type MockAuthService struct {
	LoginFunc                func(ctx context.Context, email, password string, cc *domain.ClientContext) (*domain.AuthResult, error)
	CompleteTwoFactorFunc    func(ctx context.Context, email, code string, cc *domain.ClientContext) (*domain.AuthResult, error)
	RefreshFunc              func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	SignupFunc               func(ctx context.Context, inviteToken, password string, cc *domain.ClientContext) (*domain.Account, error)
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, token, newPassword string) error
	InviteFunc               func(ctx context.Context, email, role string, organisationID *uint, cc *domain.ClientContext) (*domain.Invitation, error)
	ProfileFunc              func(ctx context.Context, userID uint) (*domain.Account, error)
	LogoutFunc               func(ctx context.Context, userID uint, cc *domain.ClientContext) error
}

var _ domain.AuthService = (*MockAuthService)(nil)

// NewMockAuthService creates a new MockAuthService
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, cc *domain.ClientContext) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, cc)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) CompleteTwoFactor(ctx context.Context, email, code string, cc *domain.ClientContext) (*domain.AuthResult, error) {
	if m.CompleteTwoFactorFunc != nil {
		return m.CompleteTwoFactorFunc(ctx, email, code, cc)
	}
	return nil, domain.ErrTwoFactorCodeInvalid
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockAuthService) Signup(ctx context.Context, inviteToken, password string, cc *domain.ClientContext) (*domain.Account, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, inviteToken, password, cc)
	}
	return nil, domain.ErrInvitationInvalid
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

func (m *MockAuthService) Invite(ctx context.Context, email, role string, organisationID *uint, cc *domain.ClientContext) (*domain.Invitation, error) {
	if m.InviteFunc != nil {
		return m.InviteFunc(ctx, email, role, organisationID, cc)
	}
	return &domain.Invitation{
		Token:          "mock_invitation_token",
		Email:          email,
		Role:           role,
		OrganisationID: organisationID,
		ExpiresAt:      time.Now().Add(7 * 24 * time.Hour),
	}, nil
}

func (m *MockAuthService) Profile(ctx context.Context, userID uint) (*domain.Account, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAuthService) Logout(ctx context.Context, userID uint, cc *domain.ClientContext) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID, cc)
	}
	return nil
}
