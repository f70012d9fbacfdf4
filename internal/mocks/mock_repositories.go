package mocks

import (
	"context"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// MockAccountRepository implements domain.AccountRepository for testing
type MockAccountRepository struct {
	CreateFunc         func(ctx context.Context, acc *domain.Account) error
	FindByEmailFunc    func(ctx context.Context, email string) (*domain.Account, error)
	FindByIDFunc       func(ctx context.Context, id uint) (*domain.Account, error)
	UpdateFunc         func(ctx context.Context, acc *domain.Account) error
	UpdatePasswordFunc func(ctx context.Context, userID uint, passwordHash string) error
}

var _ domain.AccountRepository = (*MockAccountRepository)(nil)

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, acc)
	}
	return nil
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Update(ctx context.Context, acc *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, acc)
	}
	return nil
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, passwordHash)
	}
	return nil
}

// MockTwoFactorCodeRepository implements domain.TwoFactorCodeRepository for testing
type MockTwoFactorCodeRepository struct {
	InsertFunc           func(ctx context.Context, code *domain.TwoFactorCode) error
	FindByIDFunc         func(ctx context.Context, id string) (*domain.TwoFactorCode, error)
	FindActiveByCodeFunc func(ctx context.Context, code string) (*domain.TwoFactorCode, error)
	ActiveCodeExistsFunc func(ctx context.Context, code string) (bool, error)
	MarkUsedFunc         func(ctx context.Context, id string) error
	SupersedeActiveFunc  func(ctx context.Context, userID uint) error
	IncrementResendFunc  func(ctx context.Context, id string) error
}

var _ domain.TwoFactorCodeRepository = (*MockTwoFactorCodeRepository)(nil)

// NewMockTwoFactorCodeRepository creates a new MockTwoFactorCodeRepository
func NewMockTwoFactorCodeRepository() *MockTwoFactorCodeRepository {
	return &MockTwoFactorCodeRepository{}
}

func (m *MockTwoFactorCodeRepository) Insert(ctx context.Context, code *domain.TwoFactorCode) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, code)
	}
	return nil
}

func (m *MockTwoFactorCodeRepository) FindByID(ctx context.Context, id string) (*domain.TwoFactorCode, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrTwoFactorCodeInvalid
}

func (m *MockTwoFactorCodeRepository) FindActiveByCode(ctx context.Context, code string) (*domain.TwoFactorCode, error) {
	if m.FindActiveByCodeFunc != nil {
		return m.FindActiveByCodeFunc(ctx, code)
	}
	return nil, domain.ErrTwoFactorCodeInvalid
}

func (m *MockTwoFactorCodeRepository) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	if m.ActiveCodeExistsFunc != nil {
		return m.ActiveCodeExistsFunc(ctx, code)
	}
	return false, nil
}

func (m *MockTwoFactorCodeRepository) MarkUsed(ctx context.Context, id string) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, id)
	}
	return nil
}

func (m *MockTwoFactorCodeRepository) SupersedeActive(ctx context.Context, userID uint) error {
	if m.SupersedeActiveFunc != nil {
		return m.SupersedeActiveFunc(ctx, userID)
	}
	return nil
}

func (m *MockTwoFactorCodeRepository) IncrementResend(ctx context.Context, id string) error {
	if m.IncrementResendFunc != nil {
		return m.IncrementResendFunc(ctx, id)
	}
	return nil
}

// MockPasswordResetTokenRepository implements domain.PasswordResetTokenRepository for testing
type MockPasswordResetTokenRepository struct {
	CreateFunc            func(ctx context.Context, token *domain.PasswordResetToken) error
	FindLiveFunc          func(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	MarkUsedFunc          func(ctx context.Context, token string) error
	InvalidateForUserFunc func(ctx context.Context, userID uint) error
}

var _ domain.PasswordResetTokenRepository = (*MockPasswordResetTokenRepository)(nil)

// NewMockPasswordResetTokenRepository creates a new MockPasswordResetTokenRepository
func NewMockPasswordResetTokenRepository() *MockPasswordResetTokenRepository {
	return &MockPasswordResetTokenRepository{}
}

func (m *MockPasswordResetTokenRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	return nil
}

func (m *MockPasswordResetTokenRepository) FindLive(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	if m.FindLiveFunc != nil {
		return m.FindLiveFunc(ctx, token)
	}
	return nil, domain.ErrResetTokenInvalid
}

func (m *MockPasswordResetTokenRepository) MarkUsed(ctx context.Context, token string) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, token)
	}
	return nil
}

func (m *MockPasswordResetTokenRepository) InvalidateForUser(ctx context.Context, userID uint) error {
	if m.InvalidateForUserFunc != nil {
		return m.InvalidateForUserFunc(ctx, userID)
	}
	return nil
}

// MockInvitationRepository implements domain.InvitationRepository for testing
type MockInvitationRepository struct {
	CreateFunc       func(ctx context.Context, inv *domain.Invitation) error
	FindLiveFunc     func(ctx context.Context, token string) (*domain.Invitation, error)
	MarkAcceptedFunc func(ctx context.Context, token string) error
}

var _ domain.InvitationRepository = (*MockInvitationRepository)(nil)

// NewMockInvitationRepository creates a new MockInvitationRepository
func NewMockInvitationRepository() *MockInvitationRepository {
	return &MockInvitationRepository{}
}

func (m *MockInvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, inv)
	}
	return nil
}

func (m *MockInvitationRepository) FindLive(ctx context.Context, token string) (*domain.Invitation, error) {
	if m.FindLiveFunc != nil {
		return m.FindLiveFunc(ctx, token)
	}
	return nil, domain.ErrInvitationInvalid
}

func (m *MockInvitationRepository) MarkAccepted(ctx context.Context, token string) error {
	if m.MarkAcceptedFunc != nil {
		return m.MarkAcceptedFunc(ctx, token)
	}
	return nil
}

// MockLoginAttemptRepository implements domain.LoginAttemptRepository for testing
type MockLoginAttemptRepository struct {
	AppendFunc func(ctx context.Context, attempt *domain.LoginAttempt) error
}

var _ domain.LoginAttemptRepository = (*MockLoginAttemptRepository)(nil)

// NewMockLoginAttemptRepository creates a new MockLoginAttemptRepository
func NewMockLoginAttemptRepository() *MockLoginAttemptRepository {
	return &MockLoginAttemptRepository{}
}

func (m *MockLoginAttemptRepository) Append(ctx context.Context, attempt *domain.LoginAttempt) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, attempt)
	}
	return nil
}
