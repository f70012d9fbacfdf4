package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jainabhi1607/loanease-sub003/domain"
	"github.com/jainabhi1607/loanease-sub003/internal/mocks"
)

// authServiceDeps bundles the mock graph behind an AuthService under test so
// individual cases override only what they care about.
type authServiceDeps struct {
	AccountRepo     *mocks.MockAccountRepository
	AttemptRepo     *mocks.MockLoginAttemptRepository
	ResetRepo       *mocks.MockPasswordResetTokenRepository
	InviteRepo      *mocks.MockInvitationRepository
	PasswordSvc     *mocks.MockPasswordService
	TokenSvc        *mocks.MockTokenService
	ChallengeSvc    *mocks.MockChallengeService
	NotificationSvc *mocks.MockNotificationService
	LoginThrottle   *mocks.MockAttemptThrottle
	TwoFAThrottle   *mocks.MockAttemptThrottle
}

func newAuthServiceDeps(t *testing.T) *authServiceDeps {
	t.Helper()
	return &authServiceDeps{
		AccountRepo:     mocks.NewMockAccountRepository(),
		AttemptRepo:     mocks.NewMockLoginAttemptRepository(),
		ResetRepo:       mocks.NewMockPasswordResetTokenRepository(),
		InviteRepo:      mocks.NewMockInvitationRepository(),
		PasswordSvc:     mocks.NewMockPasswordService(),
		TokenSvc:        mocks.NewMockTokenService(),
		ChallengeSvc:    mocks.NewMockChallengeService(),
		NotificationSvc: mocks.NewMockNotificationService(),
		LoginThrottle:   mocks.NewMockAttemptThrottle(),
		TwoFAThrottle:   mocks.NewMockAttemptThrottle(),
	}
}

func (d *authServiceDeps) build() domain.AuthService {
	return NewAuthService(
		d.AccountRepo,
		NewAttemptAuditLogger(d.AttemptRepo, zerolog.Nop()),
		d.ResetRepo,
		d.InviteRepo,
		d.PasswordSvc,
		d.TokenSvc,
		d.ChallengeSvc,
		d.NotificationSvc,
		d.LoginThrottle,
		d.TwoFAThrottle,
		zerolog.Nop(),
	)
}

// createValidAccount returns an active account whose password is
// "correct-password" under the mock password scheme.
func createValidAccount(t *testing.T) *domain.Account {
	t.Helper()
	return &domain.Account{
		ID:           1,
		Email:        "referrer@example.com",
		Phone:        "+61400000001",
		PasswordHash: "hashed_correct-password",
		Role:         domain.RoleReferrer,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// newChallengeServiceForTest wires a challenge service over miniredis with a
// tight but realistic config.
func newChallengeServiceForTest(t *testing.T, codeRepo *mocks.MockTwoFactorCodeRepository, accountRepo *mocks.MockAccountRepository, notificationSvc *mocks.MockNotificationService, attemptRepo *mocks.MockLoginAttemptRepository, cfg ChallengeConfig) (domain.ChallengeService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	if codeRepo == nil {
		codeRepo = mocks.NewMockTwoFactorCodeRepository()
	}
	if accountRepo == nil {
		accountRepo = mocks.NewMockAccountRepository()
	}
	if notificationSvc == nil {
		notificationSvc = mocks.NewMockNotificationService()
	}
	if attemptRepo == nil {
		attemptRepo = mocks.NewMockLoginAttemptRepository()
	}

	audit := NewAttemptAuditLogger(attemptRepo, zerolog.Nop())
	svc := NewChallengeService(codeRepo, accountRepo, notificationSvc, client, audit, cfg, zerolog.Nop())
	return svc, mr
}

func defaultChallengeConfig() ChallengeConfig {
	return ChallengeConfig{
		Length:         6,
		TTL:            10 * time.Minute,
		HourlyCap:      10,
		ResendCooldown: 60 * time.Second,
		MaxResends:     5,
	}
}
