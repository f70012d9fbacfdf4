package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jainabhi1607/loanease-sub003/domain"
	"github.com/jainabhi1607/loanease-sub003/internal/infrastructure/notifications"
)

// How many draws issuance makes before giving up on finding a code value
// that does not collide with another currently-active code.
const maxCodeDraws = 5

// ChallengeConfig tunes the two-factor code state machine.
type ChallengeConfig struct {
	Length         int
	TTL            time.Duration
	HourlyCap      int
	ResendCooldown time.Duration
	MaxResends     int
}

// ChallengeServiceImpl implements domain.ChallengeService. Codes live in the
// record store; the hourly issuance cap and the resend cooldown are Redis
// counters so they hold across instances.
type ChallengeServiceImpl struct {
	codeRepo        domain.TwoFactorCodeRepository
	accountRepo     domain.AccountRepository
	notificationSvc domain.NotificationService
	redisClient     redis.UniversalClient
	audit           domain.AuditLogger
	config          ChallengeConfig
	logger          zerolog.Logger
}

// NewChallengeService creates a new two-factor challenge service
func NewChallengeService(
	codeRepo domain.TwoFactorCodeRepository,
	accountRepo domain.AccountRepository,
	notificationSvc domain.NotificationService,
	redisClient redis.UniversalClient,
	audit domain.AuditLogger,
	config ChallengeConfig,
	logger zerolog.Logger,
) domain.ChallengeService {
	return &ChallengeServiceImpl{
		codeRepo:        codeRepo,
		accountRepo:     accountRepo,
		notificationSvc: notificationSvc,
		redisClient:     redisClient,
		audit:           audit,
		config:          config,
		logger:          logger,
	}
}

func capKey(userID uint) string      { return "challenge:cap:" + strconv.FormatUint(uint64(userID), 10) }
func cooldownKey(userID uint) string { return "challenge:cd:" + strconv.FormatUint(uint64(userID), 10) }

// Issue implements domain.ChallengeService. All prior active codes for the
// user are superseded before the new one becomes active, so exactly one code
// can verify at any moment.
func (s *ChallengeServiceImpl) Issue(ctx context.Context, acc *domain.Account) (*domain.TwoFactorCode, error) {
	return s.issue(ctx, acc, 0)
}

// Resend implements domain.ChallengeService. Two-tier limiting: a cooldown
// since the previous issuance and a per-challenge resend budget, both on top
// of the hourly cap.
func (s *ChallengeServiceImpl) Resend(ctx context.Context, challengeID string) (*domain.TwoFactorCode, error) {
	prior, err := s.codeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if prior.ResendCount >= s.config.MaxResends {
		return nil, domain.ErrResendLimit
	}

	ttl, err := s.redisClient.TTL(ctx, cooldownKey(prior.UserID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check resend cooldown: %w", err)
	}
	if ttl > 0 {
		return nil, &domain.CooldownError{RetryAfter: ttl}
	}

	acc, err := s.accountRepo.FindByID(ctx, prior.UserID)
	if err != nil {
		return nil, err
	}

	// The budget is charged to the row the caller named, so replaying an
	// old challenge id spends it down instead of resetting it.
	if err := s.codeRepo.IncrementResend(ctx, prior.ID); err != nil {
		return nil, fmt.Errorf("failed to charge resend budget: %w", err)
	}

	fresh, err := s.issue(ctx, acc, prior.ResendCount+1)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TwoFactorResendEvent, acc.ID).WithEmail(acc.Email))

	return fresh, nil
}

// Verify implements domain.ChallengeService. Lookup is by code value; a code
// verifies at most once and verification retires every other outstanding code
// for the user.
func (s *ChallengeServiceImpl) Verify(ctx context.Context, code string) (uint, error) {
	stored, err := s.codeRepo.FindActiveByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	if stored.Expired(time.Now()) {
		return 0, domain.ErrTwoFactorCodeExpired
	}

	if err := s.codeRepo.MarkUsed(ctx, stored.ID); err != nil {
		return 0, fmt.Errorf("failed to consume code: %w", err)
	}
	if err := s.codeRepo.SupersedeActive(ctx, stored.UserID); err != nil {
		return 0, fmt.Errorf("failed to retire outstanding codes: %w", err)
	}

	s.redisClient.Del(ctx, cooldownKey(stored.UserID))

	return stored.UserID, nil
}

func (s *ChallengeServiceImpl) issue(ctx context.Context, acc *domain.Account, resendCount int) (*domain.TwoFactorCode, error) {
	if err := s.checkHourlyCap(ctx, acc.ID); err != nil {
		return nil, err
	}

	// Invalidate priors before the new code exists: ordering matters so a
	// stale earlier code can never outlive a fresh request.
	if err := s.codeRepo.SupersedeActive(ctx, acc.ID); err != nil {
		return nil, fmt.Errorf("failed to supersede prior codes: %w", err)
	}

	code, err := s.drawUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	challenge := &domain.TwoFactorCode{
		ID:          uuid.NewString(),
		UserID:      acc.ID,
		Code:        code,
		Status:      domain.CodeStatusActive,
		ResendCount: resendCount,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.config.TTL),
	}
	if err := s.codeRepo.Insert(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.redisClient.Set(ctx, cooldownKey(acc.ID), 1, s.config.ResendCooldown).Err(); err != nil {
		return nil, fmt.Errorf("failed to set resend cooldown: %w", err)
	}

	if err := s.dispatch(ctx, acc, challenge); err != nil {
		// The user cannot proceed without the code, so dispatch failure
		// surfaces. Retire the stored code first.
		if serr := s.codeRepo.SupersedeActive(ctx, acc.ID); serr != nil {
			s.logger.Error().Err(serr).Uint("user_id", acc.ID).Msg("failed to retire undelivered code")
		}
		return nil, fmt.Errorf("failed to dispatch code: %w", err)
	}

	return challenge, nil
}

func (s *ChallengeServiceImpl) dispatch(ctx context.Context, acc *domain.Account, challenge *domain.TwoFactorCode) error {
	if err := s.notificationSvc.Send(ctx, notifications.TemplateTwoFactorCode, acc.Email, map[string]string{
		"code":    challenge.Code,
		"minutes": strconv.Itoa(int(s.config.TTL.Minutes())),
	}); err != nil {
		return err
	}

	// SMS is a secondary channel; its failure is logged, not surfaced.
	if acc.Phone != "" {
		message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", challenge.Code, int(s.config.TTL.Minutes()))
		if err := s.notificationSvc.SendSMS(acc.Phone, message); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", acc.ID).Msg("sms dispatch failed")
		}
	}

	return nil
}

func (s *ChallengeServiceImpl) checkHourlyCap(ctx context.Context, userID uint) error {
	count, err := s.redisClient.Incr(ctx, capKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to count issuances: %w", err)
	}
	if count == 1 {
		if err := s.redisClient.Expire(ctx, capKey(userID), time.Hour).Err(); err != nil {
			return fmt.Errorf("failed to window issuance counter: %w", err)
		}
	}
	if count > int64(s.config.HourlyCap) {
		return domain.ErrRateLimited
	}
	return nil
}

// drawUniqueCode generates a numeric code that does not collide with any
// currently-active code. A 6-digit space is small enough that collisions are
// a real possibility under load.
func (s *ChallengeServiceImpl) drawUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeDraws; i++ {
		code, err := s.generateSecureCode()
		if err != nil {
			return "", err
		}
		exists, err := s.codeRepo.ActiveCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not draw a unique code")
}

// generateSecureCode generates a cryptographically secure numeric code
func (s *ChallengeServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}
