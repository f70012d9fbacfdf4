package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jainabhi1607/loanease-sub003/domain"
	"github.com/jainabhi1607/loanease-sub003/internal/mocks"
)

func TestChallengeServiceImpl_Issue(t *testing.T) {
	codeRepo := mocks.NewMockTwoFactorCodeRepository()
	notificationSvc := mocks.NewMockNotificationService()

	var superseded []uint
	codeRepo.SupersedeActiveFunc = func(ctx context.Context, userID uint) error {
		superseded = append(superseded, userID)
		return nil
	}
	var inserted *domain.TwoFactorCode
	codeRepo.InsertFunc = func(ctx context.Context, code *domain.TwoFactorCode) error {
		inserted = code
		return nil
	}

	svc, _ := newChallengeServiceForTest(t, codeRepo, nil, notificationSvc, nil, defaultChallengeConfig())
	acc := createValidAccount(t)

	challenge, err := svc.Issue(context.Background(), acc)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if len(superseded) != 1 || superseded[0] != acc.ID {
		t.Error("prior active codes should be superseded before issuance")
	}
	if inserted == nil {
		t.Fatal("expected the code to be stored")
	}
	if len(challenge.Code) != 6 {
		t.Errorf("code length = %d, want 6", len(challenge.Code))
	}
	for _, r := range challenge.Code {
		if r < '0' || r > '9' {
			t.Errorf("code %q contains a non-digit", challenge.Code)
			break
		}
	}
	if challenge.Status != domain.CodeStatusActive {
		t.Errorf("status = %q, want active", challenge.Status)
	}
	if got := challenge.ExpiresAt.Sub(challenge.CreatedAt); got != 10*time.Minute {
		t.Errorf("lifetime = %v, want 10m", got)
	}

	if len(notificationSvc.SentEmails) != 1 {
		t.Fatalf("sent %d emails, want 1", len(notificationSvc.SentEmails))
	}
	if notificationSvc.SentEmails[0].Vars["code"] != challenge.Code {
		t.Error("mailed code should match the stored one")
	}
	if len(notificationSvc.SentSMS) != 1 {
		t.Error("an account with a phone should also get the SMS channel")
	}
}

func TestChallengeServiceImpl_Issue_RedrawsOnCollision(t *testing.T) {
	codeRepo := mocks.NewMockTwoFactorCodeRepository()

	calls := 0
	codeRepo.ActiveCodeExistsFunc = func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls == 1, nil
	}

	svc, _ := newChallengeServiceForTest(t, codeRepo, nil, nil, nil, defaultChallengeConfig())

	if _, err := svc.Issue(context.Background(), createValidAccount(t)); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("uniqueness checked %d times, want 2 (one collision, one redraw)", calls)
	}
}

func TestChallengeServiceImpl_Issue_HourlyCap(t *testing.T) {
	cfg := defaultChallengeConfig()
	cfg.HourlyCap = 2
	cfg.ResendCooldown = 0

	svc, mr := newChallengeServiceForTest(t, nil, nil, nil, nil, cfg)
	acc := createValidAccount(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Issue(ctx, acc); err != nil {
			t.Fatalf("issue %d failed: %v", i+1, err)
		}
	}

	if _, err := svc.Issue(ctx, acc); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("third issue within the hour: error = %v, want ErrRateLimited", err)
	}

	// The cap is a rolling hour; once it elapses issuance resumes.
	mr.FastForward(61 * time.Minute)
	if _, err := svc.Issue(ctx, acc); err != nil {
		t.Errorf("issue after the hour elapsed failed: %v", err)
	}
}

func TestChallengeServiceImpl_Issue_DispatchFailureRetiresCode(t *testing.T) {
	codeRepo := mocks.NewMockTwoFactorCodeRepository()
	notificationSvc := mocks.NewMockNotificationService()
	notificationSvc.SendFunc = func(ctx context.Context, template, recipient string, vars map[string]string) error {
		return errors.New("smtp down")
	}

	var supersedes int
	codeRepo.SupersedeActiveFunc = func(ctx context.Context, userID uint) error {
		supersedes++
		return nil
	}

	svc, _ := newChallengeServiceForTest(t, codeRepo, nil, notificationSvc, nil, defaultChallengeConfig())

	if _, err := svc.Issue(context.Background(), createValidAccount(t)); err == nil {
		t.Fatal("dispatch failure must surface")
	}
	// Once before issuance, once to retire the undeliverable code.
	if supersedes != 2 {
		t.Errorf("supersede calls = %d, want 2", supersedes)
	}
}

func TestChallengeServiceImpl_Issue_SMSFailureIsNotFatal(t *testing.T) {
	notificationSvc := mocks.NewMockNotificationService()
	notificationSvc.SendSMSFunc = func(to, message string) error {
		return errors.New("carrier rejected")
	}

	svc, _ := newChallengeServiceForTest(t, nil, nil, notificationSvc, nil, defaultChallengeConfig())

	if _, err := svc.Issue(context.Background(), createValidAccount(t)); err != nil {
		t.Errorf("SMS failure must not surface, got %v", err)
	}
}

func TestChallengeServiceImpl_Verify(t *testing.T) {
	codeRepo := mocks.NewMockTwoFactorCodeRepository()
	active := &domain.TwoFactorCode{
		ID:        "challenge-1",
		UserID:    7,
		Code:      "123456",
		Status:    domain.CodeStatusActive,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	codeRepo.FindActiveByCodeFunc = func(ctx context.Context, code string) (*domain.TwoFactorCode, error) {
		if code == active.Code {
			return active, nil
		}
		return nil, domain.ErrTwoFactorCodeInvalid
	}

	var markedUsed string
	codeRepo.MarkUsedFunc = func(ctx context.Context, id string) error {
		markedUsed = id
		return nil
	}
	var superseded uint
	codeRepo.SupersedeActiveFunc = func(ctx context.Context, userID uint) error {
		superseded = userID
		return nil
	}

	svc, _ := newChallengeServiceForTest(t, codeRepo, nil, nil, nil, defaultChallengeConfig())

	userID, err := svc.Verify(context.Background(), "123456")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want 7", userID)
	}
	if markedUsed != "challenge-1" {
		t.Error("the code should be consumed")
	}
	if superseded != 7 {
		t.Error("outstanding codes for the user should be retired")
	}

	if _, err := svc.Verify(context.Background(), "999999"); !errors.Is(err, domain.ErrTwoFactorCodeInvalid) {
		t.Errorf("unknown code: error = %v, want ErrTwoFactorCodeInvalid", err)
	}
}

func TestChallengeServiceImpl_Verify_ExpiredCode(t *testing.T) {
	codeRepo := mocks.NewMockTwoFactorCodeRepository()
	codeRepo.FindActiveByCodeFunc = func(ctx context.Context, code string) (*domain.TwoFactorCode, error) {
		return &domain.TwoFactorCode{
			ID:        "challenge-1",
			UserID:    7,
			Code:      code,
			Status:    domain.CodeStatusActive,
			ExpiresAt: time.Now().Add(-time.Minute),
		}, nil
	}
	codeRepo.MarkUsedFunc = func(ctx context.Context, id string) error {
		t.Fatal("an expired code must not be consumed")
		return nil
	}

	svc, _ := newChallengeServiceForTest(t, codeRepo, nil, nil, nil, defaultChallengeConfig())

	if _, err := svc.Verify(context.Background(), "123456"); !errors.Is(err, domain.ErrTwoFactorCodeExpired) {
		t.Errorf("error = %v, want ErrTwoFactorCodeExpired", err)
	}
}

func TestChallengeServiceImpl_Resend(t *testing.T) {
	newDeps := func(resendCount int) (*mocks.MockTwoFactorCodeRepository, *mocks.MockAccountRepository) {
		codeRepo := mocks.NewMockTwoFactorCodeRepository()
		codeRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.TwoFactorCode, error) {
			return &domain.TwoFactorCode{
				ID:          id,
				UserID:      1,
				Code:        "111111",
				Status:      domain.CodeStatusActive,
				ResendCount: resendCount,
				ExpiresAt:   time.Now().Add(10 * time.Minute),
			}, nil
		}
		accountRepo := mocks.NewMockAccountRepository()
		accountRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
			return createValidAccount(t), nil
		}
		return codeRepo, accountRepo
	}

	t.Run("resend within cooldown is refused with the precise wait", func(t *testing.T) {
		codeRepo, accountRepo := newDeps(0)
		svc, _ := newChallengeServiceForTest(t, codeRepo, accountRepo, nil, nil, defaultChallengeConfig())
		ctx := context.Background()

		first, err := svc.Issue(ctx, createValidAccount(t))
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		_, err = svc.Resend(ctx, first.ID)
		var cdErr *domain.CooldownError
		if !errors.As(err, &cdErr) {
			t.Fatalf("expected CooldownError, got %v", err)
		}
		if cdErr.RetryAfter <= 0 || cdErr.RetryAfter > 60*time.Second {
			t.Errorf("RetryAfter = %v, want within (0, 60s]", cdErr.RetryAfter)
		}
	})

	t.Run("resend after cooldown issues a fresh code", func(t *testing.T) {
		codeRepo, accountRepo := newDeps(2)

		var inserted *domain.TwoFactorCode
		codeRepo.InsertFunc = func(ctx context.Context, code *domain.TwoFactorCode) error {
			inserted = code
			return nil
		}

		svc, _ := newChallengeServiceForTest(t, codeRepo, accountRepo, nil, nil, defaultChallengeConfig())

		fresh, err := svc.Resend(context.Background(), "challenge-1")
		if err != nil {
			t.Fatalf("Resend failed: %v", err)
		}
		if fresh.ResendCount != 3 {
			t.Errorf("ResendCount = %d, want prior count + 1", fresh.ResendCount)
		}
		if inserted == nil || inserted.ID == "challenge-1" {
			t.Error("resend should mint a new challenge, not reuse the prior id")
		}
	})

	t.Run("resend budget is capped", func(t *testing.T) {
		codeRepo, accountRepo := newDeps(5)
		svc, _ := newChallengeServiceForTest(t, codeRepo, accountRepo, nil, nil, defaultChallengeConfig())

		if _, err := svc.Resend(context.Background(), "challenge-1"); !errors.Is(err, domain.ErrResendLimit) {
			t.Errorf("error = %v, want ErrResendLimit", err)
		}
	})

	t.Run("unknown challenge id", func(t *testing.T) {
		svc, _ := newChallengeServiceForTest(t, nil, nil, nil, nil, defaultChallengeConfig())

		if _, err := svc.Resend(context.Background(), "nope"); !errors.Is(err, domain.ErrTwoFactorCodeInvalid) {
			t.Errorf("error = %v, want ErrTwoFactorCodeInvalid", err)
		}
	})
}

func TestChallengeServiceImpl_VerifyClearsCooldown(t *testing.T) {
	codeRepo := mocks.NewMockTwoFactorCodeRepository()
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
		return createValidAccount(t), nil
	}

	var current *domain.TwoFactorCode
	codeRepo.InsertFunc = func(ctx context.Context, code *domain.TwoFactorCode) error {
		current = code
		return nil
	}
	codeRepo.FindActiveByCodeFunc = func(ctx context.Context, code string) (*domain.TwoFactorCode, error) {
		if current != nil && current.Code == code {
			return current, nil
		}
		return nil, domain.ErrTwoFactorCodeInvalid
	}
	codeRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.TwoFactorCode, error) {
		if current != nil && current.ID == id {
			return current, nil
		}
		return nil, domain.ErrTwoFactorCodeInvalid
	}

	svc, mr := newChallengeServiceForTest(t, codeRepo, accountRepo, nil, nil, defaultChallengeConfig())
	ctx := context.Background()
	acc := createValidAccount(t)

	challenge, err := svc.Issue(ctx, acc)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !mr.Exists(cooldownKey(acc.ID)) {
		t.Fatal("issuance should arm the resend cooldown")
	}

	if _, err := svc.Verify(ctx, challenge.Code); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	// Verification clears the cooldown, so the next login attempt can
	// request a code without waiting.
	if mr.Exists(cooldownKey(acc.ID)) {
		t.Error("verification should clear the resend cooldown")
	}
}

func TestChallengeServiceImpl_ResendChargesNamedRow(t *testing.T) {
	// Rows live in a map so resend bookkeeping mutates real state: the
	// budget must be charged to the row the caller names, not only carried
	// forward on the replacement.
	store := map[string]*domain.TwoFactorCode{}
	codeRepo := mocks.NewMockTwoFactorCodeRepository()
	codeRepo.InsertFunc = func(ctx context.Context, code *domain.TwoFactorCode) error {
		cp := *code
		store[code.ID] = &cp
		return nil
	}
	codeRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.TwoFactorCode, error) {
		row, ok := store[id]
		if !ok {
			return nil, domain.ErrTwoFactorCodeInvalid
		}
		cp := *row
		return &cp, nil
	}
	codeRepo.IncrementResendFunc = func(ctx context.Context, id string) error {
		if row, ok := store[id]; ok {
			row.ResendCount++
		}
		return nil
	}
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
		return createValidAccount(t), nil
	}

	cfg := defaultChallengeConfig()
	cfg.ResendCooldown = 0 // isolate the budget from the cooldown tier
	cfg.HourlyCap = 100

	svc, _ := newChallengeServiceForTest(t, codeRepo, accountRepo, nil, nil, cfg)
	ctx := context.Background()

	first, err := svc.Issue(ctx, createValidAccount(t))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Replaying the original challenge id spends the same budget every
	// time, so it runs out after exactly MaxResends sends.
	for i := 0; i < cfg.MaxResends; i++ {
		if _, err := svc.Resend(ctx, first.ID); err != nil {
			t.Fatalf("Resend %d failed: %v", i+1, err)
		}
	}
	if _, err := svc.Resend(ctx, first.ID); !errors.Is(err, domain.ErrResendLimit) {
		t.Fatalf("error = %v, want ErrResendLimit after %d resends of the same id", err, cfg.MaxResends)
	}
	if got := store[first.ID].ResendCount; got != cfg.MaxResends {
		t.Errorf("original row ResendCount = %d, want %d", got, cfg.MaxResends)
	}
}

func TestChallengeServiceImpl_ResendAudited(t *testing.T) {
	codeRepo := mocks.NewMockTwoFactorCodeRepository()
	codeRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.TwoFactorCode, error) {
		return &domain.TwoFactorCode{
			ID:        id,
			UserID:    1,
			Code:      "111111",
			Status:    domain.CodeStatusActive,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}, nil
	}
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
		return createValidAccount(t), nil
	}
	attemptRepo := mocks.NewMockLoginAttemptRepository()
	var logged []*domain.LoginAttempt
	attemptRepo.AppendFunc = func(ctx context.Context, attempt *domain.LoginAttempt) error {
		logged = append(logged, attempt)
		return nil
	}

	cfg := defaultChallengeConfig()
	cfg.ResendCooldown = 0

	svc, _ := newChallengeServiceForTest(t, codeRepo, accountRepo, nil, attemptRepo, cfg)

	if _, err := svc.Resend(context.Background(), "challenge-1"); err != nil {
		t.Fatalf("Resend failed: %v", err)
	}

	if len(logged) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(logged))
	}
	row := logged[0]
	if row.Reason != string(domain.TwoFactorResendEvent) {
		t.Errorf("Reason = %q, want %q", row.Reason, domain.TwoFactorResendEvent)
	}
	if !row.Success || row.UserID != 1 {
		t.Errorf("row = %+v, want success for user 1", row)
	}
}
