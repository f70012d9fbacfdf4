package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jainabhi1607/loanease-sub003/domain"
	"github.com/jainabhi1607/loanease-sub003/internal/infrastructure/notifications"
)

var testCC = &domain.ClientContext{IPAddress: "10.0.0.1", UserAgent: "test-agent"}

func TestAuthServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name           string
		email          string
		password       string
		setup          func(*authServiceDeps)
		expectedError  error
		validateResult func(t *testing.T, result *domain.AuthResult)
	}{
		{
			name:     "successful login without two-factor",
			email:    "referrer@example.com",
			password: "correct-password",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return createValidAccount(t), nil
				}
			},
			validateResult: func(t *testing.T, result *domain.AuthResult) {
				if result.TwoFARequired {
					t.Error("two-factor should not be required")
				}
				if result.Tokens == nil || result.Tokens.AccessToken == "" {
					t.Error("expected a minted token pair")
				}
				if result.Claims.UserID != 1 {
					t.Errorf("claims user id = %d, want 1", result.Claims.UserID)
				}
			},
		},
		{
			name:     "two-factor account gets challenge not tokens",
			email:    "referrer@example.com",
			password: "correct-password",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					acc := createValidAccount(t)
					acc.TwoFAEnabled = true
					return acc, nil
				}
			},
			validateResult: func(t *testing.T, result *domain.AuthResult) {
				if !result.TwoFARequired {
					t.Fatal("two-factor should be required")
				}
				if result.ChallengeID == "" {
					t.Error("expected a challenge id")
				}
				if result.Tokens != nil {
					t.Error("no tokens may be issued before the second factor")
				}
				if result.Marker != "" {
					t.Error("no marker may be issued before the second factor")
				}
			},
		},
		{
			name:     "wrong password burns an attempt",
			email:    "referrer@example.com",
			password: "wrong-password",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return createValidAccount(t), nil
				}
				d.LoginThrottle.RecordFailureFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
					return &domain.ThrottleResult{Remaining: 3}, nil
				}
			},
			expectedError: domain.ErrInvalidCredentials,
			validateResult: func(t *testing.T, result *domain.AuthResult) {
				if result != nil {
					t.Error("expected nil result")
				}
			},
		},
		{
			name:     "unknown account is indistinguishable from wrong password",
			email:    "nobody@example.com",
			password: "whatever",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return nil, domain.ErrAccountNotFound
				}
				d.LoginThrottle.RecordFailureFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
					return &domain.ThrottleResult{Remaining: 4}, nil
				}
			},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:     "inactive account is refused",
			email:    "referrer@example.com",
			password: "correct-password",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					acc := createValidAccount(t)
					acc.IsActive = false
					return acc, nil
				}
			},
			expectedError: domain.ErrAccountInactive,
		},
		{
			// A wrong password on an inactive account must look exactly
			// like a wrong password anywhere else, or the 403 would
			// confirm the account exists.
			name:     "inactive account with wrong password reads as bad credentials",
			email:    "referrer@example.com",
			password: "wrong-password",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					acc := createValidAccount(t)
					acc.IsActive = false
					return acc, nil
				}
				d.LoginThrottle.RecordFailureFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
					return &domain.ThrottleResult{Remaining: 3}, nil
				}
			},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:     "locked out caller is refused before password check",
			email:    "referrer@example.com",
			password: "correct-password",
			setup: func(d *authServiceDeps) {
				d.LoginThrottle.CheckLockedFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
					return &domain.ThrottleResult{Locked: true, LockedUntil: time.Now().Add(20 * time.Minute)}, nil
				}
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					t.Fatal("account lookup must not run for a locked-out caller")
					return nil, nil
				}
			},
			expectedError: domain.ErrAccountLocked,
		},
		{
			name:     "final failure escalates to lockout",
			email:    "referrer@example.com",
			password: "wrong-password",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return createValidAccount(t), nil
				}
				d.LoginThrottle.RecordFailureFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
					return &domain.ThrottleResult{Locked: true, LockedUntil: time.Now().Add(30 * time.Minute)}, nil
				}
			},
			expectedError: domain.ErrAccountLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newAuthServiceDeps(t)
			if tt.setup != nil {
				tt.setup(deps)
			}
			svc := deps.build()

			result, err := svc.Login(context.Background(), tt.email, tt.password, testCC)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("error = %v, want %v", err, tt.expectedError)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validateResult != nil {
				tt.validateResult(t, result)
			}
		})
	}
}

func TestAuthServiceImpl_Login_AttemptsRemainingDecrements(t *testing.T) {
	deps := newAuthServiceDeps(t)
	deps.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
		return createValidAccount(t), nil
	}

	remaining := 5
	deps.LoginThrottle.RecordFailureFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
		remaining--
		return &domain.ThrottleResult{Remaining: remaining}, nil
	}
	svc := deps.build()

	for want := 4; want >= 2; want-- {
		_, err := svc.Login(context.Background(), "referrer@example.com", "wrong", testCC)
		var credErr *domain.CredentialsError
		if !errors.As(err, &credErr) {
			t.Fatalf("expected CredentialsError, got %v", err)
		}
		if credErr.AttemptsRemaining != want {
			t.Errorf("AttemptsRemaining = %d, want %d", credErr.AttemptsRemaining, want)
		}
	}
}

func TestAuthServiceImpl_Login_SuccessClearsThrottle(t *testing.T) {
	deps := newAuthServiceDeps(t)
	deps.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
		return createValidAccount(t), nil
	}
	svc := deps.build()

	if _, err := svc.Login(context.Background(), "referrer@example.com", "correct-password", testCC); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	wantKey := domain.ThrottleKey("referrer@example.com", "10.0.0.1")
	if len(deps.LoginThrottle.ClearedKeys) != 1 || deps.LoginThrottle.ClearedKeys[0] != wantKey {
		t.Errorf("cleared keys = %v, want [%s]", deps.LoginThrottle.ClearedKeys, wantKey)
	}
}

func TestAuthServiceImpl_CompleteTwoFactor(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		setup         func(*authServiceDeps)
		expectedError error
		validate      func(t *testing.T, result *domain.AuthResult)
	}{
		{
			name: "successful verification issues tokens and marker",
			code: "123456",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					acc := createValidAccount(t)
					acc.TwoFAEnabled = true
					return acc, nil
				}
				d.ChallengeSvc.VerifyFunc = func(ctx context.Context, code string) (uint, error) {
					return 1, nil
				}
			},
			validate: func(t *testing.T, result *domain.AuthResult) {
				if result.Tokens == nil {
					t.Fatal("expected tokens")
				}
				if result.Marker == "" {
					t.Error("expected a two-factor marker")
				}
			},
		},
		{
			name: "invalid code burns an attempt",
			code: "000000",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return createValidAccount(t), nil
				}
				d.ChallengeSvc.VerifyFunc = func(ctx context.Context, code string) (uint, error) {
					return 0, domain.ErrTwoFactorCodeInvalid
				}
				d.TwoFAThrottle.RecordFailureFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
					return &domain.ThrottleResult{Remaining: 2}, nil
				}
			},
			expectedError: domain.ErrTwoFactorCodeInvalid,
		},
		{
			name: "code bound to a different account is rejected",
			code: "123456",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return createValidAccount(t), nil
				}
				d.ChallengeSvc.VerifyFunc = func(ctx context.Context, code string) (uint, error) {
					return 99, nil
				}
			},
			expectedError: domain.ErrTwoFactorCodeInvalid,
		},
		{
			name: "too many code failures escalates to lockout",
			code: "000000",
			setup: func(d *authServiceDeps) {
				d.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return createValidAccount(t), nil
				}
				d.ChallengeSvc.VerifyFunc = func(ctx context.Context, code string) (uint, error) {
					return 0, domain.ErrTwoFactorCodeInvalid
				}
				d.TwoFAThrottle.RecordFailureFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
					return &domain.ThrottleResult{Locked: true, LockedUntil: time.Now().Add(15 * time.Minute)}, nil
				}
			},
			expectedError: domain.ErrTwoFactorMaxAttempts,
		},
		{
			name: "locked out verification is refused up front",
			code: "123456",
			setup: func(d *authServiceDeps) {
				d.TwoFAThrottle.CheckLockedFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
					return &domain.ThrottleResult{Locked: true, LockedUntil: time.Now().Add(15 * time.Minute)}, nil
				}
			},
			expectedError: domain.ErrAccountLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newAuthServiceDeps(t)
			if tt.setup != nil {
				tt.setup(deps)
			}
			svc := deps.build()

			result, err := svc.CompleteTwoFactor(context.Background(), "referrer@example.com", tt.code, testCC)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("error = %v, want %v", err, tt.expectedError)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestAuthServiceImpl_Refresh(t *testing.T) {
	t.Run("re-derives claims from the account record", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		deps.TokenSvc.VerifyRefreshFunc = func(token string) (*domain.Claims, error) {
			// The old token says referrer; the record has since changed.
			return &domain.Claims{UserID: 1, Email: "referrer@example.com", Role: domain.RoleReferrer}, nil
		}
		deps.AccountRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
			acc := createValidAccount(t)
			acc.Role = domain.RoleReferrerTeam
			return acc, nil
		}

		var issued domain.Claims
		deps.TokenSvc.IssueFunc = func(claims domain.Claims) (*domain.TokenPair, error) {
			issued = claims
			return &domain.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}, nil
		}
		svc := deps.build()

		result, err := svc.Refresh(context.Background(), "valid-refresh")
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if issued.Role != domain.RoleReferrerTeam {
			t.Errorf("issued role = %q, want the record's current role", issued.Role)
		}
		if result.Claims.Role != domain.RoleReferrerTeam {
			t.Errorf("result role = %q, want the record's current role", result.Claims.Role)
		}
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		svc := deps.build()

		if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("error = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("deleted account collapses to invalid token", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		deps.TokenSvc.VerifyRefreshFunc = func(token string) (*domain.Claims, error) {
			return &domain.Claims{UserID: 404}, nil
		}
		svc := deps.build()

		if _, err := svc.Refresh(context.Background(), "valid-refresh"); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("error = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("deactivated account is refused", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		deps.TokenSvc.VerifyRefreshFunc = func(token string) (*domain.Claims, error) {
			return &domain.Claims{UserID: 1}, nil
		}
		deps.AccountRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
			acc := createValidAccount(t)
			acc.IsActive = false
			return acc, nil
		}
		svc := deps.build()

		if _, err := svc.Refresh(context.Background(), "valid-refresh"); !errors.Is(err, domain.ErrAccountInactive) {
			t.Errorf("error = %v, want ErrAccountInactive", err)
		}
	})
}

func TestAuthServiceImpl_Signup(t *testing.T) {
	t.Run("creates account from live invitation", func(t *testing.T) {
		orgID := uint(7)
		deps := newAuthServiceDeps(t)
		deps.InviteRepo.FindLiveFunc = func(ctx context.Context, token string) (*domain.Invitation, error) {
			return &domain.Invitation{
				Token:          token,
				Email:          "new@example.com",
				Role:           domain.RoleReferrerTeam,
				OrganisationID: &orgID,
				ExpiresAt:      time.Now().Add(24 * time.Hour),
			}, nil
		}

		var created *domain.Account
		deps.AccountRepo.CreateFunc = func(ctx context.Context, acc *domain.Account) error {
			acc.ID = 10
			created = acc
			return nil
		}
		var accepted string
		deps.InviteRepo.MarkAcceptedFunc = func(ctx context.Context, token string) error {
			accepted = token
			return nil
		}
		svc := deps.build()

		acc, err := svc.Signup(context.Background(), "invite-token", "new-password-1", testCC)
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if acc.Email != "new@example.com" || acc.Role != domain.RoleReferrerTeam {
			t.Errorf("account = %+v, want invitation's email and role", acc)
		}
		if created.OrganisationID == nil || *created.OrganisationID != orgID {
			t.Error("organisation should carry over from the invitation")
		}
		if created.PasswordHash == "new-password-1" {
			t.Error("password must be stored hashed")
		}
		if accepted != "invite-token" {
			t.Error("invitation should be consumed")
		}
	})

	t.Run("dead invitation is refused", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		svc := deps.build()

		if _, err := svc.Signup(context.Background(), "stale", "password123", testCC); !errors.Is(err, domain.ErrInvitationInvalid) {
			t.Errorf("error = %v, want ErrInvitationInvalid", err)
		}
	})
}

func TestAuthServiceImpl_Invite(t *testing.T) {
	t.Run("stores invitation and mails the token", func(t *testing.T) {
		orgID := uint(7)
		deps := newAuthServiceDeps(t)

		var stored *domain.Invitation
		deps.InviteRepo.CreateFunc = func(ctx context.Context, inv *domain.Invitation) error {
			stored = inv
			return nil
		}
		var sentTemplate, sentRecipient string
		var sentVars map[string]string
		deps.NotificationSvc.SendFunc = func(ctx context.Context, template, recipient string, vars map[string]string) error {
			sentTemplate = template
			sentRecipient = recipient
			sentVars = vars
			return nil
		}
		svc := deps.build()

		inv, err := svc.Invite(context.Background(), "new@example.com", domain.RoleReferrerTeam, &orgID, testCC)
		if err != nil {
			t.Fatalf("Invite failed: %v", err)
		}
		if stored == nil || stored.Token == "" {
			t.Fatal("invitation should be stored with a token")
		}
		if stored.Role != domain.RoleReferrerTeam || stored.OrganisationID == nil || *stored.OrganisationID != orgID {
			t.Errorf("stored = %+v, want role and organisation carried over", stored)
		}
		if until := time.Until(stored.ExpiresAt); until < 6*24*time.Hour || until > 8*24*time.Hour {
			t.Errorf("expiry = %v from now, want about seven days", until)
		}
		if sentTemplate != notifications.TemplateInvitation || sentRecipient != "new@example.com" {
			t.Errorf("sent %q to %q, want invitation template to the invitee", sentTemplate, sentRecipient)
		}
		if sentVars["token"] != inv.Token {
			t.Error("mailed token should match the stored invitation")
		}
	})

	t.Run("unknown role is refused", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		deps.InviteRepo.CreateFunc = func(ctx context.Context, inv *domain.Invitation) error {
			t.Fatal("no invitation may be stored for an unknown role")
			return nil
		}
		svc := deps.build()

		if _, err := svc.Invite(context.Background(), "new@example.com", "superuser", nil, testCC); !errors.Is(err, domain.ErrInvitationInvalid) {
			t.Errorf("error = %v, want ErrInvitationInvalid", err)
		}
	})

	t.Run("dispatch failure surfaces", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		deps.NotificationSvc.SendFunc = func(ctx context.Context, template, recipient string, vars map[string]string) error {
			return errors.New("smtp down")
		}
		svc := deps.build()

		if _, err := svc.Invite(context.Background(), "new@example.com", domain.RoleReferrer, nil, testCC); err == nil {
			t.Error("expected the dispatch failure to surface")
		}
	})
}

func TestAuthServiceImpl_Logout(t *testing.T) {
	deps := newAuthServiceDeps(t)
	var logged []*domain.LoginAttempt
	deps.AttemptRepo.AppendFunc = func(ctx context.Context, attempt *domain.LoginAttempt) error {
		logged = append(logged, attempt)
		return nil
	}
	svc := deps.build()

	if err := svc.Logout(context.Background(), 1, testCC); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if len(logged) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(logged))
	}
	row := logged[0]
	if row.Reason != string(domain.LogoutEvent) || !row.Success || row.UserID != 1 {
		t.Errorf("row = %+v, want a successful LOGOUT entry for user 1", row)
	}
	if row.IP != testCC.IPAddress || row.UserAgent != testCC.UserAgent {
		t.Error("client context should carry into the audit row")
	}
}

func TestAuthServiceImpl_PasswordReset(t *testing.T) {
	t.Run("request stores token and mails it", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		deps.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			return createValidAccount(t), nil
		}

		var invalidated uint
		deps.ResetRepo.InvalidateForUserFunc = func(ctx context.Context, userID uint) error {
			invalidated = userID
			return nil
		}
		var stored *domain.PasswordResetToken
		deps.ResetRepo.CreateFunc = func(ctx context.Context, token *domain.PasswordResetToken) error {
			stored = token
			return nil
		}
		svc := deps.build()

		if err := svc.RequestPasswordReset(context.Background(), "referrer@example.com"); err != nil {
			t.Fatalf("RequestPasswordReset failed: %v", err)
		}
		if invalidated != 1 {
			t.Error("prior reset tokens should be invalidated first")
		}
		if stored == nil || stored.Token == "" {
			t.Fatal("expected a stored token")
		}
		if len(deps.NotificationSvc.SentEmails) != 1 {
			t.Fatalf("sent %d emails, want 1", len(deps.NotificationSvc.SentEmails))
		}
		if deps.NotificationSvc.SentEmails[0].Vars["token"] != stored.Token {
			t.Error("mailed token should match the stored one")
		}
	})

	t.Run("unknown email is silently accepted", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		svc := deps.build()

		if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
			t.Errorf("unknown email must not error, got %v", err)
		}
		if len(deps.NotificationSvc.SentEmails) != 0 {
			t.Error("no email should be dispatched for unknown accounts")
		}
	})

	t.Run("reset consumes the token and rehashes", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		deps.ResetRepo.FindLiveFunc = func(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
			return &domain.PasswordResetToken{Token: token, UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}, nil
		}

		var newHash string
		deps.AccountRepo.UpdatePasswordFunc = func(ctx context.Context, userID uint, passwordHash string) error {
			newHash = passwordHash
			return nil
		}
		var consumed string
		deps.ResetRepo.MarkUsedFunc = func(ctx context.Context, token string) error {
			consumed = token
			return nil
		}
		svc := deps.build()

		if err := svc.ResetPassword(context.Background(), "reset-token", "fresh-password"); err != nil {
			t.Fatalf("ResetPassword failed: %v", err)
		}
		if newHash != "hashed_fresh-password" {
			t.Errorf("stored hash = %q, want the hashed form", newHash)
		}
		if consumed != "reset-token" {
			t.Error("reset token should be consumed")
		}
	})

	t.Run("dead reset token is refused", func(t *testing.T) {
		deps := newAuthServiceDeps(t)
		svc := deps.build()

		if err := svc.ResetPassword(context.Background(), "stale", "whatever1"); !errors.Is(err, domain.ErrResetTokenInvalid) {
			t.Errorf("error = %v, want ErrResetTokenInvalid", err)
		}
	})
}

func TestAuthServiceImpl_AuditTrail(t *testing.T) {
	deps := newAuthServiceDeps(t)
	deps.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
		return createValidAccount(t), nil
	}

	var attempts []*domain.LoginAttempt
	deps.AttemptRepo.AppendFunc = func(ctx context.Context, attempt *domain.LoginAttempt) error {
		attempts = append(attempts, attempt)
		return nil
	}
	deps.LoginThrottle.RecordFailureFunc = func(ctx context.Context, key string) (*domain.ThrottleResult, error) {
		return &domain.ThrottleResult{Remaining: 3}, nil
	}
	svc := deps.build()

	svc.Login(context.Background(), "referrer@example.com", "wrong", testCC)
	svc.Login(context.Background(), "referrer@example.com", "correct-password", testCC)

	if len(attempts) != 2 {
		t.Fatalf("recorded %d attempts, want 2", len(attempts))
	}
	if attempts[0].Success {
		t.Error("first attempt should be recorded as failed")
	}
	if !attempts[1].Success {
		t.Error("second attempt should be recorded as successful")
	}
	if attempts[0].IP != "10.0.0.1" || attempts[0].UserAgent != "test-agent" {
		t.Error("client context should be recorded")
	}
}

func TestAuthServiceImpl_AuditFailureDoesNotBlock(t *testing.T) {
	deps := newAuthServiceDeps(t)
	deps.AccountRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
		return createValidAccount(t), nil
	}
	deps.AttemptRepo.AppendFunc = func(ctx context.Context, attempt *domain.LoginAttempt) error {
		return errors.New("disk full")
	}
	svc := deps.build()

	if _, err := svc.Login(context.Background(), "referrer@example.com", "correct-password", testCC); err != nil {
		t.Errorf("audit failure must not block login, got %v", err)
	}
}
