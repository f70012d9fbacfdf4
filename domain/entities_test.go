package domain

import (
	"testing"
	"time"
)

func TestRoleFamilies(t *testing.T) {
	tests := []struct {
		role       string
		isAdmin    bool
		isReferrer bool
		landing    string
	}{
		{RoleAdmin, true, false, "/admin"},
		{RoleAdminTeam, true, false, "/admin"},
		{RoleReferrer, false, true, "/dashboard"},
		{RoleReferrerTeam, false, true, "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsAdminRole(tt.role); got != tt.isAdmin {
				t.Errorf("IsAdminRole(%q) = %v, want %v", tt.role, got, tt.isAdmin)
			}
			if got := IsReferrerRole(tt.role); got != tt.isReferrer {
				t.Errorf("IsReferrerRole(%q) = %v, want %v", tt.role, got, tt.isReferrer)
			}
			if got := LandingPath(tt.role); got != tt.landing {
				t.Errorf("LandingPath(%q) = %q, want %q", tt.role, got, tt.landing)
			}
		})
	}
}

func TestClaimsFromAccount(t *testing.T) {
	orgID := uint(42)
	acc := &Account{
		ID:             7,
		Email:          "referrer@example.com",
		PasswordHash:   "hashed_secret",
		Role:           RoleReferrer,
		OrganisationID: &orgID,
		TwoFAEnabled:   true,
		IsActive:       true,
	}

	claims := ClaimsFromAccount(acc)

	if claims.UserID != acc.ID {
		t.Errorf("UserID = %d, want %d", claims.UserID, acc.ID)
	}
	if claims.Email != acc.Email {
		t.Errorf("Email = %q, want %q", claims.Email, acc.Email)
	}
	if claims.Role != RoleReferrer {
		t.Errorf("Role = %q, want %q", claims.Role, RoleReferrer)
	}
	if claims.OrganisationID == nil || *claims.OrganisationID != orgID {
		t.Errorf("OrganisationID = %v, want %d", claims.OrganisationID, orgID)
	}
	if !claims.TwoFAEnabled {
		t.Error("TwoFAEnabled should carry over from the account")
	}
}

func TestTwoFactorCode_Expired(t *testing.T) {
	now := time.Now()
	code := &TwoFactorCode{
		ID:        "c-1",
		UserID:    1,
		Code:      "123456",
		Status:    CodeStatusActive,
		ExpiresAt: now.Add(10 * time.Minute),
	}

	if code.Expired(now) {
		t.Error("code should not be expired before its deadline")
	}
	if code.Expired(now.Add(10 * time.Minute)) {
		t.Error("code should not be expired exactly at its deadline")
	}
	if !code.Expired(now.Add(10*time.Minute + time.Second)) {
		t.Error("code should be expired after its deadline")
	}
}

func TestThrottleKey(t *testing.T) {
	// Identity and origin accumulate independently: one origin spraying
	// many identities and many origins targeting one identity must produce
	// distinct keys.
	a := ThrottleKey("user@example.com", "10.0.0.1")
	b := ThrottleKey("user@example.com", "10.0.0.2")
	c := ThrottleKey("other@example.com", "10.0.0.1")

	if a == b {
		t.Error("same identity from different origins must key separately")
	}
	if a == c {
		t.Error("different identities from the same origin must key separately")
	}
	if a != ThrottleKey("user@example.com", "10.0.0.1") {
		t.Error("the same identity and origin must key identically")
	}
}
