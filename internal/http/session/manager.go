// Package session binds the token service to transport: cookies for browser
// callers, bearer headers for API and mobile callers.
package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// Cookie names. All are http-only, SameSite=Lax, root-scoped.
const (
	AccessCookie  = "lr_access"
	RefreshCookie = "lr_refresh"
	MarkerCookie  = "lr_2fa"
)

// MarkerHeader lets non-browser callers resend the 2FA-verified marker.
const MarkerHeader = "X-Two-Factor-Marker"

// Manager establishes, resolves and clears sessions.
type Manager struct {
	tokenSvc  domain.TokenService
	secure    bool
	resolvers []resolver
}

type resolver func(c *gin.Context) (*domain.Claims, bool)

// NewManager creates a session manager. secure controls the cookie Secure
// flag and should be on outside local development.
func NewManager(tokenSvc domain.TokenService, secure bool) *Manager {
	m := &Manager{tokenSvc: tokenSvc, secure: secure}
	// Resolution order is fixed: bearer header, access cookie, refresh
	// cookie with silent refresh. First success wins.
	m.resolvers = []resolver{
		m.resolveBearer,
		m.resolveAccessCookie,
		m.resolveRefreshCookie,
	}
	return m
}

// Establish places the minted token pair into the transport appropriate to
// the caller: cookies for browsers, the response body for bearer clients.
// The body form is returned; handlers decide whether to emit it.
func (m *Manager) Establish(c *gin.Context, result *domain.AuthResult) {
	if result.Tokens == nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, result.Tokens.AccessToken, int(m.tokenSvc.AccessTTL().Seconds()), "/", "", m.secure, true)
	c.SetCookie(RefreshCookie, result.Tokens.RefreshToken, int(m.tokenSvc.RefreshTTL().Seconds()), "/", "", m.secure, true)
	if result.Marker != "" {
		c.SetCookie(MarkerCookie, result.Marker, int(m.tokenSvc.RefreshTTL().Seconds()), "/", "", m.secure, true)
	}
}

// Resolve tries each transport in order and returns the first identity that
// verifies. Absence of identity is the signal; Resolve never fails loudly.
func (m *Manager) Resolve(c *gin.Context) (*domain.Claims, bool) {
	for _, r := range m.resolvers {
		if claims, ok := r(c); ok {
			return claims, true
		}
	}
	return nil, false
}

// MarkerVerified reports whether a 2FA-verified marker bound to userID is
// present, via cookie or header.
func (m *Manager) MarkerVerified(c *gin.Context, userID uint) bool {
	token, err := c.Cookie(MarkerCookie)
	if err != nil || token == "" {
		token = c.GetHeader(MarkerHeader)
	}
	if token == "" {
		return false
	}
	boundTo, err := m.tokenSvc.VerifyMarker(token)
	if err != nil {
		return false
	}
	return boundTo == userID
}

// Clear deletes all session cookies. Refresh tokens already issued to other
// devices stay valid until natural expiry.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", "", m.secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", m.secure, true)
	c.SetCookie(MarkerCookie, "", -1, "/", "", m.secure, true)
}

// ClearAccess drops only the access-token cookie, leaving the refresh token
// and marker in place. Used when a half-authenticated session revisits the
// login page.
func (m *Manager) ClearAccess(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", "", m.secure, true)
}

func (m *Manager) resolveBearer(c *gin.Context) (*domain.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := m.tokenSvc.VerifyAccess(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (m *Manager) resolveAccessCookie(c *gin.Context) (*domain.Claims, bool) {
	token, err := c.Cookie(AccessCookie)
	if err != nil || token == "" {
		return nil, false
	}
	claims, err := m.tokenSvc.VerifyAccess(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// resolveRefreshCookie performs the silent refresh: a valid refresh cookie
// transparently re-establishes a fresh access+refresh pair.
func (m *Manager) resolveRefreshCookie(c *gin.Context) (*domain.Claims, bool) {
	token, err := c.Cookie(RefreshCookie)
	if err != nil || token == "" {
		return nil, false
	}
	claims, err := m.tokenSvc.VerifyRefresh(token)
	if err != nil {
		return nil, false
	}

	tokens, err := m.tokenSvc.Issue(*claims)
	if err != nil {
		return nil, false
	}
	m.Establish(c, &domain.AuthResult{Claims: *claims, Tokens: tokens})

	return claims, true
}
