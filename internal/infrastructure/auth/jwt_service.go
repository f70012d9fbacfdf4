package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// Token kinds carried in the "typ" claim. A token only verifies against the
// secret and kind it was minted with, so a refresh token can never pass an
// access check even if the secrets were misconfigured to match.
const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
	tokenKindMarker  = "two_fa_marker"
)

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService creates a token service signing access and refresh tokens
// with distinct operator-supplied secrets.
func NewJWTService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) (domain.TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, domain.ErrNotConfigured
	}
	return &JWTServiceImpl{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL implements domain.TokenService
func (j *JWTServiceImpl) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL implements domain.TokenService
func (j *JWTServiceImpl) RefreshTTL() time.Duration { return j.refreshTTL }

// Issue implements domain.TokenService
func (j *JWTServiceImpl) Issue(claims domain.Claims) (*domain.TokenPair, error) {
	access, err := j.sign(claims, tokenKindAccess, j.accessSecret, j.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := j.sign(claims, tokenKindRefresh, j.refreshSecret, j.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(j.accessTTL.Seconds()),
	}, nil
}

// VerifyAccess implements domain.TokenService
func (j *JWTServiceImpl) VerifyAccess(token string) (*domain.Claims, error) {
	return j.verify(token, tokenKindAccess, j.accessSecret)
}

// VerifyRefresh implements domain.TokenService
func (j *JWTServiceImpl) VerifyRefresh(token string) (*domain.Claims, error) {
	return j.verify(token, tokenKindRefresh, j.refreshSecret)
}

// IssueMarker implements domain.TokenService. The marker proves the second
// factor was passed for this long-lived session; it carries no other claims
// and lives as long as a refresh token.
func (j *JWTServiceImpl) IssueMarker(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"typ":     tokenKindMarker,
		"iss":     j.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(j.refreshTTL).Unix(),
		"jti":     uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.refreshSecret)
}

// VerifyMarker implements domain.TokenService
func (j *JWTServiceImpl) VerifyMarker(token string) (uint, error) {
	mc, err := j.parse(token, tokenKindMarker, j.refreshSecret)
	if err != nil {
		return 0, err
	}
	userID, ok := mc["user_id"].(float64)
	if !ok {
		return 0, domain.ErrTokenInvalid
	}
	return uint(userID), nil
}

func (j *JWTServiceImpl) sign(claims domain.Claims, kind string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	mc := jwt.MapClaims{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
		"two_fa":  claims.TwoFAEnabled,
		"typ":     kind,
		"iss":     j.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     uuid.NewString(),
	}
	if claims.OrganisationID != nil {
		mc["organisation_id"] = *claims.OrganisationID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return token.SignedString(secret)
}

// verify checks signature, kind and expiry. Every failure mode collapses to
// ErrTokenInvalid so callers cannot tell malformed from expired from tampered.
func (j *JWTServiceImpl) verify(tokenString, kind string, secret []byte) (*domain.Claims, error) {
	mc, err := j.parse(tokenString, kind, secret)
	if err != nil {
		return nil, err
	}

	userID, ok := mc["user_id"].(float64)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	email, ok := mc["email"].(string)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	role, ok := mc["role"].(string)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	twoFA, _ := mc["two_fa"].(bool)

	claims := &domain.Claims{
		UserID:       uint(userID),
		Email:        email,
		Role:         role,
		TwoFAEnabled: twoFA,
	}
	if orgID, ok := mc["organisation_id"].(float64); ok {
		v := uint(orgID)
		claims.OrganisationID = &v
	}

	return claims, nil
}

func (j *JWTServiceImpl) parse(tokenString, kind string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	if typ, _ := mc["typ"].(string); typ != kind {
		return nil, domain.ErrTokenInvalid
	}

	exp, ok := mc["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, domain.ErrTokenInvalid
	}

	return mc, nil
}
