// Package token issues and verifies the access and refresh credentials that
// gate the real-time layer, and tracks revoked refresh credentials.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed token, expired token, or a token from the wrong signing domain.
// Callers must not surface a more specific cause.
var ErrInvalidToken = errors.New("invalid token")

const (
	purposeAccess  = "access"
	purposeRefresh = "refresh"
)

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// Claims are the claims embedded in both token domains. Purpose pins a token
// to the domain it was issued under.
type Claims struct {
	Username string `json:"username"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 tokens. Access and refresh tokens use
// disjoint secrets, so a token from one domain never verifies in the other.
// Safe for concurrent use.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewService creates a Service from the two signing secrets. The secrets are
// injected explicitly; the service never reads the environment.
func NewService(accessSecret, refreshSecret []byte) *Service {
	return &Service{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
	}
}

// IssueAccess signs a short-lived access token for identity.
func (s *Service) IssueAccess(identity string, ttl time.Duration) (string, error) {
	return s.issue(identity, purposeAccess, ttl, s.accessSecret)
}

// IssueRefresh signs a long-lived refresh token for identity.
func (s *Service) IssueRefresh(identity string, ttl time.Duration) (string, error) {
	return s.issue(identity, purposeRefresh, ttl, s.refreshSecret)
}

// VerifyAccess checks an access token and returns the identity it binds.
func (s *Service) VerifyAccess(raw string) (string, error) {
	return s.verify(raw, purposeAccess, s.accessSecret)
}

// VerifyRefresh checks a refresh token and returns the identity it binds.
// Callers must consult the RevocationRegistry before trusting the result
// for issuing new credentials.
func (s *Service) VerifyRefresh(raw string) (string, error) {
	return s.verify(raw, purposeRefresh, s.refreshSecret)
}

func (s *Service) issue(identity, purpose string, ttl time.Duration, secret []byte) (string, error) {
	if identity == "" {
		return "", errors.New("empty identity")
	}
	now := NowFunc()
	claims := Claims{
		Username: identity,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Service) verify(raw, purpose string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(NowFunc))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Purpose != purpose || claims.Username == "" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}
