// Package auth implements the stateless session layer: HS256 token issuance,
// claim extraction, validity checks and revocation.  Tokens are self-contained;
// the only server-side session state is the revocation blacklist.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusbook/facility-reservation/internal/model"
)

// Token validation failures surfaced by Parse.  Revoked tokens are not a
// distinct error: revocation only shows up as IsValid returning false.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
)

// Claims is the payload carried by a session token.  Subject duplicates
// Username; the extra claims let API clients render the session without a
// user lookup.
type Claims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	UserID   uint64 `json:"userId,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and validates session tokens.  The zero value is not usable;
// construct with NewService.
type Service struct {
	key       []byte
	ttl       time.Duration
	blacklist Blacklist
	now       func() time.Time
}

// NewService builds a token service.  secret must be the Base64 encoding of
// the raw HS256 key.  ttl bounds every issued token; the canonical production
// value is one hour.  blacklist may not be nil.
func NewService(secret string, ttl time.Duration, blacklist Blacklist) (*Service, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	if blacklist == nil {
		return nil, errors.New("nil blacklist")
	}
	return &Service{key: key, ttl: ttl, blacklist: blacklist, now: time.Now}, nil
}

// Issue signs a token for the given user.  The subject is the username; the
// expiry is issue time plus the configured TTL.
func (s *Service) Issue(u *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: u.Username,
		Role:     u.Role,
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}

// Parse verifies the token signature and expiry and returns its claims.
// Failures map onto ErrTokenExpired, ErrTokenMalformed and ErrTokenSignature.
func (s *Service) Parse(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	return &claims, nil
}

// IsValid reports whether the exact token string may still be used on behalf
// of expectedSubject.  False when the token is blacklisted, fails to parse,
// has expired, or names a different subject.  A revoked token stays invalid
// even though other tokens issued to the same subject remain usable.
func (s *Service) IsValid(ctx context.Context, token, expectedSubject string) bool {
	if s.blacklist.Contains(ctx, token) {
		return false
	}
	claims, err := s.Parse(token)
	if err != nil {
		return false
	}
	return claims.Subject != "" && claims.Subject == expectedSubject
}

// Revoke adds the exact token string to the blacklist.  The entry's lifetime
// is the token's remaining validity when that can still be determined, and
// the full TTL otherwise, so a durable blacklist never keeps entries past the
// point the token would have expired on its own.
func (s *Service) Revoke(ctx context.Context, token string) error {
	ttl := s.ttl
	if claims, err := s.Parse(token); err == nil && claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}
	return s.blacklist.Add(ctx, token, ttl)
}

// Username extracts a display identity from the token using a prioritized
// fallback chain: username claim, then email, then name, then the subject.
// On any parse failure it returns "" instead of an error; callers that need
// to distinguish failure use Parse or IsValid.
func (s *Service) Username(token string) string {
	claims, err := s.Parse(token)
	if err != nil {
		return ""
	}
	switch {
	case claims.Username != "":
		return claims.Username
	case claims.Email != "":
		return claims.Email
	case claims.Name != "":
		return claims.Name
	default:
		return claims.Subject
	}
}

// Role returns the role claim, or "" on any parse failure.
func (s *Service) Role(token string) string {
	claims, err := s.Parse(token)
	if err != nil {
		return ""
	}
	return claims.Role
}

// Email returns the email claim, or "" on any parse failure.
func (s *Service) Email(token string) string {
	claims, err := s.Parse(token)
	if err != nil {
		return ""
	}
	return claims.Email
}

// Authorities derives the granted authorities from the role claim, in the
// "ROLE_<role>" form.  An unreadable token or a missing role yields an empty
// slice.
func (s *Service) Authorities(token string) []string {
	claims, err := s.Parse(token)
	if err != nil || claims.Role == "" {
		return nil
	}
	return []string{"ROLE_" + claims.Role}
}
