package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/smartfit/internal/errs"
)

// JWTVerifier accepts HS256 tokens signed with a shared key, with the user
// id in the subject claim. It serves local development without Firebase.
type JWTVerifier struct {
	key    []byte
	leeway time.Duration
}

// NewJWTVerifier constructs a verifier for key.
func NewJWTVerifier(key []byte) *JWTVerifier {
	return &JWTVerifier{key: key, leeway: 30 * time.Second}
}

// Verify parses and validates token and returns its subject.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.key, nil
	}, jwt.WithLeeway(v.leeway))
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", errs.ErrUnauthorized)
	}
	return claims.Subject, nil
}

// IssueToken signs an HS256 token for subject valid for ttl.
func IssueToken(key []byte, subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(key)
	return signed, exp, err
}
