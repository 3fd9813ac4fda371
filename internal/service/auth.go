package service

import (
	"context"
	"errors"

	"github.com/and161185/smartfit/internal/auth"
	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/limiter"
)

// AuthService resolves identity tokens to user ids.
type AuthService interface {
	// Authenticate verifies a bearer token for a data request.
	Authenticate(ctx context.Context, token string) (userID string, err error)
	// VerifyWithIP verifies a token on behalf of a client address, applying
	// the failed-attempt limiter.
	VerifyWithIP(ctx context.Context, token, ip string) (userID string, err error)
}

type AuthServiceImpl struct {
	verifier auth.Verifier
	lim      limiter.Limiter
	hashIP   limiter.IPHasher
}

// AuthOption customizes AuthServiceImpl.
type AuthOption func(*AuthServiceImpl)

// WithIPHasher replaces the default unkeyed address hash.
func WithIPHasher(h limiter.IPHasher) AuthOption {
	return func(s *AuthServiceImpl) {
		if h != nil {
			s.hashIP = h
		}
	}
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(verifier auth.Verifier, lim limiter.Limiter, opts ...AuthOption) *AuthServiceImpl {
	s := &AuthServiceImpl{verifier: verifier, lim: lim, hashIP: limiter.HashIP}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Authenticate delegates to the verifier.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (string, error) {
	return s.verifier.Verify(ctx, token)
}

// VerifyWithIP checks the limiter for ip, verifies token and records the outcome.
func (s *AuthServiceImpl) VerifyWithIP(ctx context.Context, token, ip string) (string, error) {
	ipHash := s.hashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, ipHash)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", errs.ErrRateLimited
	}

	uid, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if !errors.Is(err, errs.ErrUnauthorized) {
			return "", err
		}
		if blocked, _, ferr := s.lim.Failure(ctx, ipHash); ferr == nil && blocked {
			return "", errs.ErrRateLimited
		}
		return "", err
	}

	// best-effort reset
	_ = s.lim.Success(ctx, ipHash)
	return uid, nil
}
