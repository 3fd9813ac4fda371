// Package auth verifies identity tokens and resolves them to user ids.
package auth

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/and161185/smartfit/internal/errs"
)

// Verifier resolves an identity token to the caller's user id.
// Any rejected token yields an error wrapping errs.ErrUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// TokenVerifier is the part of *fbauth.Client used here.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier checks Firebase ID tokens.
type FirebaseVerifier struct {
	client TokenVerifier
}

// NewFirebaseVerifier wraps a Firebase auth client.
func NewFirebaseVerifier(client TokenVerifier) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify returns the token's UID.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty token: %w", errs.ErrUnauthorized)
	}
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}
	if t == nil || t.UID == "" {
		return "", fmt.Errorf("token without uid: %w", errs.ErrUnauthorized)
	}
	return t.UID, nil
}
