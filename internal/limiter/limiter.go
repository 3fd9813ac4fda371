// Package limiter throttles repeated failed token verifications per client address.
package limiter

import (
	"context"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Limiter tracks failed verification attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a verification is currently allowed and an optional retry-after.
	Allow(ctx context.Context, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a valid token.
	Success(ctx context.Context, ipHash []byte) error
	// Failure records a rejected token; may place a temporary block.
	Failure(ctx context.Context, ipHash []byte) (bool, time.Duration, error)
}

// Policy holds the sliding window parameters shared by implementations.
type Policy struct {
	Window   time.Duration
	MaxFails int
	BlockFor time.Duration
}

// IPHasher maps a client address to the key stored by a Limiter.
type IPHasher func(ip string) []byte

// HashIP returns a stable unkeyed hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := blake2b.Sum256([]byte(ip))
	return h[:]
}

// NewIPHasher returns a keyed BLAKE2b-256 hasher. Without a key the IPv4
// space can be enumerated back from stored hashes. An empty key yields HashIP.
func NewIPHasher(key []byte) (IPHasher, error) {
	if len(key) == 0 {
		return HashIP, nil
	}
	if _, err := blake2b.New256(key); err != nil {
		return nil, err
	}
	return func(ip string) []byte {
		h, _ := blake2b.New256(key)
		h.Write([]byte(ip))
		return h.Sum(nil)
	}, nil
}
