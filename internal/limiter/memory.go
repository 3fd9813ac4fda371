package limiter

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	fails        int
	updatedAt    time.Time
	blockedUntil time.Time
}

// Memory is an in-process limiter used when no SQL database is configured.
type Memory struct {
	mu     sync.Mutex
	policy Policy
	now    func() time.Time
	byIP   map[string]*memEntry
	swept  time.Time
}

// NewMemory constructs an in-memory limiter.
func NewMemory(p Policy) *Memory {
	return &Memory{policy: p, now: time.Now, byIP: make(map[string]*memEntry)}
}

// Allow reports whether the address is currently unblocked.
func (m *Memory) Allow(_ context.Context, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byIP[string(ipHash)]
	if !ok {
		return true, 0, nil
	}
	if now := m.now(); e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success forgets the address.
func (m *Memory) Success(_ context.Context, ipHash []byte) error {
	m.mu.Lock()
	delete(m.byIP, string(ipHash))
	m.mu.Unlock()
	return nil
}

// Failure counts a rejected token within the sliding window.
func (m *Memory) Failure(_ context.Context, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	e, ok := m.byIP[string(ipHash)]
	if !ok || now.Sub(e.updatedAt) > m.policy.Window {
		e = &memEntry{}
		m.byIP[string(ipHash)] = e
	}
	e.fails++
	e.updatedAt = now
	if e.fails < m.policy.MaxFails {
		return false, 0, nil
	}
	e.blockedUntil = now.Add(m.policy.BlockFor)
	return true, m.policy.BlockFor, nil
}

// sweep drops entries whose window has lapsed and which are not blocked.
// It runs at most once per window. Callers hold m.mu.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.swept) < m.policy.Window {
		return
	}
	m.swept = now
	for k, e := range m.byIP {
		if now.Sub(e.updatedAt) > m.policy.Window && !e.blockedUntil.After(now) {
			delete(m.byIP, k)
		}
	}
}
