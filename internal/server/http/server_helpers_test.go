package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/limiter"
	"github.com/and161185/smartfit/internal/model"
	"github.com/and161185/smartfit/internal/service"
)

// memEntries is a small in-memory EntryRepository.
type memEntries struct {
	mu    sync.Mutex
	byID  map[string]model.CheckinEntry
	seq   int
	fail  error
	clock time.Time
}

func newMemEntries() *memEntries {
	return &memEntries{byID: map[string]model.CheckinEntry{}, clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memEntries) all(keep func(model.CheckinEntry) bool) ([]model.CheckinEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var out []model.CheckinEntry
	for i := 1; i <= m.seq; i++ {
		if e, ok := m.byID[fmt.Sprintf("e%d", i)]; ok && keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEntries) ListByUser(_ context.Context, u string) ([]model.CheckinEntry, error) {
	return m.all(func(e model.CheckinEntry) bool { return e.UserID == u })
}
func (m *memEntries) ListByUserAndType(_ context.Context, u string, c model.Category) ([]model.CheckinEntry, error) {
	return m.all(func(e model.CheckinEntry) bool { return e.UserID == u && e.Type == c })
}
func (m *memEntries) ListByUserAndDateRange(_ context.Context, u string, s, e time.Time) ([]model.CheckinEntry, error) {
	return m.all(func(x model.CheckinEntry) bool {
		return x.UserID == u && !x.Timestamp.Before(s) && !x.Timestamp.After(e)
	})
}
func (m *memEntries) CountByUserTypeAndDateRange(ctx context.Context, u string, c model.Category, s, e time.Time) (int64, error) {
	list, err := m.all(func(x model.CheckinEntry) bool {
		return x.UserID == u && x.Type == c && !x.Timestamp.Before(s) && !x.Timestamp.After(e)
	})
	return int64(len(list)), err
}
func (m *memEntries) GetByID(_ context.Context, id string) (*model.CheckinEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &e, nil
}
func (m *memEntries) Create(_ context.Context, e model.CheckinEntry) (*model.CheckinEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.clock = m.clock.Add(time.Second)
	e.ID = fmt.Sprintf("e%d", m.seq)
	e.CreatedAt, e.UpdatedAt = m.clock, m.clock
	m.byID[e.ID] = e
	return &e, nil
}
func (m *memEntries) Update(_ context.Context, id string, e model.CheckinEntry) (*model.CheckinEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	m.clock = m.clock.Add(time.Second)
	e.ID, e.UserID, e.CreatedAt, e.UpdatedAt = id, cur.UserID, cur.CreatedAt, m.clock
	m.byID[id] = e
	return &e, nil
}
func (m *memEntries) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.byID, id)
	m.mu.Unlock()
	return nil
}

type memSettings struct {
	mu     sync.Mutex
	byUser map[string]model.UserSettings
}

func (m *memSettings) GetByUser(_ context.Context, u string) (model.UserSettings, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUser[u]
	return s, ok, nil
}
func (m *memSettings) Upsert(_ context.Context, s model.UserSettings) (*model.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if cur, ok := m.byUser[s.UserID]; ok {
		s.ID, s.CreatedAt = cur.ID, cur.CreatedAt
	} else {
		s.ID, s.CreatedAt = "s-"+s.UserID, now
	}
	s.UpdatedAt = now
	m.byUser[s.UserID] = s
	return &s, nil
}

// tokenVerifier accepts "tok-<uid>".
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, tok string) (string, error) {
	var uid string
	if _, err := fmt.Sscanf(tok, "tok-%s", &uid); err != nil || uid == "" {
		return "", fmt.Errorf("%w: bad token", errs.ErrUnauthorized)
	}
	return uid, nil
}

type testEnv struct {
	h        http.Handler
	entries  *memEntries
	settings *memSettings
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	entries := newMemEntries()
	settings := &memSettings{byUser: map[string]model.UserSettings{}}
	lim := limiter.NewMemory(limiter.Policy{Window: time.Minute, MaxFails: 3, BlockFor: time.Minute})
	opts := Options{BasePath: "/api", Location: time.UTC}
	srv := New(
		service.NewCheckinService(entries),
		service.NewSettingsService(settings),
		service.NewAuthService(tokenVerifier{}, lim),
		zaptest.NewLogger(t),
		opts,
	)
	return &testEnv{h: srv.Routes(opts), entries: entries, settings: settings}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "203.0.113.7:5555"
	if user != "" {
		req.Header.Set("Authorization", "Bearer tok-"+user)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}
