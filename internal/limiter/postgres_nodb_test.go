package limiter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/************ fake pgx ************/
type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakePool struct {
	qrErr         error
	qrBlockedTill *time.Time
	qrFailsRet    int

	lastExecSQL  string
	lastExecArgs []any
	execErr      error
}

func (f *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastExecSQL = sql
	f.lastExecArgs = args
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "SELECT blocked_until"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			if f.qrBlockedTill != nil {
				*(dest[0].(*time.Time)) = *f.qrBlockedTill
			} else {
				*(dest[0].(*time.Time)) = time.Time{} // 'epoch'
			}
			return nil
		}}
	case strings.Contains(sql, "RETURNING fail_count"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			*(dest[0].(*int)) = f.qrFailsRet
			return nil
		}}
	default:
		return fakeRow{scan: func(dest ...any) error { return errors.New("unexpected query") }}
	}
}

var testPolicy = Policy{Window: 15 * time.Minute, MaxFails: 5, BlockFor: 10 * time.Minute}

func TestAllow_NoRow_Allows(t *testing.T) {
	fp := &fakePool{qrErr: pgx.ErrNoRows}
	l := NewPG(fp, testPolicy)

	ok, dur, err := l.Allow(context.Background(), []byte("h"))
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow no-row: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_BlockedUntilFuture(t *testing.T) {
	fut := time.Now().Add(10 * time.Minute)
	fp := &fakePool{qrBlockedTill: &fut}
	l := NewPG(fp, testPolicy)

	ok, dur, err := l.Allow(context.Background(), []byte("h"))
	if err != nil || ok || dur <= 0 {
		t.Fatalf("Allow blocked: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_PastOrEpoch_Allows(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	fp := &fakePool{qrBlockedTill: &past}
	l := NewPG(fp, testPolicy)

	ok, dur, err := l.Allow(context.Background(), []byte("h"))
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow past: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_DBError_Propagates(t *testing.T) {
	fp := &fakePool{qrErr: errors.New("db boom")}
	l := NewPG(fp, testPolicy)

	ok, _, err := l.Allow(context.Background(), []byte("h"))
	if err == nil || ok {
		t.Fatalf("want error propagate, got ok=%v err=%v", ok, err)
	}
}

func TestSuccess_ExecError_Propagates(t *testing.T) {
	fp := &fakePool{execErr: errors.New("exec fail")}
	l := NewPG(fp, testPolicy)

	if err := l.Success(context.Background(), []byte("h")); err == nil {
		t.Fatalf("want exec error")
	}
}

func TestSuccess_OK(t *testing.T) {
	fp := &fakePool{}
	l := NewPG(fp, testPolicy)

	if err := l.Success(context.Background(), []byte("h")); err != nil {
		t.Fatalf("success err: %v", err)
	}
	if !strings.Contains(fp.lastExecSQL, "INSERT INTO auth_limiter") {
		t.Fatalf("unexpected exec: %s", fp.lastExecSQL)
	}
}

func TestFailure_Increments_NoBlock(t *testing.T) {
	fp := &fakePool{qrFailsRet: 2}
	l := NewPG(fp, testPolicy)

	blocked, dur, err := l.Failure(context.Background(), []byte("h"))
	if err != nil || blocked || dur != 0 {
		t.Fatalf("Failure no block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	if fp.lastExecSQL != "" {
		t.Fatalf("no block expected, exec=%s", fp.lastExecSQL)
	}
}

func TestFailure_BlocksAtThreshold(t *testing.T) {
	fp := &fakePool{qrFailsRet: 5}
	l := NewPG(fp, testPolicy)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	blocked, dur, err := l.Failure(context.Background(), []byte("h"))
	if err != nil || !blocked || dur != 10*time.Minute {
		t.Fatalf("Failure block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	if !strings.Contains(fp.lastExecSQL, "UPDATE auth_limiter SET blocked_until") {
		t.Fatalf("must update blocked_until, exec=%s", fp.lastExecSQL)
	}
	if got := fp.lastExecArgs[1].(time.Time); !got.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("blocked_until=%v", got)
	}
}

func TestFailure_DBErrorOnReturning(t *testing.T) {
	fp := &fakePool{qrErr: errors.New("query error")}
	l := NewPG(fp, testPolicy)

	if _, _, err := l.Failure(context.Background(), []byte("h")); err == nil {
		t.Fatalf("want error from returning fail_count")
	}
}

func TestHashIP_Determinism(t *testing.T) {
	a := HashIP("1.2.3.4")
	b := HashIP("1.2.3.4")
	c := HashIP("5.6.7.8")
	if string(a) != string(b) || string(a) == string(c) || len(a) != 32 {
		t.Fatalf("hash mismatch/len: %d", len(a))
	}
}

func TestNewIPHasher(t *testing.T) {
	plain, err := NewIPHasher(nil)
	if err != nil {
		t.Fatalf("NewIPHasher(nil): %v", err)
	}
	if string(plain("1.2.3.4")) != string(HashIP("1.2.3.4")) {
		t.Fatalf("empty key must match HashIP")
	}

	keyed, err := NewIPHasher([]byte("server-secret"))
	if err != nil {
		t.Fatalf("NewIPHasher: %v", err)
	}
	a, b := keyed("1.2.3.4"), keyed("1.2.3.4")
	if string(a) != string(b) || len(a) != 32 {
		t.Fatalf("keyed hash must be stable 32 bytes, len=%d", len(a))
	}
	if string(a) == string(HashIP("1.2.3.4")) {
		t.Fatalf("keyed hash must differ from unkeyed")
	}

	if _, err := NewIPHasher(make([]byte, 65)); err == nil {
		t.Fatalf("want error for key longer than 64 bytes")
	}
}
