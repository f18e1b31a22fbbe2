package repokit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type pingSpy struct {
	ctx context.Context
	err error
}

func (p *pingSpy) Ping(ctx context.Context) error {
	p.ctx = ctx
	return p.err
}

// mustPanicContaining asserts fn panics and the message mentions wantSub
func mustPanicContaining(t *testing.T, wantSub string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, wantSub) {
			t.Fatalf("panic = %q, want it to contain %q", msg, wantSub)
		}
	}()
	fn()
}

func TestMustPingPanicsOnNilDependency(t *testing.T) {
	t.Parallel()

	mustPanicContaining(t, "pg: nil dependency", func() {
		MustPing(context.Background(), "pg", nil)
	})
}

func TestMustPingAddsDefaultDeadline(t *testing.T) {
	t.Parallel()

	spy := &pingSpy{}
	start := time.Now()
	MustPing(context.Background(), "pg", spy)

	dl, ok := spy.ctx.Deadline()
	if !ok {
		t.Fatalf("ping context has no deadline")
	}
	if d := dl.Sub(start); d < 4*time.Second || d > 6*time.Second {
		t.Fatalf("default deadline = %v from start, want about 5s", d)
	}
}

func TestMustPingKeepsCallerDeadline(t *testing.T) {
	t.Parallel()

	spy := &pingSpy{}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	MustPing(ctx, "pg", spy)

	want, _ := ctx.Deadline()
	got, ok := spy.ctx.Deadline()
	if !ok || !got.Equal(want) {
		t.Fatalf("ping deadline = %v, want the caller's %v", got, want)
	}
}

func TestMustPingPanicsOnPingError(t *testing.T) {
	t.Parallel()

	spy := &pingSpy{err: errors.New("connection refused")}
	mustPanicContaining(t, "pg ping failed: connection refused", func() {
		MustPing(context.Background(), "pg", spy)
	})
}

type guardStub struct{ err error }

func (g guardStub) Guard(context.Context) error { return g.err }

func TestMustGuard(t *testing.T) {
	t.Parallel()

	MustGuard(context.Background(), guardStub{}) // healthy store boots

	mustPanicContaining(t, "dependency guard failed: pg down", func() {
		MustGuard(context.Background(), guardStub{err: errors.New("pg down")})
	})
}
