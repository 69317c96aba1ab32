package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFixed_Now(t *testing.T) {
	at := time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC)
	c := Fixed(at)
	if !c.Now().Equal(at) {
		t.Errorf("expected %v, got %v", at, c.Now())
	}
}

func TestRefresher_SeedsAndRefreshes(t *testing.T) {
	base := time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC)
	var calls int64
	src := Func(func() time.Time {
		n := atomic.AddInt64(&calls, 1)
		return base.Add(time.Duration(n-1) * time.Minute)
	})

	r := NewRefresher(src, time.Minute)
	if !r.Now().Equal(base) {
		t.Fatalf("expected seeded time %v, got %v", base, r.Now())
	}

	r.Refresh()
	if want := base.Add(time.Minute); !r.Now().Equal(want) {
		t.Errorf("expected %v after refresh, got %v", want, r.Now())
	}
}

func TestRefresher_RunStopsOnCancel(t *testing.T) {
	r := NewRefresher(System{}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRefresher_DefaultInterval(t *testing.T) {
	r := NewRefresher(nil, 0)
	if r.interval != time.Minute {
		t.Errorf("expected default interval 1m, got %v", r.interval)
	}
}
