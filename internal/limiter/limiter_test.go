package limiter

import (
	"fmt"
	"testing"
	"time"
)

const (
	testWindow = 15 * time.Minute
	testMax    = 10
	testGrace  = 15 * time.Minute
)

func TestWindowQuota(t *testing.T) {
	store := NewMemoryStore(testWindow, testMax, testGrace)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	for i := 0; i < testMax; i++ {
		res := store.CompareAndIncrement("1.2.3.4", now)
		if !res.Allowed {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
		if res.Remaining != testMax-i-1 {
			t.Errorf("request %d: remaining = %d, want %d", i+1, res.Remaining, testMax-i-1)
		}
		if res.Limit != testMax {
			t.Errorf("limit = %d, want %d", res.Limit, testMax)
		}
	}

	res := store.CompareAndIncrement("1.2.3.4", now)
	if res.Allowed {
		t.Fatal("11th request allowed, want rejected")
	}
	if res.RetryAfter != testWindow {
		t.Errorf("retryAfter = %v, want full window %v", res.RetryAfter, testWindow)
	}

	// Rejection must not consume quota.
	rec, ok := store.Get("1.2.3.4", now)
	if !ok || rec.Count != testMax {
		t.Errorf("count after rejection = %d (ok=%v), want %d", rec.Count, ok, testMax)
	}
}

func TestWindowReset(t *testing.T) {
	store := NewMemoryStore(testWindow, testMax, testGrace)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	for i := 0; i < testMax; i++ {
		store.CompareAndIncrement("caller", now)
	}
	if store.CompareAndIncrement("caller", now).Allowed {
		t.Fatal("over-quota request allowed")
	}

	later := now.Add(testWindow)
	res := store.CompareAndIncrement("caller", later)
	if !res.Allowed {
		t.Fatal("request after window elapsed rejected")
	}
	if res.Remaining != testMax-1 {
		t.Errorf("remaining after reset = %d, want %d", res.Remaining, testMax-1)
	}
}

func TestCallersAreIndependent(t *testing.T) {
	store := NewMemoryStore(testWindow, testMax, testGrace)
	now := time.Now()

	for i := 0; i < testMax; i++ {
		store.CompareAndIncrement("a", now)
	}
	if store.CompareAndIncrement("a", now).Allowed {
		t.Error("caller a over quota but allowed")
	}
	if !store.CompareAndIncrement("b", now).Allowed {
		t.Error("caller b rejected on first request")
	}
}

func TestRetryAfterRoundsUpToMinute(t *testing.T) {
	store := NewMemoryStore(testWindow, 1, testGrace)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	store.CompareAndIncrement("caller", now)

	cases := []struct {
		advance time.Duration
		want    time.Duration
	}{
		{0, 15 * time.Minute},
		{61 * time.Second, 14 * time.Minute},
		{14*time.Minute + 1*time.Second, 1 * time.Minute},
		{14*time.Minute + 59*time.Second, 1 * time.Minute},
	}
	for _, c := range cases {
		res := store.CompareAndIncrement("caller", now.Add(c.advance))
		if res.Allowed {
			t.Fatalf("advance %v: allowed, want rejected", c.advance)
		}
		if res.RetryAfter != c.want {
			t.Errorf("advance %v: retryAfter = %v, want %v", c.advance, res.RetryAfter, c.want)
		}
	}
}

func TestSweepExpired(t *testing.T) {
	store := NewMemoryStore(testWindow, testMax, testGrace)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		store.CompareAndIncrement(fmt.Sprintf("caller-%d", i), now)
	}
	if store.Len() != 5 {
		t.Fatalf("len = %d, want 5", store.Len())
	}

	if removed := store.SweepExpired(now.Add(testWindow)); removed != 0 {
		t.Errorf("swept %d records still inside the grace period", removed)
	}

	removed := store.SweepExpired(now.Add(testWindow + testGrace + time.Second))
	if removed != 5 {
		t.Errorf("swept %d records, want 5", removed)
	}
	if store.Len() != 0 {
		t.Errorf("len after sweep = %d, want 0", store.Len())
	}
}

func TestCeilToMinute(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Second, time.Minute},
		{time.Minute, time.Minute},
		{time.Minute + time.Millisecond, 2 * time.Minute},
		{14*time.Minute + 59*time.Second, 15 * time.Minute},
	}
	for _, c := range cases {
		if got := ceilToMinute(c.in); got != c.want {
			t.Errorf("ceilToMinute(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
