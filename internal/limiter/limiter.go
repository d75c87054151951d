package limiter

import (
	"sync"
	"time"
)

// Record is one caller's counter within the current window.
type Record struct {
	Count       int
	WindowReset time.Time
}

// Result reports the outcome of a quota check plus the metadata exposed
// to clients on both success and rejection.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// CounterStore is the fixed-window quota store. CompareAndIncrement must
// be atomic per key with respect to the check-then-increment sequence.
// Implementations may be backed by memory (this package) or an external
// cache.
type CounterStore interface {
	Get(key string, now time.Time) (Record, bool)
	CompareAndIncrement(key string, now time.Time) Result
	SweepExpired(now time.Time) int
	Len() int
}

type memoryStore struct {
	mu         sync.Mutex
	records    map[string]*Record
	window     time.Duration
	max        int
	blockGrace time.Duration
}

func NewMemoryStore(window time.Duration, max int, blockGrace time.Duration) CounterStore {
	return &memoryStore{
		records:    make(map[string]*Record),
		window:     window,
		max:        max,
		blockGrace: blockGrace,
	}
}

func (s *memoryStore) Get(key string, now time.Time) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok || !now.Before(rec.WindowReset) {
		return Record{}, false
	}
	return *rec, true
}

func (s *memoryStore) CompareAndIncrement(key string, now time.Time) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || !now.Before(rec.WindowReset) {
		rec = &Record{Count: 1, WindowReset: now.Add(s.window)}
		s.records[key] = rec
		return Result{
			Allowed:   true,
			Limit:     s.max,
			Remaining: s.max - 1,
			Reset:     rec.WindowReset,
		}
	}

	if rec.Count < s.max {
		rec.Count++
		return Result{
			Allowed:   true,
			Limit:     s.max,
			Remaining: s.max - rec.Count,
			Reset:     rec.WindowReset,
		}
	}

	return Result{
		Allowed:    false,
		Limit:      s.max,
		Remaining:  0,
		Reset:      rec.WindowReset,
		RetryAfter: ceilToMinute(rec.WindowReset.Sub(now)),
	}
}

// SweepExpired purges records older than window + block grace. Purely
// housekeeping: an expired-but-unswept record is treated as fresh on its
// next use.
func (s *memoryStore) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.records {
		if now.After(rec.WindowReset.Add(s.blockGrace)) {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func ceilToMinute(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return (d + time.Minute - 1).Truncate(time.Minute)
}
