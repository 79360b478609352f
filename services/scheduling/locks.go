package scheduling

import "sync"

// entityLocks serializes detect-then-write sequences per entity key
// (participant id or resource key), so two concurrent submissions touching
// the same room or person cannot both pass detection before either commits.
// Keys must be acquired in sorted order; Booking.EntityKeys guarantees that,
// which keeps multi-entity bookings deadlock-free.
type entityLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *entityLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// acquire locks every key in the given (already sorted) order and returns a
// release function unlocking them in reverse.
func (l *entityLocks) acquire(keys []string) func() {
	held := make([]*sync.Mutex, 0, len(keys))
	for _, k := range keys {
		m := l.get(k)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
