package reservation

import (
	"sync"
	"time"

	"github.com/harvicreates/inventory/protocols"
)

// Store holds the temporary stock holds taken during checkout, keyed by
// product. Expired holds are purged lazily whenever a product's holds are
// read; on top of that, ScheduleRelease arms a one-shot timer that releases
// a whole session after the timeout. The timer handle is kept so an explicit
// release or a confirmed purchase can cancel it.
type Store struct {
	mu      sync.Mutex
	clock   protocols.Clock
	timeout time.Duration
	holds   map[string][]Reservation
	timers  map[string]protocols.Timer
}

func NewStore(timeout time.Duration, clock protocols.Clock) *Store {
	return &Store{
		clock:   clock,
		timeout: timeout,
		holds:   make(map[string][]Reservation),
		timers:  make(map[string]protocols.Timer),
	}
}

func (s *Store) Timeout() time.Duration {
	return s.timeout
}

// Add records one hold for the given session and returns it.
func (s *Store) Add(productID string, quantity int32, sessionID string) Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Reservation{
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: s.clock.Now(),
		SessionID: sessionID,
	}
	s.holds[productID] = append(s.holds[productID], r)
	return r
}

// Reserved returns the total quantity held for a product, dropping holds
// whose timeout has elapsed as a side effect of the read.
func (s *Store) Reserved(productID string) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked(productID, s.clock.Now())

	var total int32
	for _, r := range s.holds[productID] {
		total += r.Quantity
	}
	return total
}

func (s *Store) purgeLocked(productID string, now time.Time) {
	current := s.holds[productID]
	if len(current) == 0 {
		return
	}
	valid := current[:0]
	for _, r := range current {
		if now.Sub(r.CreatedAt) < s.timeout {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		delete(s.holds, productID)
		return
	}
	s.holds[productID] = valid
}

// ReleaseSession removes every hold belonging to the session and cancels its
// auto-release timer. Releasing an unknown or already-released session is a
// no-op; the released hold count is returned.
func (s *Store) ReleaseSession(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for productID, current := range s.holds {
		kept := current[:0]
		for _, r := range current {
			if r.SessionID == sessionID {
				released++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(s.holds, productID)
		} else {
			s.holds[productID] = kept
		}
	}

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
	return released
}

// ScheduleRelease arms the auto-release for a session and returns when it
// expires. Re-arming replaces the previous timer.
func (s *Store) ScheduleRelease(sessionID string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	s.timers[sessionID] = s.clock.AfterFunc(s.timeout, func() {
		s.ReleaseSession(sessionID)
	})
	return s.clock.Now().Add(s.timeout)
}

// SessionItems returns the live holds of a session, one entry per product.
func (s *Store) SessionItems(sessionID string) []ReservedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var items []ReservedItem
	for _, current := range s.holds {
		for _, r := range current {
			if r.SessionID != sessionID {
				continue
			}
			if now.Sub(r.CreatedAt) >= s.timeout {
				continue
			}
			items = append(items, ReservedItem{ProductID: r.ProductID, Quantity: r.Quantity})
		}
	}
	return items
}

// Status aggregates a session's holds without mutating anything. ExpiresAt
// is the earliest expiry among the session's holds.
func (s *Store) Status(sessionID string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var st Status
	for _, current := range s.holds {
		for _, r := range current {
			if r.SessionID != sessionID {
				continue
			}
			st.ItemCount += r.Quantity
			expiry := r.CreatedAt.Add(s.timeout)
			if st.ExpiresAt.IsZero() || expiry.Before(st.ExpiresAt) {
				st.ExpiresAt = expiry
			}
		}
	}

	st.Exists = st.ItemCount > 0
	if !st.ExpiresAt.IsZero() {
		if remaining := st.ExpiresAt.Sub(now); remaining > 0 {
			st.TimeRemaining = remaining
		}
		st.Expired = !now.Before(st.ExpiresAt)
	}
	return st
}
