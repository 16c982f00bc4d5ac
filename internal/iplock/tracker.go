// Package iplock throttles authentication attempts per source address,
// independently of the account-scoped lockout. State is an in-process keyed
// map from address to lock record; the scope exists to catch one origin
// sweeping many accounts, which the per-account counter never sees.
package iplock

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 64

// Policy holds the source-address lock constants. The failure window bounds
// how long old failures stay relevant; a burst of MaxFailures failures inside
// the window trips the lock.
type Policy struct {
	MaxFailures   int
	LockDuration  time.Duration
	FailureWindow time.Duration
}

// DefaultPolicy allows more slack than the account policy: one address may
// legitimately front many users (office NAT, mobile carrier).
func DefaultPolicy() Policy {
	return Policy{
		MaxFailures:   20,
		LockDuration:  30 * time.Minute,
		FailureWindow: 10 * time.Minute,
	}
}

// Decision is the outcome of evaluating an address.
type Decision struct {
	Allowed     bool
	LockedUntil time.Time // zero unless !Allowed
}

type entry struct {
	failureCount int
	windowStart  time.Time
	lockedUntil  time.Time // zero when not locked
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Tracker is the process-wide source-address lock table. Addresses hash onto
// independent shards so distinct origins do not contend on one mutex.
type Tracker struct {
	policy Policy
	shards [shardCount]*shard
}

// NewTracker creates a Tracker with the given policy.
func NewTracker(policy Policy) *Tracker {
	t := &Tracker{policy: policy}
	for i := range t.shards {
		t.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return t
}

func (t *Tracker) shardFor(address string) *shard {
	h := fnv.New32a()
	h.Write([]byte(address))
	return t.shards[h.Sum32()%shardCount]
}

// Evaluate reports whether attempts from address are currently allowed.
// Expired locks are treated as gone, never refused on.
func (t *Tracker) Evaluate(address string, now time.Time) Decision {
	s := t.shardFor(address)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[address]
	if !ok {
		return Decision{Allowed: true}
	}
	if !e.lockedUntil.IsZero() && !e.lockedUntil.Before(now) {
		return Decision{Allowed: false, LockedUntil: e.lockedUntil}
	}
	return Decision{Allowed: true}
}

// RecordFailure counts a failed attempt from address. Entries are created
// lazily on the first failure. When the windowed count reaches the threshold
// and no active lock exists, the address is locked; an active lock is never
// extended (the address was refused before any verify, so this only fires on
// the crossing failure).
func (t *Tracker) RecordFailure(address string, now time.Time) {
	s := t.shardFor(address)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[address]
	if !ok {
		e = &entry{windowStart: now}
		s.entries[address] = e
	}

	if now.Sub(e.windowStart) > t.policy.FailureWindow {
		e.failureCount = 0
		e.windowStart = now
	}
	e.failureCount++

	if e.failureCount >= t.policy.MaxFailures {
		if e.lockedUntil.IsZero() || e.lockedUntil.Before(now) {
			e.lockedUntil = now.Add(t.policy.LockDuration)
		}
	}
}

// Clear removes the lock record for one address. Returns whether a record
// existed.
func (t *Tracker) Clear(address string) bool {
	s := t.shardFor(address)
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[address]
	delete(s.entries, address)
	return ok
}

// ClearAll drops every lock record and returns how many were removed. This is
// the operator escape hatch: it removes a security control for all origins at
// once, so callers must audit it.
func (t *Tracker) ClearAll() int {
	removed := 0
	for _, s := range t.shards {
		s.mu.Lock()
		removed += len(s.entries)
		s.entries = make(map[string]*entry)
		s.mu.Unlock()
	}
	return removed
}

// Sweep evicts entries whose lock and failure window have both expired.
// Returns the number of evicted entries. Called by the background cleanup
// manager.
func (t *Tracker) Sweep(now time.Time) int {
	evicted := 0
	for _, s := range t.shards {
		s.mu.Lock()
		for addr, e := range s.entries {
			lockExpired := e.lockedUntil.IsZero() || e.lockedUntil.Before(now)
			windowExpired := now.Sub(e.windowStart) > t.policy.FailureWindow
			if lockExpired && windowExpired {
				delete(s.entries, addr)
				evicted++
			}
		}
		s.mu.Unlock()
	}
	return evicted
}

// ActiveLockCount returns how many addresses are currently locked.
func (t *Tracker) ActiveLockCount(now time.Time) int {
	locked := 0
	for _, s := range t.shards {
		s.mu.Lock()
		for _, e := range s.entries {
			if !e.lockedUntil.IsZero() && !e.lockedUntil.Before(now) {
				locked++
			}
		}
		s.mu.Unlock()
	}
	return locked
}
