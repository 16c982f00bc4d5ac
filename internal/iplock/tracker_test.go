package iplock

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{
		MaxFailures:   3,
		LockDuration:  30 * time.Minute,
		FailureWindow: 10 * time.Minute,
	}
}

func TestEvaluate_UnknownAddressAllowed(t *testing.T) {
	tracker := NewTracker(testPolicy())
	decision := tracker.Evaluate("203.0.113.10", time.Now())
	assert.True(t, decision.Allowed)
}

func TestRecordFailure_ThresholdLocksAddress(t *testing.T) {
	tracker := NewTracker(testPolicy())
	now := time.Now()

	tracker.RecordFailure("203.0.113.10", now)
	tracker.RecordFailure("203.0.113.10", now)
	assert.True(t, tracker.Evaluate("203.0.113.10", now).Allowed)

	tracker.RecordFailure("203.0.113.10", now)
	decision := tracker.Evaluate("203.0.113.10", now)
	require.False(t, decision.Allowed)
	assert.Equal(t, now.Add(30*time.Minute), decision.LockedUntil)
}

func TestRecordFailure_AddressesAreIndependent(t *testing.T) {
	tracker := NewTracker(testPolicy())
	now := time.Now()

	for i := 0; i < 3; i++ {
		tracker.RecordFailure("203.0.113.10", now)
	}

	assert.False(t, tracker.Evaluate("203.0.113.10", now).Allowed)
	assert.True(t, tracker.Evaluate("203.0.113.11", now).Allowed)
}

func TestRecordFailure_WindowResetsCount(t *testing.T) {
	tracker := NewTracker(testPolicy())
	start := time.Now()

	tracker.RecordFailure("203.0.113.10", start)
	tracker.RecordFailure("203.0.113.10", start)

	// Two more failures well past the window: the old burst no longer counts.
	later := start.Add(11 * time.Minute)
	tracker.RecordFailure("203.0.113.10", later)
	tracker.RecordFailure("203.0.113.10", later)

	assert.True(t, tracker.Evaluate("203.0.113.10", later).Allowed)
}

func TestEvaluate_ExpiredLockAllowed(t *testing.T) {
	tracker := NewTracker(testPolicy())
	start := time.Now()

	for i := 0; i < 3; i++ {
		tracker.RecordFailure("203.0.113.10", start)
	}
	require.False(t, tracker.Evaluate("203.0.113.10", start).Allowed)

	afterExpiry := start.Add(31 * time.Minute)
	assert.True(t, tracker.Evaluate("203.0.113.10", afterExpiry).Allowed)
}

func TestClear_TargetedAddress(t *testing.T) {
	tracker := NewTracker(testPolicy())
	now := time.Now()

	for i := 0; i < 3; i++ {
		tracker.RecordFailure("203.0.113.10", now)
	}
	require.False(t, tracker.Evaluate("203.0.113.10", now).Allowed)

	assert.True(t, tracker.Clear("203.0.113.10"))
	assert.True(t, tracker.Evaluate("203.0.113.10", now).Allowed)
	assert.False(t, tracker.Clear("203.0.113.10"), "second clear finds nothing")
}

func TestClearAll_RemovesEveryRecord(t *testing.T) {
	tracker := NewTracker(testPolicy())
	now := time.Now()

	for i := 0; i < 10; i++ {
		addr := fmt.Sprintf("203.0.113.%d", i)
		for j := 0; j < 3; j++ {
			tracker.RecordFailure(addr, now)
		}
	}
	assert.Equal(t, 10, tracker.ActiveLockCount(now))

	removed := tracker.ClearAll()
	assert.Equal(t, 10, removed)
	assert.Equal(t, 0, tracker.ActiveLockCount(now))
	assert.True(t, tracker.Evaluate("203.0.113.3", now).Allowed)
}

func TestSweep_EvictsExpiredEntriesOnly(t *testing.T) {
	tracker := NewTracker(testPolicy())
	start := time.Now()

	for i := 0; i < 3; i++ {
		tracker.RecordFailure("203.0.113.10", start)
	}
	tracker.RecordFailure("203.0.113.11", start)

	// Nothing has expired yet.
	assert.Equal(t, 0, tracker.Sweep(start))

	// Lock and window both long gone.
	later := start.Add(2 * time.Hour)
	assert.Equal(t, 2, tracker.Sweep(later))
	assert.True(t, tracker.Evaluate("203.0.113.10", later).Allowed)
}

func TestRecordFailure_ConcurrentAddresses(t *testing.T) {
	tracker := NewTracker(Policy{MaxFailures: 100, LockDuration: time.Hour, FailureWindow: time.Hour})
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		addr := fmt.Sprintf("198.51.100.%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.RecordFailure(addr, now)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		addr := fmt.Sprintf("198.51.100.%d", i)
		decision := tracker.Evaluate(addr, now)
		assert.False(t, decision.Allowed, "%s should have exactly reached the threshold", addr)
	}
}
