package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	processed bool
	expiresAt time.Time
}

// memoryTracker lives as long as the process. Processed entries are never
// evicted, pending ones are taken over once they expire.
type memoryTracker struct {
	entries  sync.Map
	claimTTL time.Duration
	now      func() time.Time
}

func NewMemoryTracker(claimTTL time.Duration) Tracker {
	return &memoryTracker{claimTTL: claimTTL, now: time.Now}
}

func (t *memoryTracker) pending() *memoryEntry {
	return &memoryEntry{expiresAt: t.now().Add(t.claimTTL)}
}

func (t *memoryTracker) Claim(_ context.Context, id string) (Claim, error) {
	for {
		current, loaded := t.entries.LoadOrStore(id, t.pending())
		if !loaded {
			return ClaimAcquired, nil
		}

		entry := current.(*memoryEntry)
		if entry.processed {
			return ClaimProcessed, nil
		}
		if t.now().Before(entry.expiresAt) {
			return ClaimInFlight, nil
		}
		if t.entries.CompareAndSwap(id, entry, t.pending()) {
			return ClaimAcquired, nil
		}
	}
}

func (t *memoryTracker) Confirm(_ context.Context, id string) error {
	t.entries.Store(id, &memoryEntry{processed: true})
	return nil
}

func (t *memoryTracker) Release(_ context.Context, id string) error {
	current, ok := t.entries.Load(id)
	if !ok || current.(*memoryEntry).processed {
		return nil
	}
	t.entries.CompareAndDelete(id, current)
	return nil
}

func (t *memoryTracker) Close() error {
	return nil
}
