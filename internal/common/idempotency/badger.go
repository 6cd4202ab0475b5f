package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	badgerPending   byte = 'p'
	badgerProcessed byte = 'd'
)

// badgerTracker keeps claims on local disk so a restarted instance still
// recognises what it already applied. Pending claims carry the claim TTL and
// disappear on their own when the apply never finished.
type badgerTracker struct {
	db       *badger.DB
	prefix   string
	claimTTL time.Duration
	ttl      time.Duration
}

func NewBadgerTracker(pathDB, prefix string, claimTTL, ttl time.Duration) (Tracker, error) {
	opts := badger.DefaultOptions(pathDB)
	opts.Logger = nil
	return openBadgerTracker(opts, prefix, claimTTL, ttl)
}

func openBadgerTracker(opts badger.Options, prefix string, claimTTL, ttl time.Duration) (Tracker, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open idempotency store: %w", err)
	}
	return &badgerTracker{db: db, prefix: prefix, claimTTL: claimTTL, ttl: ttlOrZero(ttl)}, nil
}

func (t *badgerTracker) Claim(_ context.Context, id string) (Claim, error) {
	key := []byte(buildKey(t.prefix, id))
	claim := ClaimAcquired

	err := t.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			claim = ClaimInFlight
			return item.Value(func(val []byte) error {
				if len(val) == 1 && val[0] == badgerProcessed {
					claim = ClaimProcessed
				}
				return nil
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.SetEntry(badger.NewEntry(key, []byte{badgerPending}).WithTTL(t.claimTTL))
	})
	if errors.Is(err, badger.ErrConflict) {
		// a concurrent transaction claimed the same id first
		return ClaimInFlight, nil
	}
	if err != nil {
		return ClaimInFlight, fmt.Errorf("failed to claim transaction %s: %w", id, err)
	}
	return claim, nil
}

func (t *badgerTracker) Confirm(_ context.Context, id string) error {
	err := t.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(buildKey(t.prefix, id)), []byte{badgerProcessed})
		if t.ttl > 0 {
			entry = entry.WithTTL(t.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to confirm transaction %s: %w", id, err)
	}
	return nil
}

// Release only drops a pending claim, a processed id stays.
func (t *badgerTracker) Release(_ context.Context, id string) error {
	key := []byte(buildKey(t.prefix, id))
	err := t.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		processed := false
		if err := item.Value(func(val []byte) error {
			processed = len(val) == 1 && val[0] == badgerProcessed
			return nil
		}); err != nil {
			return err
		}
		if processed {
			return nil
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("failed to release transaction %s: %w", id, err)
	}
	return nil
}

func (t *badgerTracker) Close() error {
	return t.db.Close()
}
