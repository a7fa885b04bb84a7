// Package lease holds the in-memory table of active resource leases.
//
// The table is split into shards, each guarded by its own mutex, so operations on
// unrelated resources only contend when their IDs hash to the same shard. Expiry is
// evaluated on every operation; an entry whose ExpiresAt is not after now is treated
// as absent whether or not Sweep has removed it yet.
package lease

import (
	"sync"
	"time"

	lockerrors "aerolabel/internal/locks/errors"
	"aerolabel/pkg/model"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is used when NewStore is given a non-positive shard count.
const DefaultShards = 64

type shard struct {
	mu     sync.Mutex
	leases map[string]*model.ResourceLease
}

// Store is the sharded lease table. It is safe for concurrent use.
type Store struct {
	shards []*shard
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty table with shardCount shards.
func NewStore(shardCount int, opts ...Option) *Store {
	if shardCount <= 0 {
		shardCount = DefaultShards
	}

	s := &Store{
		shards: make([]*shard, shardCount),
		now:    time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{leases: make(map[string]*model.ResourceLease)}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) shardFor(resourceID string) *shard {
	return s.shards[xxhash.Sum64String(resourceID)%uint64(len(s.shards))]
}

// Acquire grants resourceID to holderID for ttl. A live lease held by the same
// holder is refreshed and refreshed is true; a live lease held by anyone else
// yields a *lockerrors.ConflictError.
func (s *Store) Acquire(resourceID, holderID string, ttl time.Duration) (lease *model.ResourceLease, refreshed bool, err error) {
	sh := s.shardFor(resourceID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := s.now()
	if current, ok := sh.leases[resourceID]; ok && !current.Expired(now) {
		if current.HolderID != holderID {
			return nil, false, &lockerrors.ConflictError{
				ResourceID: resourceID,
				Holder:     current.HolderID,
				ExpiresAt:  current.ExpiresAt,
			}
		}
		current.ExpiresAt = now.Add(ttl)
		snapshot := *current
		return &snapshot, true, nil
	}

	created := &model.ResourceLease{
		ResourceID: resourceID,
		HolderID:   holderID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	sh.leases[resourceID] = created
	snapshot := *created
	return &snapshot, false, nil
}

// Heartbeat extends the caller's live lease to now+ttl. A lapsed lease is never
// revived: the stale entry is dropped and ErrExpired returned to its former holder.
func (s *Store) Heartbeat(resourceID, holderID string, ttl time.Duration) (*model.ResourceLease, error) {
	sh := s.shardFor(resourceID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.leases[resourceID]
	if !ok {
		return nil, lockerrors.ErrNotOwned
	}

	now := s.now()
	if current.Expired(now) {
		delete(sh.leases, resourceID)
		if current.HolderID == holderID {
			return nil, lockerrors.ErrExpired
		}
		return nil, lockerrors.ErrNotOwned
	}
	if current.HolderID != holderID {
		return nil, lockerrors.ErrNotOwned
	}

	current.ExpiresAt = now.Add(ttl)
	snapshot := *current
	return &snapshot, nil
}

// Release drops the caller's lease. Releasing an absent or lapsed lease is a no-op
// reported as released=false; a live lease held by someone else is ErrNotOwned.
func (s *Store) Release(resourceID, holderID string) (bool, error) {
	sh := s.shardFor(resourceID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.leases[resourceID]
	if !ok {
		return false, nil
	}
	if current.Expired(s.now()) {
		delete(sh.leases, resourceID)
		return false, nil
	}
	if current.HolderID != holderID {
		return false, lockerrors.ErrNotOwned
	}

	delete(sh.leases, resourceID)
	return true, nil
}

// ReleaseAll drops every lease recorded for holderID, one shard at a time.
// Lapsed entries are removed too but only live ones are counted.
func (s *Store) ReleaseAll(holderID string) int {
	released := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		now := s.now()
		for id, l := range sh.leases {
			if l.HolderID != holderID {
				continue
			}
			if !l.Expired(now) {
				released++
			}
			delete(sh.leases, id)
		}
		sh.mu.Unlock()
	}
	return released
}

// Sweep removes every lease that has expired at now and returns how many were dropped.
func (s *Store) Sweep(now time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, l := range sh.leases {
			if l.Expired(now) {
				delete(sh.leases, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Get returns a copy of the live lease on resourceID.
func (s *Store) Get(resourceID string) (*model.ResourceLease, bool) {
	sh := s.shardFor(resourceID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.leases[resourceID]
	if !ok || current.Expired(s.now()) {
		return nil, false
	}
	snapshot := *current
	return &snapshot, true
}

// Count returns the number of live leases. It is not a point-in-time snapshot across shards.
func (s *Store) Count() int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		now := s.now()
		for _, l := range sh.leases {
			if !l.Expired(now) {
				count++
			}
		}
		sh.mu.Unlock()
	}
	return count
}
