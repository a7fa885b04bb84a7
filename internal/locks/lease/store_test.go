package lease

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	lockerrors "aerolabel/internal/locks/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const ttl = 10 * time.Minute

func newTestStore() (*Store, *fakeClock) {
	clock := newFakeClock()
	return NewStore(8, WithClock(clock.Now)), clock
}

func TestAcquire_GrantsFreeResource(t *testing.T) {
	s, clock := newTestStore()

	l, refreshed, err := s.Acquire("img_001.jpg", "alice", ttl)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if refreshed {
		t.Error("first acquire should not be reported as refresh")
	}
	if l.HolderID != "alice" || !l.ExpiresAt.Equal(clock.Now().Add(ttl)) {
		t.Errorf("unexpected lease: %+v", l)
	}
}

func TestAcquire_ConflictReportsHolder(t *testing.T) {
	s, _ := newTestStore()
	first, _, _ := s.Acquire("img_001.jpg", "alice", ttl)

	_, _, err := s.Acquire("img_001.jpg", "bob", ttl)

	var conflict *lockerrors.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Holder != "alice" || !conflict.ExpiresAt.Equal(first.ExpiresAt) {
		t.Errorf("conflict = %+v", conflict)
	}
}

func TestAcquire_SameHolderRefreshes(t *testing.T) {
	s, clock := newTestStore()
	first, _, _ := s.Acquire("img_001.jpg", "alice", ttl)

	clock.Advance(4 * time.Minute)
	again, refreshed, err := s.Acquire("img_001.jpg", "alice", ttl)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !refreshed {
		t.Error("expected refresh")
	}
	if !again.AcquiredAt.Equal(first.AcquiredAt) {
		t.Error("refresh must keep the original acquisition time")
	}
	if !again.ExpiresAt.Equal(clock.Now().Add(ttl)) {
		t.Errorf("ExpiresAt = %v, want %v", again.ExpiresAt, clock.Now().Add(ttl))
	}
}

func TestAcquire_AfterExpiryOtherHolderSucceeds(t *testing.T) {
	s, clock := newTestStore()
	_, _, _ = s.Acquire("img_001.jpg", "alice", ttl)

	clock.Advance(ttl)

	l, _, err := s.Acquire("img_001.jpg", "bob", ttl)
	if err != nil {
		t.Fatalf("expected bob to acquire after expiry, got %v", err)
	}
	if l.HolderID != "bob" {
		t.Errorf("holder = %s", l.HolderID)
	}
}

func TestHeartbeat(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *Store, c *fakeClock)
		holder  string
		wantErr error
	}{
		{
			name:    "no lease",
			setup:   func(*Store, *fakeClock) {},
			holder:  "alice",
			wantErr: lockerrors.ErrNotOwned,
		},
		{
			name: "current holder before expiry",
			setup: func(s *Store, c *fakeClock) {
				_, _, _ = s.Acquire("r", "alice", ttl)
				c.Advance(ttl - time.Second)
			},
			holder: "alice",
		},
		{
			name: "non-holder",
			setup: func(s *Store, c *fakeClock) {
				_, _, _ = s.Acquire("r", "alice", ttl)
			},
			holder:  "bob",
			wantErr: lockerrors.ErrNotOwned,
		},
		{
			name: "previous holder after expiry",
			setup: func(s *Store, c *fakeClock) {
				_, _, _ = s.Acquire("r", "alice", ttl)
				c.Advance(ttl)
			},
			holder:  "alice",
			wantErr: lockerrors.ErrExpired,
		},
		{
			name: "other holder after expiry",
			setup: func(s *Store, c *fakeClock) {
				_, _, _ = s.Acquire("r", "alice", ttl)
				c.Advance(ttl + time.Minute)
			},
			holder:  "bob",
			wantErr: lockerrors.ErrNotOwned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clock := newTestStore()
			tt.setup(s, clock)

			l, err := s.Heartbeat("r", tt.holder, ttl)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Heartbeat() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !l.ExpiresAt.Equal(clock.Now().Add(ttl)) {
				t.Errorf("ExpiresAt = %v, want %v", l.ExpiresAt, clock.Now().Add(ttl))
			}
		})
	}
}

func TestHeartbeat_ExpiredLeaseIsNotResurrected(t *testing.T) {
	s, clock := newTestStore()
	_, _, _ = s.Acquire("r", "alice", ttl)
	clock.Advance(ttl + time.Second)

	if _, err := s.Heartbeat("r", "alice", ttl); !errors.Is(err, lockerrors.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if _, ok := s.Get("r"); ok {
		t.Error("expired lease must stay gone after a failed heartbeat")
	}
	if _, err := s.Heartbeat("r", "alice", ttl); !errors.Is(err, lockerrors.ErrNotOwned) {
		t.Errorf("second heartbeat should see no lease, got %v", err)
	}
}

func TestRelease(t *testing.T) {
	s, clock := newTestStore()
	_, _, _ = s.Acquire("r", "alice", ttl)

	if _, err := s.Release("r", "bob"); !errors.Is(err, lockerrors.ErrNotOwned) {
		t.Errorf("release by non-holder: got %v", err)
	}

	released, err := s.Release("r", "alice")
	if err != nil || !released {
		t.Fatalf("Release() = %v, %v", released, err)
	}

	released, err = s.Release("r", "alice")
	if err != nil || released {
		t.Errorf("second release should be a no-op, got %v, %v", released, err)
	}

	_, _, _ = s.Acquire("r2", "alice", ttl)
	clock.Advance(ttl)
	released, err = s.Release("r2", "bob")
	if err != nil || released {
		t.Errorf("releasing an expired lease should be a no-op, got %v, %v", released, err)
	}
}

func TestReleaseAll(t *testing.T) {
	s, _ := newTestStore()
	for i := 0; i < 20; i++ {
		_, _, _ = s.Acquire(fmt.Sprintf("img_%03d.jpg", i), "alice", ttl)
	}
	_, _, _ = s.Acquire("other.jpg", "bob", ttl)

	if got := s.ReleaseAll("alice"); got != 20 {
		t.Errorf("ReleaseAll() = %d, want 20", got)
	}
	if got := s.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
	if _, ok := s.Get("other.jpg"); !ok {
		t.Error("bob's lease must survive alice's release-all")
	}
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore()
	_, _, _ = s.Acquire("short", "alice", time.Minute)
	_, _, _ = s.Acquire("long", "bob", ttl)

	clock.Advance(2 * time.Minute)

	if got := s.Sweep(clock.Now()); got != 1 {
		t.Errorf("Sweep() = %d, want 1", got)
	}
	if _, ok := s.Get("long"); !ok {
		t.Error("live lease was swept")
	}
	if got := s.Sweep(clock.Now()); got != 0 {
		t.Errorf("second Sweep() = %d, want 0", got)
	}
}

func TestNewStore_DefaultShards(t *testing.T) {
	s := NewStore(0)
	if len(s.shards) != DefaultShards {
		t.Errorf("shards = %d, want %d", len(s.shards), DefaultShards)
	}
}

// At most one holder may win a resource while no lease expires.
func TestAcquire_ConcurrentAtMostOneHolder(t *testing.T) {
	s, _ := newTestStore()

	resources := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}
	holders := []string{"alice", "bob", "carol", "dave", "erin", "frank"}

	var mu sync.Mutex
	winners := make(map[string]map[string]bool)
	for _, r := range resources {
		winners[r] = make(map[string]bool)
	}

	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				r := resources[rng.Intn(len(resources))]
				h := holders[rng.Intn(len(holders))]
				if l, _, err := s.Acquire(r, h, ttl); err == nil {
					mu.Lock()
					winners[r][l.HolderID] = true
					mu.Unlock()
				}
			}
		}(int64(g))
	}
	wg.Wait()

	for r, ws := range winners {
		if len(ws) != 1 {
			t.Errorf("resource %s granted to %d holders: %v", r, len(ws), ws)
		}
	}
}

// Once a lease lapses, exactly one of many concurrent contenders takes it over.
func TestAcquire_ConcurrentTakeoverAfterExpiry(t *testing.T) {
	s, clock := newTestStore()
	_, _, _ = s.Acquire("img_001.jpg", "alice", ttl)
	clock.Advance(ttl + time.Second)

	const contenders = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts []string
	)
	start := make(chan struct{})
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(holder string) {
			defer wg.Done()
			<-start
			_, _, err := s.Acquire("img_001.jpg", holder, ttl)
			mu.Lock()
			defer mu.Unlock()
			var conflict *lockerrors.ConflictError
			switch {
			case err == nil:
				winners = append(winners, holder)
			case errors.As(err, &conflict):
				conflicts = append(conflicts, conflict.Holder)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(fmt.Sprintf("holder-%02d", i))
	}
	close(start)
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("winners = %v, want exactly one", winners)
	}
	for _, h := range conflicts {
		if h != winners[0] {
			t.Errorf("conflict reported holder %s, want %s", h, winners[0])
		}
	}
}
