package service

import (
	"context"
	"sync"
	"time"

	"aerolabel/pkg/logger"
)

// Sweeper periodically drops expired leases. It only reclaims memory;
// every lease operation checks expiry itself.
type Sweeper struct {
	locks    LockService
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewSweeper(locks LockService, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		locks:    locks,
		interval: interval,
		log:      log,
	}
}

func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})

	s.wg.Add(1)
	go s.run(s.stopCh)

	s.log.Info("Lease sweeper started", "interval", s.interval)
}

func (s *Sweeper) run(stopCh <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.locks.Sweep(context.Background())
		case <-stopCh:
			return
		}
	}
}

// Stop halts the sweeper and waits for an in-flight sweep to finish. Safe to call twice.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("Lease sweeper stopped")
}
