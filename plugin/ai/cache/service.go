package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hrygo/acutie/plugin/ai/timeout"
)

// ServiceConfig configures the in-process cache.
type ServiceConfig struct {
	Capacity        int           // default: 1000 sessions
	DefaultTTL      time.Duration // default: timeout.SessionTTL
	CleanupInterval time.Duration // default: 1 minute
}

// Service is the in-process CacheService. A background janitor sweeps
// expired sessions until Close is called.
type Service struct {
	lru *LRUCache

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewService creates an in-process cache and starts its janitor.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1000
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = timeout.SessionTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	s := &Service{
		lru:  NewLRUCache(cfg.Capacity, cfg.DefaultTTL),
		stop: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.janitor(cfg.CleanupInterval)
	return s
}

// Close stops the janitor. It is safe to call more than once.
func (s *Service) Close() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Service) Get(_ context.Context, key string) ([]byte, bool) {
	return s.lru.Get(key)
}

func (s *Service) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.lru.Set(key, value, ttl)
	return nil
}

func (s *Service) Delete(_ context.Context, key string) error {
	s.lru.Delete(key)
	return nil
}

func (s *Service) Invalidate(_ context.Context, pattern string) error {
	s.lru.Invalidate(pattern)
	return nil
}

// Size returns the number of cached sessions.
func (s *Service) Size() int {
	return s.lru.Len()
}

func (s *Service) janitor(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.lru.Expire()
		}
	}
}

var _ CacheService = (*Service)(nil)
