package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hrygo/acutie/plugin/ai/cache"
)

const (
	// DefaultRetentionDays is the default number of days to retain idle sessions.
	DefaultRetentionDays = 30
	// DefaultCleanupInterval is the default interval between cleanup runs.
	DefaultCleanupInterval = 24 * time.Hour
)

// CleanupConfig holds configuration for the cleanup job.
type CleanupConfig struct {
	RetentionDays   int           // default: 30
	CleanupInterval time.Duration // default: 24h
	// Cache is purged of every key of a deleted session. nil skips the purge.
	Cache cache.CacheService
}

// CleanupJob periodically deletes durable sessions idle past the retention window.
type CleanupJob struct {
	durable DurableStore
	config  CleanupConfig

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCleanupJob creates a new cleanup job.
func NewCleanupJob(durable DurableStore, config CleanupConfig) *CleanupJob {
	if config.RetentionDays <= 0 {
		config.RetentionDays = DefaultRetentionDays
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}
	return &CleanupJob{
		durable: durable,
		config:  config,
	}
}

// Start runs one cleanup immediately and then every interval until Stop or ctx is done.
func (j *CleanupJob) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	j.running = true
	j.stop = make(chan struct{})
	j.done = make(chan struct{})

	go j.run(ctx, j.stop, j.done)

	slog.Info("session cleanup job started",
		"retention_days", j.config.RetentionDays,
		"interval", j.config.CleanupInterval)
}

// Stop stops the job and waits for an in-flight run to finish.
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	close(j.stop)
	done := j.done
	j.running = false
	j.mu.Unlock()

	<-done
	slog.Info("session cleanup job stopped")
}

// RunOnce executes a single cleanup run immediately and returns the number
// of sessions deleted. Hot-tier entries of deleted sessions are invalidated
// so the cache cannot serve state the durable store no longer holds.
func (j *CleanupJob) RunOnce(ctx context.Context) (int64, error) {
	retention := time.Duration(j.config.RetentionDays) * 24 * time.Hour
	ids, err := j.durable.DeleteStaleConversations(ctx, retention)
	if err != nil {
		return 0, err
	}
	if j.config.Cache != nil {
		for _, id := range ids {
			if err := j.config.Cache.Invalidate(ctx, cache.SessionPattern(id)); err != nil {
				slog.Warn("failed to purge cached session", "session_id", id, "error", err)
			}
		}
	}
	return int64(len(ids)), nil
}

func (j *CleanupJob) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(j.config.CleanupInterval)
	defer ticker.Stop()

	for {
		if deleted, err := j.RunOnce(ctx); err != nil {
			slog.Error("session cleanup failed", "error", err)
		} else if deleted > 0 {
			slog.Info("session cleanup completed", "deleted", deleted)
		}

		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// IsRunning returns whether the cleanup job is currently running.
func (j *CleanupJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
