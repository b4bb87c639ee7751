package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"charforge/internal/server/character"
	"charforge/internal/server/storage"
)

const (
	SessionTTL         = 7 * 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
	TrackerSaveDelay   = 750 * time.Millisecond
)

// ErrStorageDisabled is returned by every persistent operation when no store is configured
var ErrStorageDisabled = errors.New("storage disabled")

// Service coordinates the build engine, live state, rolls and user management
type Service struct {
	store     *storage.Store
	catalog   character.Catalog
	jwtSecret []byte
	limits    storage.UserLimits
	feed      *RollFeed
	saver     *Debouncer
	now       func() time.Time
}

// New creates a service. store may be nil, in which case persistent operations fail
// with ErrStorageDisabled.
func New(store *storage.Store, jwtSecret []byte, waitTimeout time.Duration) *Service {
	s := &Service{
		store:     store,
		jwtSecret: jwtSecret,
		limits:    storage.DefaultUserLimits(),
		feed:      NewRollFeed(waitTimeout),
		saver:     NewDebouncer(TrackerSaveDelay),
		now:       func() time.Time { return time.Now().UTC() },
	}
	if store != nil {
		s.catalog = store
	}
	return s
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

func (s *Service) requireStore() error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	return nil
}

// Shutdown flushes pending tracker saves, releases roll waiters and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if n := s.saver.Flush(); n > 0 {
		log.Printf("tracker: flushed %d pending saves", n)
	}

	if err := s.feed.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("roll feed: %w", err))
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob runs periodic cleanup of expired users and sessions
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired(ctx)
		}
	}
}

func (s *Service) cleanupExpired(ctx context.Context) {
	if s.store == nil {
		return
	}

	if deleted, err := s.store.DeleteExpiredTempUsers(ctx); err != nil {
		log.Printf("cleanup: failed to delete expired users: %v", err)
	} else if deleted > 0 {
		log.Printf("cleanup: deleted %d expired temp users", deleted)
	}

	if deleted, err := s.store.DeleteExpiredSessions(ctx); err != nil {
		log.Printf("cleanup: failed to delete expired sessions: %v", err)
	} else if deleted > 0 {
		log.Printf("cleanup: deleted %d expired sessions", deleted)
	}
}
