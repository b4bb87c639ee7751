package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultWaitTimeout is the longest a moderator poll is held open
const DefaultWaitTimeout = 25 * time.Second

// RollFeed wakes long-polling readers when a player appends a roll
type RollFeed struct {
	mu       sync.Mutex
	timeout  time.Duration
	waiters  map[string][]*RollWaiter // player user id -> waiting readers
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// RollWaiter is one registered reader. Register before reading the log so that a roll
// appended in between is not missed.
type RollWaiter struct {
	feed     *RollFeed
	playerID string
	afterID  int64
	notify   chan struct{}
}

// NewRollFeed creates a feed. A non-positive timeout uses DefaultWaitTimeout.
func NewRollFeed(timeout time.Duration) *RollFeed {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return &RollFeed{
		timeout:  timeout,
		waiters:  make(map[string][]*RollWaiter),
		shutdown: make(chan struct{}),
	}
}

// Register adds a reader waiting for rolls of playerID newer than afterID.
// It returns nil once the feed is shut down.
func (f *RollFeed) Register(playerID string, afterID int64) *RollWaiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	playerID = strings.Clone(playerID)
	w := &RollWaiter{feed: f, playerID: playerID, afterID: afterID, notify: make(chan struct{}, 1)}
	f.waiters[playerID] = append(f.waiters[playerID], w)
	f.wg.Add(1)
	return w
}

// Wait blocks until a newer roll is signalled, the feed timeout elapses, ctx is cancelled
// or the feed shuts down, then unregisters. It reports whether a newer roll was signalled.
func (w *RollWaiter) Wait(ctx context.Context) bool {
	if w == nil {
		return false
	}
	defer w.Done()

	timer := time.NewTimer(w.feed.timeout)
	defer timer.Stop()

	select {
	case <-w.notify:
		return true
	case <-timer.C:
	case <-ctx.Done():
	case <-w.feed.shutdown:
	}
	return false
}

// Done unregisters the waiter without waiting. Calling it twice is harmless.
func (w *RollWaiter) Done() {
	if w == nil {
		return
	}
	if w.feed.remove(w) {
		w.feed.wg.Done()
	}
}

// Notify signals readers of playerID waiting for rolls older than rollID
func (f *RollFeed) Notify(playerID string, rollID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, w := range f.waiters[playerID] {
		if rollID <= w.afterID {
			continue
		}
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}

// waiting returns the number of readers waiting on playerID
func (f *RollFeed) waiting(playerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters[playerID])
}

func (f *RollFeed) remove(w *RollWaiter) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.waiters[w.playerID]
	for i, other := range list {
		if other == w {
			f.waiters[w.playerID] = append(list[:i], list[i+1:]...)
			if len(f.waiters[w.playerID]) == 0 {
				delete(f.waiters, w.playerID)
			}
			return true
		}
	}
	return false
}

// Shutdown releases every waiter and waits for them to return
func (f *RollFeed) Shutdown(timeout time.Duration) error {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.shutdown)
	}
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("roll feed shutdown timed out")
	}
}
