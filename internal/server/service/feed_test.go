package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestRollFeedNotifyNewerOnly(t *testing.T) {
	f := NewRollFeed(time.Second)
	w := f.Register("p1", 10)

	f.Notify("p1", 10) // not newer
	f.Notify("p2", 11) // other player

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.False(t, w.Wait(ctx))
	require.Zero(t, f.waiting("p1"))

	w = f.Register("p1", 10)
	f.Notify("p1", 11)
	require.True(t, w.Wait(context.Background()))
	require.NoError(t, f.Shutdown(time.Second))
}

func TestRollFeedShutdownReleasesWaiters(t *testing.T) {
	f := NewRollFeed(time.Minute)
	w := f.Register("p1", 0)

	done := make(chan bool, 1)
	go func() { done <- w.Wait(context.Background()) }()

	require.NoError(t, f.Shutdown(time.Second))
	require.False(t, <-done)
	require.Nil(t, f.Register("p1", 0))
}

func TestDebouncerReplacesPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Schedule("k", func() {
			calls.Add(1)
			last.Store(v)
		})
	}
	require.Equal(t, 1, d.pendingCount())

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 1, calls.Load())
	require.EqualValues(t, 5, last.Load())
	require.Zero(t, d.pendingCount())
}

func TestDebouncerCancelAndFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var calls atomic.Int32

	d.Schedule("a", func() { calls.Add(1) })
	d.Schedule("b", func() { calls.Add(1) })
	require.True(t, d.Cancel("a"))
	require.False(t, d.Cancel("a"))

	require.Equal(t, 1, d.Flush())
	require.EqualValues(t, 1, calls.Load())
	require.Zero(t, d.pendingCount())
}

func TestRollFeedKeepsItsOwnPlayerKey(t *testing.T) {
	f := NewRollFeed(time.Second)

	// a key aliasing a buffer that is reused after Register, as request params are
	buf := []byte("p1")
	w := f.Register(unsafe.String(&buf[0], len(buf)), 0)
	copy(buf, "p2")

	require.Equal(t, 1, f.waiting("p1"))
	f.Notify("p1", 1)
	require.True(t, w.Wait(context.Background()))
	require.Zero(t, f.waiting("p1"))
	require.NoError(t, f.Shutdown(time.Second))
}
