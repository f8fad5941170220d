package locker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMutexLocker_AcquireRelease(t *testing.T) {
	t.Parallel()
	l := NewMutexLocker()

	require.True(t, l.MayBeAvailable("a"))
	require.True(t, l.Acquire("a"))
	require.False(t, l.MayBeAvailable("a"))
	require.False(t, l.Acquire("a"))

	// Independent name is unaffected.
	require.True(t, l.Acquire("b"))

	l.Release("a")
	require.True(t, l.MayBeAvailable("a"))
	require.True(t, l.Acquire("a"))
}

func TestMutexLocker_ReleaseNotHeld(t *testing.T) {
	t.Parallel()
	l := NewMutexLocker()
	l.Release("missing")
	require.True(t, l.Acquire("missing"))
}

func TestMutexLocker_WaitTimeout(t *testing.T) {
	t.Parallel()
	l := NewMutexLocker()
	require.True(t, l.Acquire("a"))

	start := time.Now()
	require.False(t, l.Wait("a", 30*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMutexLocker_WaitWakesOnRelease(t *testing.T) {
	t.Parallel()
	l := NewMutexLocker()
	require.True(t, l.Acquire("a"))

	done := make(chan bool, 1)
	go func() {
		done <- l.Wait("a", 2*time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	l.Release("a")
	require.True(t, <-done)
}

func TestMutexLocker_MutualExclusion(t *testing.T) {
	t.Parallel()
	l := NewMutexLocker()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if !l.MayBeAvailable("c") {
					l.Wait("c", time.Second)
				}
				if l.Acquire("c") {
					break
				}
			}
			counter++
			l.Release("c")
		}()
	}
	wg.Wait()
	require.Equal(t, 16, counter)
}
