package locker

import (
	"log"
	"sync"
	"time"
)

// Locker is a named mutual-exclusion primitive. Acquire is a try-acquire:
// callers that find the lock held should Wait and then retry Acquire,
// re-checking shared state only after Acquire returns true.
type Locker interface {
	// MayBeAvailable reports whether the lock looks free right now.
	// The answer can be stale by the time Acquire runs.
	MayBeAvailable(name string) bool
	// Wait blocks until the lock is released or the timeout elapses.
	// Returns false on timeout.
	Wait(name string, timeout time.Duration) bool
	Acquire(name string) bool
	// Release is a no-op for a lock not currently held.
	Release(name string)
}

// MutexLocker is the in-process implementation. Each held lock keeps a
// channel that is closed on release so waiters wake without polling.
type MutexLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{held: make(map[string]chan struct{})}
}

func (l *MutexLocker) MayBeAvailable(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[name]
	return !ok
}

func (l *MutexLocker) Acquire(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[name]; ok {
		return false
	}
	l.held[name] = make(chan struct{})
	return true
}

func (l *MutexLocker) Release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.held[name]
	if !ok {
		return
	}
	delete(l.held, name)
	close(ch)
}

func (l *MutexLocker) Wait(name string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		l.mu.Lock()
		ch, ok := l.held[name]
		l.mu.Unlock()
		if !ok {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.Printf("layer=kit component=locker method=Wait name=%s err=timeout", name)
			return false
		}
		t := time.NewTimer(remaining)
		select {
		case <-ch:
			t.Stop()
			// Released, but another waiter may grab it first. Loop to confirm.
		case <-t.C:
			log.Printf("layer=kit component=locker method=Wait name=%s err=timeout", name)
			return false
		}
	}
}
