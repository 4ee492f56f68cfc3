package xdpy

import (
	"sync"

	"deedles.dev/xdpy/internal/spin"
)

// Locking selects the synchronization primitive that guards a
// connection's internal bookkeeping.
type Locking int

const (
	// LockMutex uses a standard blocking mutex.
	LockMutex Locking = iota

	// LockSpin uses a spinlock. The guarded sections are tiny, but
	// spin waiting still loses badly to a blocking mutex under
	// contention, so think carefully before selecting this.
	LockSpin
)

// Config carries the construction-time options shared by every
// backend. The zero value is a blocking connection guarded by
// mutexes.
type Config struct {
	// NonBlocking makes WaitForReply and WaitForEvent return
	// ErrWouldBlock instead of blocking when nothing is queued. The
	// poll operations are unaffected.
	NonBlocking bool

	// Locking selects the lock strategy for the connection's
	// internal state.
	Locking Locking
}

// NewLocker returns a fresh locker of the configured kind.
func (c Config) NewLocker() sync.Locker {
	if c.Locking == LockSpin {
		return new(spin.Lock)
	}
	return new(sync.Mutex)
}
