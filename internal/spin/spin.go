// Package spin implements a spinlock.
package spin

import (
	"runtime"
	"sync/atomic"
)

// Lock is a spin-waiting mutual exclusion lock. The zero value is an
// unlocked lock. It must not be copied after first use.
type Lock struct {
	held atomic.Bool
}

func (l *Lock) Lock() {
	for !l.held.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (l *Lock) Unlock() {
	if !l.held.CompareAndSwap(true, false) {
		panic("spin: unlock of unlocked lock")
	}
}
