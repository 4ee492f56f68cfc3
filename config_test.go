package xdpy

import (
	"sync"
	"testing"

	"deedles.dev/xdpy/internal/spin"
	"github.com/stretchr/testify/assert"
)

func TestNewLocker(t *testing.T) {
	var cfg Config
	assert.IsType(t, new(sync.Mutex), cfg.NewLocker())

	cfg.Locking = LockSpin
	assert.IsType(t, new(spin.Lock), cfg.NewLocker())

	// Each call must produce an independent lock.
	a := cfg.NewLocker()
	b := cfg.NewLocker()
	a.Lock()
	b.Lock()
	a.Unlock()
	b.Unlock()
}
