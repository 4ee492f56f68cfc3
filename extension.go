package xdpy

import (
	"sync"

	"golang.org/x/exp/maps"
)

// ExtensionManager caches QueryExtension results so that each
// extension is queried at most once per connection. It also supports
// the reverse lookups needed to attribute extension events and errors
// to the extension that defined them.
//
// An ExtensionManager is safe for concurrent use.
type ExtensionManager struct {
	mu sync.RWMutex
	// A nil entry records that the server does not have the
	// extension.
	entries map[string]*ExtensionInfo
}

// Info returns the extension information for name, querying the
// server through d if this manager has not seen the name before. It
// returns nil without an error when the server does not have the
// extension.
func (m *ExtensionManager) Info(d Display, name string) (*ExtensionInfo, error) {
	m.mu.RLock()
	info, ok := m.entries[name]
	m.mu.RUnlock()
	if ok {
		return info, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Someone else may have queried it while we were waiting.
	if info, ok := m.entries[name]; ok {
		return info, nil
	}

	info, err := QueryExtension(d, name)
	if err != nil {
		return nil, err
	}
	if m.entries == nil {
		m.entries = make(map[string]*ExtensionInfo)
	}
	m.entries[name] = info
	return info, nil
}

// Opcode returns the major opcode for name, querying the server if
// necessary. ok is false when the server does not have the
// extension.
func (m *ExtensionManager) Opcode(d Display, name string) (opcode uint8, ok bool, err error) {
	info, err := m.Info(d, name)
	if err != nil || info == nil {
		return 0, false, err
	}
	return info.MajorOpcode, true, nil
}

func (m *ExtensionManager) find(f func(*ExtensionInfo) bool) (string, *ExtensionInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, info := range m.entries {
		if info != nil && f(info) {
			return name, info, true
		}
	}
	return "", nil, false
}

// ByMajorOpcode finds the previously queried extension that owns the
// given major opcode.
func (m *ExtensionManager) ByMajorOpcode(opcode uint8) (string, *ExtensionInfo, bool) {
	return m.find(func(info *ExtensionInfo) bool { return info.MajorOpcode == opcode })
}

// ByEventCode finds the previously queried extension whose event
// range starts at the given code.
func (m *ExtensionManager) ByEventCode(code uint8) (string, *ExtensionInfo, bool) {
	return m.find(func(info *ExtensionInfo) bool { return info.FirstEvent == code })
}

// ByErrorCode finds the previously queried extension whose error
// range starts at the given code.
func (m *ExtensionManager) ByErrorCode(code uint8) (string, *ExtensionInfo, bool) {
	return m.find(func(info *ExtensionInfo) bool { return info.FirstError == code })
}

// Known returns a snapshot of every extension this manager has
// queried, including absent ones as nil entries.
func (m *ExtensionManager) Known() map[string]*ExtensionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.entries)
}
