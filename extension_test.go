package xdpy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionManagerCaches(t *testing.T) {
	d := fakeDisplay{replies: map[uint64]*Reply{1: queryExtensionReply(true, 140, 89, 160)}}

	var m ExtensionManager
	info, err := m.Info(&d, "RANDR")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, uint8(140), info.MajorOpcode)

	// A second lookup must not hit the server. The fake has no more
	// scripted replies, so a query would fail.
	again, err := m.Info(&d, "RANDR")
	require.NoError(t, err)
	assert.Same(t, info, again)
	assert.Len(t, d.sent, 1)
}

func TestExtensionManagerCachesAbsence(t *testing.T) {
	d := fakeDisplay{replies: map[uint64]*Reply{1: queryExtensionReply(false, 0, 0, 0)}}

	var m ExtensionManager
	info, err := m.Info(&d, "NO-SUCH-EXTENSION")
	require.NoError(t, err)
	assert.Nil(t, info)

	info, err = m.Info(&d, "NO-SUCH-EXTENSION")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Len(t, d.sent, 1)

	_, ok, err := m.Opcode(&d, "NO-SUCH-EXTENSION")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtensionManagerReverseLookups(t *testing.T) {
	d := fakeDisplay{replies: map[uint64]*Reply{
		1: queryExtensionReply(true, 140, 89, 160),
		2: queryExtensionReply(true, 131, 66, 150),
	}}

	var m ExtensionManager
	_, err := m.Info(&d, "RANDR")
	require.NoError(t, err)
	_, err = m.Info(&d, "XInputExtension")
	require.NoError(t, err)

	name, info, ok := m.ByMajorOpcode(131)
	require.True(t, ok)
	assert.Equal(t, "XInputExtension", name)
	assert.Equal(t, uint8(66), info.FirstEvent)

	name, _, ok = m.ByEventCode(89)
	require.True(t, ok)
	assert.Equal(t, "RANDR", name)

	name, _, ok = m.ByErrorCode(150)
	require.True(t, ok)
	assert.Equal(t, "XInputExtension", name)

	_, _, ok = m.ByMajorOpcode(200)
	assert.False(t, ok)

	known := m.Known()
	assert.Len(t, known, 2)
}
