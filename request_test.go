package xdpy

import (
	"testing"

	"deedles.dev/xdpy/internal/bin"
	"github.com/stretchr/testify/assert"
)

func TestEventAccessors(t *testing.T) {
	ev := make(Event, 32)
	ev[0] = 2 // KeyPress
	seq := bin.Bytes16(uint16(99))
	copy(ev[2:], seq[:])

	assert.Equal(t, uint8(2), ev.Code())
	assert.False(t, ev.Synthetic())
	assert.Equal(t, uint16(99), ev.Sequence())
	assert.False(t, ev.Generic())

	ev[0] |= 0x80
	assert.Equal(t, uint8(2), ev.Code())
	assert.True(t, ev.Synthetic())
}

func TestGenericEvent(t *testing.T) {
	ev := make(Event, 40)
	ev[0] = GenericEventCode
	ev[1] = 131 // extension major opcode
	etype := bin.Bytes16(uint16(17))
	copy(ev[8:], etype[:])

	assert.True(t, ev.Generic())
	assert.Equal(t, uint8(131), ev.GenericExtension())
	assert.Equal(t, uint16(17), ev.GenericType())
}

func TestReplySequence(t *testing.T) {
	data := make([]byte, 32)
	data[0] = 1
	seq := bin.Bytes16(uint16(0xbeef))
	copy(data[2:], seq[:])

	r := Reply{Data: data}
	assert.Equal(t, uint16(0xbeef), r.Sequence())
}
