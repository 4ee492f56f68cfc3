package xdpy

import (
	"testing"

	"deedles.dev/xdpy/internal/bin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreRequest(t *testing.T) {
	req := coreRequest(opNoOperation, 0, nil)
	lenb := bin.Bytes16(uint16(1))
	assert.Equal(t, []byte{opNoOperation, 0, lenb[0], lenb[1]}, req)

	req = coreRequest(opQueryExtension, 0, []byte{1, 2, 3, 4, 5})
	assert.Len(t, req, 12, "body must be padded to a 4-byte boundary")
	lenb = bin.Bytes16(uint16(3))
	assert.Equal(t, []byte{opQueryExtension, 0, lenb[0], lenb[1]}, req[:4])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0}, req[4:])
}

func TestNoOperation(t *testing.T) {
	d := fakeDisplay{}
	seq, err := NoOperation(&d)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	require.Len(t, d.sent, 1)
	assert.True(t, d.sent[0].NoReply)
	assert.False(t, d.sent[0].Checked)
	assert.Equal(t, uint8(opNoOperation), d.sent[0].Data[0])
}

func TestSynchronize(t *testing.T) {
	d := fakeDisplay{}
	require.NoError(t, Synchronize(&d))

	require.Len(t, d.sent, 1)
	assert.True(t, d.sent[0].NoReply)
	assert.True(t, d.sent[0].Checked)

	d = fakeDisplay{checks: map[uint64]error{1: &X11Error{Code: 8}}}
	err := Synchronize(&d)
	var xerr *X11Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, uint8(8), xerr.Code)
}

func TestInputFocus(t *testing.T) {
	reply := make([]byte, 32)
	reply[0] = 1
	reply[1] = 2 // revert to parent
	win := bin.Bytes(uint32(0x400005))
	copy(reply[8:], win[:])

	d := fakeDisplay{replies: map[uint64]*Reply{1: {Data: reply}}}
	focus, revert, err := InputFocus(&d)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x400005), focus)
	assert.Equal(t, uint8(2), revert)

	require.Len(t, d.sent, 1)
	assert.Equal(t, uint8(opGetInputFocus), d.sent[0].Data[0])
	assert.False(t, d.sent[0].NoReply)
}

func queryExtensionReply(present bool, opcode, event, errcode uint8) *Reply {
	data := make([]byte, 32)
	data[0] = 1
	if present {
		data[8] = 1
	}
	data[9] = opcode
	data[10] = event
	data[11] = errcode
	return &Reply{Data: data}
}

func TestQueryExtension(t *testing.T) {
	d := fakeDisplay{replies: map[uint64]*Reply{1: queryExtensionReply(true, 131, 66, 150)}}
	info, err := QueryExtension(&d, "XInputExtension")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, uint8(131), info.MajorOpcode)
	assert.Equal(t, uint8(66), info.FirstEvent)
	assert.Equal(t, uint8(150), info.FirstError)

	// The request carries the name length followed by the padded
	// name.
	require.Len(t, d.sent, 1)
	req := d.sent[0].Data
	assert.Equal(t, uint8(opQueryExtension), req[0])
	assert.Equal(t, uint16(len("XInputExtension")), bin.Value16[uint16]([2]byte(req[4:6])))
	assert.Equal(t, "XInputExtension", string(req[8:8+len("XInputExtension")]))
	assert.Zero(t, len(req)%4)
}

func TestQueryExtensionAbsent(t *testing.T) {
	d := fakeDisplay{replies: map[uint64]*Reply{1: queryExtensionReply(false, 0, 0, 0)}}
	info, err := QueryExtension(&d, "NO-SUCH-EXTENSION")
	require.NoError(t, err)
	assert.Nil(t, info)
}
