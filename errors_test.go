package xdpy

import (
	"errors"
	"io"
	"testing"

	"deedles.dev/xdpy/internal/bin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnError(t *testing.T) {
	err := &ConnError{Code: ConnIO}
	assert.Equal(t, "connection broken: I/O error", err.Error())
	assert.NoError(t, err.Unwrap())

	err = &ConnError{Code: ConnClosed, Err: io.ErrClosedPipe}
	assert.Equal(t, "connection broken: connection closed: io: read/write on closed pipe", err.Error())
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
}

func TestConnCodeString(t *testing.T) {
	assert.Equal(t, "invalid screen", ConnInvalidScreen.String())
	assert.Equal(t, "unknown error", ConnUnknown.String())
	assert.Equal(t, "unknown error", ConnCode(1234).String())
}

func TestParseX11Error(t *testing.T) {
	data := make([]byte, 32)
	data[1] = 3 // BadWindow
	seq := bin.Bytes16(uint16(0x1234))
	copy(data[2:], seq[:])
	bad := bin.Bytes(uint32(0xdeadbeef))
	copy(data[4:], bad[:])
	minor := bin.Bytes16(uint16(7))
	copy(data[8:], minor[:])
	data[10] = 42 // major opcode

	err, perr := ParseX11Error(data)
	require.NoError(t, perr)
	assert.Equal(t, uint8(3), err.Code)
	assert.Equal(t, uint16(0x1234), err.Sequence)
	assert.Equal(t, uint32(0xdeadbeef), err.Bad)
	assert.Equal(t, uint16(7), err.Minor)
	assert.Equal(t, uint8(42), err.Major)
	assert.NotEmpty(t, err.Error())
}

func TestParseX11ErrorBadBuffer(t *testing.T) {
	_, err := ParseX11Error(make([]byte, 16))
	assert.Error(t, err)

	data := make([]byte, 32)
	data[0] = 1 // a reply, not an error
	_, err = ParseX11Error(data)
	assert.Error(t, err)
}
