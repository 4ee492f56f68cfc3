package xcb

import (
	"unsafe"

	"deedles.dev/xdpy"
	"deedles.dev/xdpy/internal/bin"
)

// Connection states reported by xcb_connection_has_error.
const (
	connOK = iota
	connError
	connClosedExtNotSupported
	connClosedMemInsufficient
	connClosedReqLenExceed
	connClosedParseErr
	connClosedInvalidScreen
	connClosedFDPassingFailed
)

// xcb_send_request flag bits.
const (
	requestChecked     = 1
	requestRaw         = 2
	requestReplyHasFDs = 8
)

func connCode(state int) xdpy.ConnCode {
	switch state {
	case connError:
		return xdpy.ConnIO
	case connClosedExtNotSupported:
		return xdpy.ConnExtNotSupported
	case connClosedMemInsufficient:
		return xdpy.ConnMemInsufficient
	case connClosedReqLenExceed:
		return xdpy.ConnReqLenExceed
	case connClosedParseErr:
		return xdpy.ConnParseErr
	case connClosedInvalidScreen:
		return xdpy.ConnInvalidScreen
	case connClosedFDPassingFailed:
		return xdpy.ConnFDPassingFailed
	default:
		return xdpy.ConnUnknown
	}
}

// takeEvent copies an event out of transport-owned memory and frees
// the original.
func takeEvent(p unsafe.Pointer) xdpy.Event {
	defer xcbFree(p)

	header := unsafe.Slice((*byte)(p), 32)
	if header[0]&0x7f != xdpy.GenericEventCode {
		out := make(xdpy.Event, 32)
		copy(out, header)
		return out
	}

	// Generic events are 32 + 4*length bytes on the wire, but libxcb
	// inserts the full sequence number as an extra word at offset 32.
	// Drop it so the buffer is pure wire layout.
	xlen := 4 * int(bin.Value[uint32]([4]byte(header[4:8])))
	src := unsafe.Slice((*byte)(p), 36+xlen)
	out := make(xdpy.Event, 32+xlen)
	copy(out, src[:32])
	copy(out[32:], src[36:])
	return out
}

// takeReply copies a reply out of transport-owned memory, splitting
// off any file descriptors libxcb stored past the end of the reply,
// and frees the original.
func takeReply(p unsafe.Pointer, hasFDs bool) ([]byte, []int) {
	defer xcbFree(p)

	header := unsafe.Slice((*byte)(p), 32)
	n := 32 + 4*int(bin.Value[uint32]([4]byte(header[4:8])))
	data := make([]byte, n)
	copy(data, unsafe.Slice((*byte)(p), n))

	if !hasFDs || header[1] == 0 {
		return data, nil
	}

	// For fd-carrying replies the byte at offset 1 counts the
	// descriptors, which follow the reply as a native int array.
	raw := unsafe.Slice((*int32)(unsafe.Add(p, n)), int(header[1]))
	fds := make([]int, len(raw))
	for i, fd := range raw {
		fds[i] = int(fd)
	}
	return data, fds
}

// takeX11Error converts a 32-byte server error in transport-owned
// memory and frees the original.
func takeX11Error(p unsafe.Pointer) error {
	defer xcbFree(p)

	buf := make([]byte, 32)
	copy(buf, unsafe.Slice((*byte)(p), 32))
	xerr, err := xdpy.ParseX11Error(buf)
	if err != nil {
		return err
	}
	return xerr
}
