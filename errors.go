package xdpy

import (
	"errors"
	"fmt"

	"deedles.dev/xdpy/internal/bin"
)

// ErrWouldBlock is returned by the wait operations of a connection
// configured with NonBlocking when nothing is queued yet.
var ErrWouldBlock = errors.New("operation would block")

// ConnCode identifies the reason a connection entered its terminal
// error state. The codes mirror the shutdown reasons that libxcb
// reports.
type ConnCode int

const (
	// ConnIO is a transport-level I/O failure.
	ConnIO ConnCode = iota + 1
	// ConnExtNotSupported means an extension the transport requires
	// is not present on the server.
	ConnExtNotSupported
	// ConnMemInsufficient means the transport ran out of memory.
	ConnMemInsufficient
	// ConnReqLenExceed means a request exceeded the length the
	// server accepts.
	ConnReqLenExceed
	// ConnParseErr means the transport failed to parse data from the
	// server.
	ConnParseErr
	// ConnInvalidScreen means the display name named a screen the
	// server does not have.
	ConnInvalidScreen
	// ConnFDPassingFailed means file descriptor passing to the
	// server failed.
	ConnFDPassingFailed
	// ConnClosed means the connection was closed locally.
	ConnClosed
	// ConnUnknown covers failure states the transport did not
	// explain.
	ConnUnknown
)

func (c ConnCode) String() string {
	switch c {
	case ConnIO:
		return "I/O error"
	case ConnExtNotSupported:
		return "required extension not supported"
	case ConnMemInsufficient:
		return "insufficient memory"
	case ConnReqLenExceed:
		return "request length exceeded"
	case ConnParseErr:
		return "failed to parse server data"
	case ConnInvalidScreen:
		return "invalid screen"
	case ConnFDPassingFailed:
		return "file descriptor passing failed"
	case ConnClosed:
		return "connection closed"
	default:
		return "unknown error"
	}
}

// ConnError is the terminal error state of a connection. Once a
// connection has produced one, it produces the same one from every
// subsequent operation without touching its underlying transport.
type ConnError struct {
	// Code is the shutdown reason.
	Code ConnCode

	// Err is the underlying transport error, when one is known.
	Err error
}

func (err *ConnError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("connection broken: %v: %v", err.Code, err.Err)
	}
	return fmt.Sprintf("connection broken: %v", err.Code)
}

func (err *ConnError) Unwrap() error {
	return err.Err
}

// X11Error is a protocol error that the server reported for a
// specific request. It does not affect the connection's usability.
type X11Error struct {
	// Code is the error code, which identifies the kind of error.
	Code uint8

	// Sequence is the low 16 bits of the sequence number of the
	// offending request.
	Sequence uint16

	// Bad is the value that provoked the error, for the error kinds
	// that report one.
	Bad uint32

	// Minor and Major are the opcodes of the offending request.
	Minor uint16
	Major uint8
}

func (err *X11Error) Error() string {
	return fmt.Sprintf(
		"server error %v for request %v (opcode %v:%v, bad value %#x)",
		err.Code, err.Sequence, err.Major, err.Minor, err.Bad,
	)
}

// ParseX11Error decodes a 32-byte error buffer in wire layout.
func ParseX11Error(data []byte) (*X11Error, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("short error buffer: %v bytes", len(data))
	}
	if data[0] != 0 {
		return nil, fmt.Errorf("buffer is not an error: response code %v", data[0])
	}

	return &X11Error{
		Code:     data[1],
		Sequence: bin.Value16[uint16]([2]byte(data[2:4])),
		Bad:      bin.Value[uint32]([4]byte(data[4:8])),
		Minor:    bin.Value16[uint16]([2]byte(data[8:10])),
		Major:    data[10],
	}, nil
}
