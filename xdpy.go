// Package xdpy defines a display-protocol capability set over X11
// connections, independent of which transport backs them.
//
// Higher-level protocol code is written once against the Display
// interface and runs unchanged over any of the backends: a native
// libxcb connection (deedles.dev/xdpy/xcb), a native libX11 display
// that uses XCB as its internal transport (deedles.dev/xdpy/xlib), or
// a pure-Go connection (deedles.dev/xdpy/xgbconn). The native-backed
// variants also expose their raw connection pointers, so the same
// connection can be shared with foreign libraries built on libxcb or
// libX11.
//
// The adapters are byte-oriented. Requests are submitted pre-encoded,
// and replies and events are surfaced as raw buffers in the wire
// layout that the server produced. Encoding and decoding of protocol
// semantics belongs to the calling layer; this package provides only
// the handful of core-protocol helpers that the adapters themselves
// need (see NoOperation, GetInputFocus, QueryExtension).
package xdpy

import "iter"

// Display is the capability set shared by all connection backends.
//
// A Display is owned by exactly one caller chain. The backends do not
// add locking around protocol operations beyond what their underlying
// transport provides; callers that share a Display between goroutines
// serialize access themselves, exactly as they would with the native
// library.
type Display interface {
	// Setup returns the connection setup information sent by the
	// server during the handshake.
	Setup() (*Setup, error)

	// DefaultScreen is the screen number indicated by the display
	// name used to open the connection.
	DefaultScreen() int

	// SendRequest submits a pre-encoded protocol request and returns
	// the sequence number that the transport assigned to it. The
	// sequence number correlates the request with its reply, its
	// errors, or both.
	//
	// Requests carrying file descriptors pass ownership of those
	// descriptors to the transport.
	SendRequest(req *Request) (uint64, error)

	// WaitForReply blocks until the reply for seq is available and
	// returns it. Replies are delivered in the order the transport
	// produces them. A server-side error for the request is returned
	// as an *X11Error; a broken connection as a *ConnError.
	WaitForReply(seq uint64) (*Reply, error)

	// CheckRequest confirms that the checked request identified by
	// seq completed without a protocol error, forcing a round trip
	// if necessary.
	CheckRequest(seq uint64) error

	// WaitForEvent blocks until an event arrives and returns it.
	WaitForEvent() (Event, error)

	// PollForEvent returns the next queued event without blocking.
	// It returns a nil Event and a nil error when the queue is
	// empty.
	PollForEvent() (Event, error)

	// Flush writes any buffered requests to the server.
	Flush() error

	// GenerateID allocates a fresh resource ID.
	GenerateID() (uint32, error)

	// MaximumRequestLength is the longest request, in 4-byte units,
	// that the server accepts.
	MaximumRequestLength() uint32

	// Err reports the connection's terminal error state. It returns
	// nil while the connection is usable. Once non-nil it never
	// changes, and every other operation fails with the same error
	// without touching the underlying transport.
	Err() error

	// Close shuts the connection down. It is idempotent, and it is
	// the only way to unblock a waiting operation.
	Close() error
}

// ReplyPoller is implemented by backends that can check for a reply
// without blocking. The bool result reports whether a reply or error
// was ready.
type ReplyPoller interface {
	PollForReply(seq uint64) (*Reply, bool, error)
}

// FDConn is implemented by backends whose transport is a plain file
// descriptor.
type FDConn interface {
	FD() int
}

// Pending returns an iterator over the events that are queued at the
// time each is requested. The sequence is finite: it ends when the
// queue is drained or when the connection fails, never blocking for
// more. Draining an empty queue yields nothing.
func Pending(d Display) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := d.PollForEvent()
			if err != nil {
				yield(nil, err)
				return
			}
			if ev == nil {
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}
