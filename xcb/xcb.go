// Package xcb provides a display connection backed by a native
// libxcb xcb_connection_t.
//
// The connection behaves identically to any other xdpy.Display,
// except that its underlying transport is the native library. The
// primary advantage is interop: RawConnection exposes the
// xcb_connection_t pointer, so the same connection can be handed to
// foreign libraries built on libxcb.
//
// By default the package links against libxcb through cgo. Building
// with the xdpy_dl tag loads libxcb.so.1 at runtime instead.
package xcb

import (
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"deedles.dev/xdpy"
	"deedles.dev/xdpy/internal/debug"
	"deedles.dev/xdpy/internal/seqset"
	"golang.org/x/sys/unix"
)

// Display is an xdpy.Display that wraps a libxcb connection.
//
// A Display owns its connection unless it was created with Wrap's
// disconnect argument set to false; the owner disconnects exactly
// once, in Close. Raw pointer borrowers must not outlive the Display
// and must not disconnect the connection themselves.
type Display struct {
	conn   unsafe.Pointer // never nil after construction
	own    bool
	screen int
	cfg    xdpy.Config

	err   atomic.Pointer[xdpy.ConnError]
	close sync.Once
	setup func() (*xdpy.Setup, error)

	// mu guards hasFDs, the sequence numbers of requests whose
	// replies will carry file descriptors.
	mu     sync.Locker
	hasFDs seqset.Set
}

var _ interface {
	xdpy.Display
	xdpy.ReplyPoller
	xdpy.FDConn
} = (*Display)(nil)

// Connect opens a connection to the server named by display, falling
// back to $DISPLAY when it is empty.
func Connect(display string) (*Display, error) {
	var d Dialer
	return d.Connect(display)
}

// A Dialer opens connections with non-default settings. The zero
// value is equivalent to Connect.
type Dialer struct {
	// Config configures the connections this Dialer opens.
	Config xdpy.Config

	// AuthName and AuthData override the authorization protocol
	// negotiated from the X authority file.
	AuthName []byte
	AuthData []byte
}

// Connect opens a connection to the server named by display, falling
// back to $DISPLAY when it is empty. Construction fails atomically:
// if the native open reports an error, no Display is produced and
// nothing is left to close.
func (dl *Dialer) Connect(display string) (*Display, error) {
	var conn unsafe.Pointer
	var screen int
	if dl.AuthName == nil && dl.AuthData == nil {
		conn, screen = xcbConnect(display)
	} else {
		conn, screen = xcbConnectAuth(display, dl.AuthName, dl.AuthData)
	}
	return newDisplay(conn, true, screen, dl.Config)
}

// ConnectToFD wraps an already connected socket descriptor. The
// connection takes ownership of fd, including on failure. The screen
// number is the caller's claim; a descriptor carries none itself.
func (dl *Dialer) ConnectToFD(fd, screen int) (*Display, error) {
	conn := xcbConnectFD(fd, dl.AuthName, dl.AuthData)
	return newDisplay(conn, true, screen, dl.Config)
}

// ConnectToSocket wraps an already connected socket, such as a
// *net.UnixConn. The descriptor is duplicated, so closing the
// original remains the caller's job.
func (dl *Dialer) ConnectToSocket(c syscall.Conn, screen int) (*Display, error) {
	raw, err := c.SyscallConn()
	if err != nil {
		return nil, err
	}

	var d *Display
	var derr error
	err = raw.Control(func(fd uintptr) {
		dup, err := unix.Dup(int(fd))
		if err != nil {
			derr = err
			return
		}
		d, derr = dl.ConnectToFD(dup, screen)
	})
	if err != nil {
		return nil, err
	}
	return d, derr
}

// Wrap creates a Display around an existing xcb_connection_t
// pointer. If disconnect is true, the Display takes ownership and
// Close will disconnect the native connection; otherwise the caller
// keeps the obligation to disconnect it, after this Display is no
// longer in use. Wrap panics if ptr is nil.
func Wrap(ptr unsafe.Pointer, disconnect bool, screen int, cfg xdpy.Config) *Display {
	if ptr == nil {
		panic("xcb: wrap of nil connection")
	}

	d := Display{
		conn:   ptr,
		own:    disconnect,
		screen: screen,
		cfg:    cfg,
		mu:     cfg.NewLocker(),
		hasFDs: make(seqset.Set),
	}
	d.setup = sync.OnceValues(d.parseSetup)
	return &d
}

func newDisplay(conn unsafe.Pointer, own bool, screen int, cfg xdpy.Config) (*Display, error) {
	if conn == nil {
		return nil, &xdpy.ConnError{Code: xdpy.ConnUnknown}
	}

	// xcb_connect reports failure through a connection object that
	// exists only to hold the error state.
	d := Wrap(conn, own, screen, cfg)
	if err := d.takeError(); err != nil {
		xcbDisconnect(conn)
		return nil, err
	}
	return d, nil
}

// bail returns the latched terminal error, if any. Every operation
// consults it before touching the native handle.
func (d *Display) bail() error {
	if err := d.err.Load(); err != nil {
		return err
	}
	return nil
}

// takeError checks the native connection's error state, latching and
// returning the terminal error if it is broken.
func (d *Display) takeError() error {
	state := xcbHasError(d.conn)
	if state == connOK {
		return nil
	}

	d.err.CompareAndSwap(nil, &xdpy.ConnError{Code: connCode(state)})
	return d.err.Load()
}

// maybeError is takeError for call sites that know something went
// wrong even if the connection claims health.
func (d *Display) maybeError() error {
	if err := d.takeError(); err != nil {
		return err
	}
	return &xdpy.ConnError{Code: xdpy.ConnUnknown}
}

// RawConnection returns the underlying xcb_connection_t pointer for
// interop with native code. The pointer is borrowed: it is valid
// until the Display is closed, and the borrower must not disconnect
// it. Interleaving native calls with this Display's own operations
// is subject to libxcb's usual threading rules.
func (d *Display) RawConnection() unsafe.Pointer {
	return d.conn
}

// FD returns the connection's file descriptor.
func (d *Display) FD() int {
	return xcbFD(d.conn)
}

// Setup returns the connection setup information. It is parsed once
// and cached.
func (d *Display) Setup() (*xdpy.Setup, error) {
	return d.setup()
}

func (d *Display) parseSetup() (*xdpy.Setup, error) {
	if err := d.bail(); err != nil {
		return nil, err
	}

	p := xcbGetSetup(d.conn)
	if p == nil {
		return nil, d.maybeError()
	}

	// The setup memory is owned by the connection and is 1:1 with
	// the wire bytes, so it parses as a plain byte stream.
	n, err := xdpy.SetupLength(unsafe.Slice((*byte)(p), 8))
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	copy(data, unsafe.Slice((*byte)(p), n))
	return xdpy.ParseSetup(data)
}

// DefaultScreen is the screen number the display name selected.
func (d *Display) DefaultScreen() int {
	return d.screen
}

// SendRequest submits a pre-encoded request. Ownership of any
// attached file descriptors passes to libxcb, which closes them once
// sent.
func (d *Display) SendRequest(req *xdpy.Request) (uint64, error) {
	if err := d.bail(); err != nil {
		return 0, err
	}

	// Requests that produce a reply are always sent checked so that
	// their errors surface through the reply path instead of the
	// event queue.
	flags := requestRaw
	if req.Checked || !req.NoReply {
		flags |= requestChecked
	}
	if req.ReplyHasFDs {
		flags |= requestReplyHasFDs
	}

	seq := xcbSendRequest(d.conn, flags, req.Data, req.NoReply, req.FDs)
	if seq == 0 {
		return 0, d.maybeError()
	}

	if req.ReplyHasFDs {
		d.mu.Lock()
		d.hasFDs.Add(seq)
		d.mu.Unlock()
	}

	debug.Printf("xcb: sent request %v (%v bytes)", seq, len(req.Data))
	return seq, nil
}

func (d *Display) takeHasFDs(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasFDs.Take(seq)
}

// WaitForReply returns the reply for seq, blocking until it arrives.
// Under a NonBlocking Config it returns xdpy.ErrWouldBlock instead
// of blocking.
func (d *Display) WaitForReply(seq uint64) (*xdpy.Reply, error) {
	if d.cfg.NonBlocking {
		reply, ok, err := d.PollForReply(seq)
		switch {
		case err != nil:
			return nil, err
		case !ok:
			return nil, xdpy.ErrWouldBlock
		case reply == nil:
			// Ready with no reply: the transport knows none will
			// ever come for seq.
			return nil, d.maybeError()
		}
		return reply, nil
	}

	if err := d.bail(); err != nil {
		return nil, err
	}

	reply, xerr := xcbWaitForReply(d.conn, seq)
	switch {
	case xerr != nil:
		return nil, takeX11Error(xerr)
	case reply == nil:
		// Both nil means the connection died underneath us.
		return nil, d.maybeError()
	}

	data, fds := takeReply(reply, d.takeHasFDs(seq))
	debug.Printf("xcb: reply for %v (%v bytes, %v fds)", seq, len(data), len(fds))
	return &xdpy.Reply{Data: data, FDs: fds}, nil
}

// PollForReply checks for the reply for seq without blocking. The
// bool result reports whether anything was ready. A ready, nil reply
// means libxcb knows no reply will ever arrive.
func (d *Display) PollForReply(seq uint64) (*xdpy.Reply, bool, error) {
	if err := d.bail(); err != nil {
		return nil, false, err
	}

	found, reply, xerr := xcbPollForReply(d.conn, seq)
	switch {
	case !found:
		return nil, false, nil
	case xerr != nil:
		return nil, true, takeX11Error(xerr)
	case reply == nil:
		return nil, true, nil
	}

	data, fds := takeReply(reply, d.takeHasFDs(seq))
	return &xdpy.Reply{Data: data, FDs: fds}, true, nil
}

// CheckRequest confirms that the checked request seq completed
// without a protocol error, forcing a round trip if it is still in
// flight.
func (d *Display) CheckRequest(seq uint64) error {
	if err := d.bail(); err != nil {
		return err
	}

	if xerr := xcbRequestCheck(d.conn, seq); xerr != nil {
		return takeX11Error(xerr)
	}
	return d.takeError()
}

// WaitForEvent returns the next event, blocking until one arrives.
// Under a NonBlocking Config it returns xdpy.ErrWouldBlock instead
// of blocking.
func (d *Display) WaitForEvent() (xdpy.Event, error) {
	if d.cfg.NonBlocking {
		ev, err := d.PollForEvent()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, xdpy.ErrWouldBlock
		}
		return ev, nil
	}

	if err := d.bail(); err != nil {
		return nil, err
	}

	p := xcbWaitForEvent(d.conn)
	if p == nil {
		return nil, d.maybeError()
	}

	ev := takeEvent(p)
	debug.Printf("xcb: event %v (seq %v)", ev.Code(), ev.Sequence())
	return ev, nil
}

// PollForEvent returns the next queued event without blocking, or a
// nil event when the queue is empty.
func (d *Display) PollForEvent() (xdpy.Event, error) {
	if err := d.bail(); err != nil {
		return nil, err
	}

	p := xcbPollForEvent(d.conn)
	if p == nil {
		// A nil event either means an empty queue or a dead
		// connection.
		return nil, d.takeError()
	}

	return takeEvent(p), nil
}

// Flush writes buffered requests to the server.
func (d *Display) Flush() error {
	if err := d.bail(); err != nil {
		return err
	}

	if xcbFlush(d.conn) <= 0 {
		return d.maybeError()
	}
	return nil
}

// GenerateID allocates a fresh resource ID.
func (d *Display) GenerateID() (uint32, error) {
	if err := d.bail(); err != nil {
		return 0, err
	}

	xid := xcbGenerateID(d.conn)
	if xid == ^uint32(0) {
		return 0, d.maybeError()
	}
	return xid, nil
}

// MaximumRequestLength is the longest request, in 4-byte units, that
// the server accepts. It may involve a round trip the first time
// libxcb computes it.
func (d *Display) MaximumRequestLength() uint32 {
	if err := d.bail(); err != nil {
		return 0
	}
	return xcbMaxRequestLen(d.conn)
}

// Err reports the connection's terminal error state.
func (d *Display) Err() error {
	if err := d.err.Load(); err != nil {
		return err
	}
	return nil
}

// Close shuts the connection down, disconnecting the native
// connection if this Display owns it. It is idempotent, and it
// unblocks any goroutine waiting on the connection.
func (d *Display) Close() error {
	d.close.Do(func() {
		d.err.CompareAndSwap(nil, &xdpy.ConnError{Code: xdpy.ConnClosed})
		if d.own {
			xcbDisconnect(d.conn)
		}
	})
	return nil
}
