// Package xgbconn provides a display connection backed by a pure Go
// XGB connection rather than a native library.
//
// It exists for programs that want the same capability surface over
// every backend. Without a native handle underneath there is nothing
// for RawConnection to expose, so the package offers XGB instead,
// and file descriptor passing is not available.
package xgbconn

import (
	"errors"
	"sync"
	"sync/atomic"

	"deedles.dev/xdpy"
	"deedles.dev/xdpy/internal/debug"
	"github.com/BurntSushi/xgb"

	// Register the core protocol's event and error parsers.
	_ "github.com/BurntSushi/xgb/xproto"
)

// ErrFDPassing is returned by SendRequest for requests that carry or
// expect file descriptors, which this backend cannot transport.
var ErrFDPassing = errors.New("xgbconn: file descriptor passing is not supported")

// Display is an xdpy.Display that wraps an *xgb.Conn.
//
// The sequence numbers it hands out are the transport's own 16-bit
// ones, widened. More than 65535 simultaneously outstanding replies
// will collide.
type Display struct {
	conn *xgb.Conn
	cfg  xdpy.Config

	err   atomic.Pointer[xdpy.ConnError]
	close sync.Once
	setup func() (*xdpy.Setup, error)

	// mu guards cookies, the in-flight cookies of requests that can
	// still be waited on or checked, and waits, the reply waits in
	// progress under a NonBlocking Config.
	mu      sync.Locker
	cookies map[uint64]*xgb.Cookie
	waits   map[uint64]*pendingReply
}

// pendingReply is a reply wait running in the background. The
// transport only exposes a blocking wait, so polling adapts it with
// a goroutine. data and err are valid once done is closed.
type pendingReply struct {
	done chan struct{}
	data []byte
	err  error
}

var _ xdpy.Display = (*Display)(nil)

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
}

// Connect opens a connection to the server named by display, falling
// back to $DISPLAY when it is empty.
func (dl *Dialer) Connect(display string) (*Display, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, &xdpy.ConnError{Code: xdpy.ConnIO, Err: err}
	}
	return Wrap(conn, dl.Config), nil
}

// Wrap creates a Display around an existing XGB connection. The
// Display takes ownership: Close closes the connection.
func Wrap(conn *xgb.Conn, cfg xdpy.Config) *Display {
	d := Display{
		conn:    conn,
		cfg:     cfg,
		mu:      cfg.NewLocker(),
		cookies: make(map[uint64]*xgb.Cookie),
		waits:   make(map[uint64]*pendingReply),
	}
	d.setup = sync.OnceValues(d.parseSetup)
	return &d
}

// XGB returns the underlying XGB connection. It remains usable
// directly, including alongside this Display.
func (d *Display) XGB() *xgb.Conn {
	return d.conn
}

func (d *Display) bail() error {
	if err := d.err.Load(); err != nil {
		return err
	}
	return nil
}

// fail latches err as the connection's terminal error.
func (d *Display) fail(code xdpy.ConnCode, err error) error {
	d.err.CompareAndSwap(nil, &xdpy.ConnError{Code: code, Err: err})
	return d.err.Load()
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
	return xdpy.ParseSetup(d.conn.SetupBytes)
}

// DefaultScreen is the screen number the display name selected.
func (d *Display) DefaultScreen() int {
	return d.conn.DefaultScreen
}

// SendRequest submits a pre-encoded request. Requests involving file
// descriptors fail with ErrFDPassing.
func (d *Display) SendRequest(req *xdpy.Request) (uint64, error) {
	if err := d.bail(); err != nil {
		return 0, err
	}
	if len(req.FDs) > 0 || req.ReplyHasFDs {
		return 0, ErrFDPassing
	}

	reply := !req.NoReply
	checked := req.Checked || reply
	cookie := d.conn.NewCookie(checked, reply)
	d.conn.NewRequest(req.Data, cookie)

	seq := uint64(cookie.Sequence)
	if checked || reply {
		d.mu.Lock()
		d.cookies[seq] = cookie
		d.mu.Unlock()
	}

	debug.Printf("xgbconn: sent request %v (%v bytes)", seq, len(req.Data))
	return seq, nil
}

func (d *Display) takeCookie(seq uint64) (*xgb.Cookie, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cookie, ok := d.cookies[seq]
	delete(d.cookies, seq)
	return cookie, ok
}

// protocolError converts a typed transport error into wire form so
// that callers see the same error type over every backend. The
// transport parses errors into typed values and does not keep the
// numeric error code or opcodes, so Code, Minor, and Major are zero.
func protocolError(xerr xgb.Error) *xdpy.X11Error {
	return &xdpy.X11Error{
		Sequence: xerr.SequenceId(),
		Bad:      xerr.BadId(),
	}
}

// convert maps an error from XGB into the usual taxonomy. Protocol
// errors become an *xdpy.X11Error; anything else means the transport
// is gone and latches.
func (d *Display) convert(err error) error {
	var xerr xgb.Error
	if errors.As(err, &xerr) {
		return protocolError(xerr)
	}
	return d.fail(xdpy.ConnIO, err)
}

// WaitForReply returns the reply for seq, blocking until it arrives.
// Under a NonBlocking Config it returns xdpy.ErrWouldBlock instead
// of blocking, and the reply stays claimable until a later call
// collects it. A collected sequence number cannot be waited on
// again.
func (d *Display) WaitForReply(seq uint64) (*xdpy.Reply, error) {
	if err := d.bail(); err != nil {
		return nil, err
	}
	if d.cfg.NonBlocking {
		return d.pollReply(seq)
	}

	cookie, ok := d.takeCookie(seq)
	if !ok {
		return nil, errors.New("xgbconn: no pending request for sequence number")
	}

	data, err := cookie.Reply()
	if err != nil {
		return nil, d.convert(err)
	}
	debug.Printf("xgbconn: reply for %v (%v bytes)", seq, len(data))
	return &xdpy.Reply{Data: data}, nil
}

func (d *Display) pollReply(seq uint64) (*xdpy.Reply, error) {
	d.mu.Lock()
	w, ok := d.waits[seq]
	if !ok {
		cookie, ok := d.cookies[seq]
		if !ok {
			d.mu.Unlock()
			return nil, errors.New("xgbconn: no pending request for sequence number")
		}
		delete(d.cookies, seq)

		w = &pendingReply{done: make(chan struct{})}
		d.waits[seq] = w
		go func() {
			w.data, w.err = cookie.Reply()
			close(w.done)
		}()
	}
	d.mu.Unlock()

	select {
	case <-w.done:
	default:
		return nil, xdpy.ErrWouldBlock
	}

	d.mu.Lock()
	delete(d.waits, seq)
	d.mu.Unlock()

	if w.err != nil {
		return nil, d.convert(w.err)
	}
	debug.Printf("xgbconn: reply for %v (%v bytes)", seq, len(w.data))
	return &xdpy.Reply{Data: w.data}, nil
}

// CheckRequest confirms that the checked request seq completed
// without a protocol error, forcing a round trip if it is still in
// flight. A sequence number can only be checked once.
func (d *Display) CheckRequest(seq uint64) error {
	if err := d.bail(); err != nil {
		return err
	}

	cookie, ok := d.takeCookie(seq)
	if !ok {
		return errors.New("xgbconn: no pending request for sequence number")
	}

	if err := cookie.Check(); err != nil {
		return d.convert(err)
	}
	return nil
}

func (d *Display) takeEvent(ev xgb.Event, xerr xgb.Error) (xdpy.Event, error) {
	switch {
	case xerr != nil:
		return nil, protocolError(xerr)
	case ev == nil:
		// Both nil means the connection is gone.
		return nil, d.fail(xdpy.ConnIO, nil)
	}

	event := xdpy.Event(ev.Bytes())
	debug.Printf("xgbconn: event %v (seq %v)", event.Code(), event.Sequence())
	return event, nil
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
	return d.takeEvent(d.conn.WaitForEvent())
}

// PollForEvent returns the next queued event without blocking, or a
// nil event when the queue is empty.
func (d *Display) PollForEvent() (xdpy.Event, error) {
	if err := d.bail(); err != nil {
		return nil, err
	}

	ev, xerr := d.conn.PollForEvent()
	if ev == nil && xerr == nil {
		return nil, nil
	}
	return d.takeEvent(ev, xerr)
}

// Flush is a no-op. The underlying connection writes requests to the
// socket as they are submitted.
func (d *Display) Flush() error {
	return d.bail()
}

// GenerateID allocates a fresh resource ID.
func (d *Display) GenerateID() (uint32, error) {
	if err := d.bail(); err != nil {
		return 0, err
	}

	xid, err := d.conn.NewId()
	if err != nil {
		return 0, d.fail(xdpy.ConnIO, err)
	}
	return xid, nil
}

// MaximumRequestLength is the longest request, in 4-byte units, that
// the server accepts.
func (d *Display) MaximumRequestLength() uint32 {
	setup, err := d.Setup()
	if err != nil {
		return 0
	}
	return uint32(setup.MaximumRequestLength)
}

// Err reports the connection's terminal error state.
func (d *Display) Err() error {
	if err := d.err.Load(); err != nil {
		return err
	}
	return nil
}

// Close shuts the connection down. It is idempotent, and it unblocks
// any goroutine waiting on the connection.
func (d *Display) Close() error {
	d.close.Do(func() {
		d.err.CompareAndSwap(nil, &xdpy.ConnError{Code: xdpy.ConnClosed})
		d.conn.Close()
	})
	return nil
}
