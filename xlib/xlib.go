// Package xlib provides a display connection backed by a native
// libX11 Display.
//
// Every Xlib display owns an xcb_connection_t underneath, and this
// package drives the protocol entirely through it. The Xlib handle
// exists for interop: RawDisplay exposes the Display pointer so the
// connection can be shared with toolkits and drivers that insist on
// Xlib, while the Go side keeps the full capability set of an
// xcb.Display.
//
// The event queue is owned by the XCB side of the connection. Mixing
// in native Xlib calls that read events will not work.
//
// By default the package links against libX11 through cgo. Building
// with the xdpy_dl tag loads libX11.so.6 and libX11-xcb.so.1 at
// runtime instead.
package xlib

import (
	"sync"
	"unsafe"

	"deedles.dev/xdpy"
	"deedles.dev/xdpy/xcb"
)

// Display is an xdpy.Display that wraps a libX11 Display. It behaves
// exactly like the xcb.Display it embeds.
type Display struct {
	*xcb.Display

	dpy   unsafe.Pointer
	own   bool
	close sync.Once
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

var initThreads sync.Once

// ConnectThreadSafe is Connect after enabling libX11's internal
// locking with XInitThreads. Use it when the raw Display pointer
// will be used from more than one thread. XInitThreads must run
// before any other Xlib call in the process, so the first connection
// should be a thread-safe one.
func ConnectThreadSafe(display string) (*Display, error) {
	initThreads.Do(xlibInitThreads)
	return Connect(display)
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
	dpy := xlibOpenDisplay(display)
	if dpy == nil {
		return nil, &xdpy.ConnError{Code: xdpy.ConnIO}
	}
	return wrap(dpy, true, dl.Config)
}

// Wrap creates a Display around an existing libX11 Display pointer.
// If disconnect is true, the Display takes ownership and Close will
// close the native display; otherwise the caller keeps the
// obligation to close it, after this Display is no longer in use.
//
// Wrapping moves ownership of the connection's event queue to the
// XCB side permanently, even if the Display is created without
// ownership of the handle.
func Wrap(ptr unsafe.Pointer, disconnect bool, cfg xdpy.Config) (*Display, error) {
	if ptr == nil {
		return nil, &xdpy.ConnError{Code: xdpy.ConnUnknown}
	}
	return wrap(ptr, disconnect, cfg)
}

func wrap(dpy unsafe.Pointer, own bool, cfg xdpy.Config) (*Display, error) {
	conn := xlibGetXCBConnection(dpy)
	if conn == nil {
		if own {
			xlibCloseDisplay(dpy)
		}
		return nil, &xdpy.ConnError{Code: xdpy.ConnUnknown}
	}

	// Route events through xcb so that WaitForEvent and friends see
	// them. Without this Xlib's own queue would swallow them.
	xlibSetEventQueueOwner(dpy, eventQueueXCB)

	// The xcb.Display borrows the connection. The Display pointer
	// owns it, and XCloseDisplay is the only correct way to free it.
	d := Display{
		Display: xcb.Wrap(conn, false, xlibDefaultScreen(dpy), cfg),
		dpy:     dpy,
		own:     own,
	}
	return &d, nil
}

// RawDisplay returns the underlying libX11 Display pointer for
// interop with native code. The pointer is borrowed: it is valid
// until the Display is closed, and the borrower must not close it.
func (d *Display) RawDisplay() unsafe.Pointer {
	return d.dpy
}

func (d *Display) closeNative() {
	d.close.Do(func() {
		if d.own {
			xlibCloseDisplay(d.dpy)
		}
	})
}

// Close shuts the connection down, closing the native display if
// this Display owns it. It is idempotent.
func (d *Display) Close() error {
	// The embedded Display does not own the xcb_connection_t, so
	// this only latches its closed state.
	d.Display.Close()
	d.closeNative()
	return nil
}
