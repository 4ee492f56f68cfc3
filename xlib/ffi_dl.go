//go:build xdpy_dl

package xlib

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

const eventQueueXCB = 1

type xlibFuncs struct {
	openDisplay        func(name *byte) unsafe.Pointer
	closeDisplay       func(dpy unsafe.Pointer) int32
	initThreads        func() int32
	defaultScreen      func(dpy unsafe.Pointer) int32
	getXCBConnection   func(dpy unsafe.Pointer) unsafe.Pointer
	setEventQueueOwner func(dpy unsafe.Pointer, owner uint32)
}

var xlib = sync.OnceValue(func() *xlibFuncs {
	x11, err := purego.Dlopen("libX11.so.6", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		panic(err)
	}
	// XGetXCBConnection and XSetEventQueueOwner live in the bridge
	// library, not in libX11 itself.
	x11xcb, err := purego.Dlopen("libX11-xcb.so.1", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		panic(err)
	}

	var fn xlibFuncs
	purego.RegisterLibFunc(&fn.openDisplay, x11, "XOpenDisplay")
	purego.RegisterLibFunc(&fn.closeDisplay, x11, "XCloseDisplay")
	purego.RegisterLibFunc(&fn.initThreads, x11, "XInitThreads")
	purego.RegisterLibFunc(&fn.defaultScreen, x11, "XDefaultScreen")
	purego.RegisterLibFunc(&fn.getXCBConnection, x11xcb, "XGetXCBConnection")
	purego.RegisterLibFunc(&fn.setEventQueueOwner, x11xcb, "XSetEventQueueOwner")
	return &fn
})

func cstring(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

func xlibOpenDisplay(name string) unsafe.Pointer {
	if name == "" {
		return xlib().openDisplay(nil)
	}
	return xlib().openDisplay(cstring(name))
}

func xlibCloseDisplay(dpy unsafe.Pointer) {
	xlib().closeDisplay(dpy)
}

func xlibInitThreads() {
	xlib().initThreads()
}

func xlibDefaultScreen(dpy unsafe.Pointer) int {
	return int(xlib().defaultScreen(dpy))
}

func xlibGetXCBConnection(dpy unsafe.Pointer) unsafe.Pointer {
	return xlib().getXCBConnection(dpy)
}

func xlibSetEventQueueOwner(dpy unsafe.Pointer, owner int) {
	xlib().setEventQueueOwner(dpy, uint32(owner))
}
