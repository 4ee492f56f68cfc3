//go:build !xdpy_dl

package xlib

// #cgo pkg-config: x11 x11-xcb
//
// #include <stdlib.h>
// #include <X11/Xlib.h>
// #include <X11/Xlib-xcb.h>
import "C"

import "unsafe"

const eventQueueXCB = C.XCBOwnsEventQueue

func xlibOpenDisplay(name string) unsafe.Pointer {
	if name == "" {
		return unsafe.Pointer(C.XOpenDisplay(nil))
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return unsafe.Pointer(C.XOpenDisplay(cname))
}

func xlibCloseDisplay(dpy unsafe.Pointer) {
	C.XCloseDisplay((*C.Display)(dpy))
}

func xlibInitThreads() {
	C.XInitThreads()
}

func xlibDefaultScreen(dpy unsafe.Pointer) int {
	return int(C.XDefaultScreen((*C.Display)(dpy)))
}

func xlibGetXCBConnection(dpy unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.XGetXCBConnection((*C.Display)(dpy)))
}

func xlibSetEventQueueOwner(dpy unsafe.Pointer, owner int) {
	C.XSetEventQueueOwner((*C.Display)(dpy), C.enum_XEventQueueOwner(owner))
}
