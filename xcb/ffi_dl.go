//go:build xdpy_dl

package xcb

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

// Layout-compatible with xcb_protocol_request_t.
type protocolRequest struct {
	count  uintptr
	ext    uintptr
	opcode uint8
	isvoid uint8
}

// Layout-compatible with xcb_auth_info_t.
type authInfo struct {
	namelen int32
	name    *byte
	datalen int32
	data    *byte
}

// Function table resolved from libxcb at runtime. Everything the
// statically linked build reaches through cgo goes through here
// instead.
type xcbFuncs struct {
	connect              func(display *byte, screenp *int32) uintptr
	connectAuth          func(display *byte, auth *authInfo, screenp *int32) uintptr
	connectToFD          func(fd int32, auth *authInfo) uintptr
	getFileDescriptor    func(conn uintptr) int32
	hasError             func(conn uintptr) int32
	disconnect           func(conn uintptr)
	getSetup             func(conn uintptr) uintptr
	generateID           func(conn uintptr) uint32
	flush                func(conn uintptr) int32
	maximumRequestLength func(conn uintptr) uint32
	waitForEvent         func(conn uintptr) uintptr
	pollForEvent         func(conn uintptr) uintptr
	sendRequest64        func(conn uintptr, flags int32, iov *unix.Iovec, req *protocolRequest) uint64
	sendRequestFDs64     func(conn uintptr, flags int32, iov *unix.Iovec, req *protocolRequest, nfds uint32, fds *int32) uint64
	waitForReply64       func(conn uintptr, seq uint64, err *uintptr) uintptr
	pollForReply64       func(conn uintptr, seq uint64, reply *uintptr, err *uintptr) int32
	// xcb_void_cookie_t is a single unsigned int, which passes by
	// value exactly like its member.
	requestCheck func(conn uintptr, sequence uint32) uintptr
	free         func(ptr uintptr)
}

var xcb = sync.OnceValue(func() *xcbFuncs {
	lib, err := purego.Dlopen("libxcb.so.1", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		panic(fmt.Errorf("xcb: open libxcb dynamically: %w", err))
	}

	var f xcbFuncs
	purego.RegisterLibFunc(&f.connect, lib, "xcb_connect")
	purego.RegisterLibFunc(&f.connectAuth, lib, "xcb_connect_to_display_with_auth_info")
	purego.RegisterLibFunc(&f.connectToFD, lib, "xcb_connect_to_fd")
	purego.RegisterLibFunc(&f.getFileDescriptor, lib, "xcb_get_file_descriptor")
	purego.RegisterLibFunc(&f.hasError, lib, "xcb_connection_has_error")
	purego.RegisterLibFunc(&f.disconnect, lib, "xcb_disconnect")
	purego.RegisterLibFunc(&f.getSetup, lib, "xcb_get_setup")
	purego.RegisterLibFunc(&f.generateID, lib, "xcb_generate_id")
	purego.RegisterLibFunc(&f.flush, lib, "xcb_flush")
	purego.RegisterLibFunc(&f.maximumRequestLength, lib, "xcb_get_maximum_request_length")
	purego.RegisterLibFunc(&f.waitForEvent, lib, "xcb_wait_for_event")
	purego.RegisterLibFunc(&f.pollForEvent, lib, "xcb_poll_for_event")
	purego.RegisterLibFunc(&f.sendRequest64, lib, "xcb_send_request64")
	purego.RegisterLibFunc(&f.sendRequestFDs64, lib, "xcb_send_request_with_fds64")
	purego.RegisterLibFunc(&f.waitForReply64, lib, "xcb_wait_for_reply64")
	purego.RegisterLibFunc(&f.pollForReply64, lib, "xcb_poll_for_reply64")
	purego.RegisterLibFunc(&f.requestCheck, lib, "xcb_request_check")
	// dlsym on the libxcb handle searches its dependency chain, so
	// this resolves libc's free.
	purego.RegisterLibFunc(&f.free, lib, "free")
	return &f
})

func cstring(s string) *byte {
	if s == "" {
		return nil
	}
	b := append([]byte(s), 0)
	return &b[0]
}

func newAuthInfo(authName, authData []byte) *authInfo {
	auth := authInfo{
		namelen: int32(len(authName)),
		datalen: int32(len(authData)),
	}
	if len(authName) > 0 {
		auth.name = &authName[0]
	}
	if len(authData) > 0 {
		auth.data = &authData[0]
	}
	return &auth
}

func xcbConnect(name string) (unsafe.Pointer, int) {
	var screen int32
	conn := xcb().connect(cstring(name), &screen)
	return unsafe.Pointer(conn), int(screen)
}

func xcbConnectAuth(name string, authName, authData []byte) (unsafe.Pointer, int) {
	var screen int32
	auth := newAuthInfo(authName, authData)
	conn := xcb().connectAuth(cstring(name), auth, &screen)
	runtime.KeepAlive(authName)
	runtime.KeepAlive(authData)
	return unsafe.Pointer(conn), int(screen)
}

func xcbConnectFD(fd int, authName, authData []byte) unsafe.Pointer {
	var auth *authInfo
	if len(authName) > 0 || len(authData) > 0 {
		auth = newAuthInfo(authName, authData)
	}
	conn := xcb().connectToFD(int32(fd), auth)
	runtime.KeepAlive(authName)
	runtime.KeepAlive(authData)
	return unsafe.Pointer(conn)
}

func xcbDisconnect(conn unsafe.Pointer) {
	xcb().disconnect(uintptr(conn))
}

func xcbHasError(conn unsafe.Pointer) int {
	return int(xcb().hasError(uintptr(conn)))
}

func xcbFD(conn unsafe.Pointer) int {
	return int(xcb().getFileDescriptor(uintptr(conn)))
}

func xcbGetSetup(conn unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(xcb().getSetup(uintptr(conn)))
}

func xcbGenerateID(conn unsafe.Pointer) uint32 {
	return xcb().generateID(uintptr(conn))
}

func xcbFlush(conn unsafe.Pointer) int {
	return int(xcb().flush(uintptr(conn)))
}

func xcbMaxRequestLen(conn unsafe.Pointer) uint32 {
	return xcb().maximumRequestLength(uintptr(conn))
}

func xcbWaitForEvent(conn unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(xcb().waitForEvent(uintptr(conn)))
}

func xcbPollForEvent(conn unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(xcb().pollForEvent(uintptr(conn)))
}

func xcbSendRequest(conn unsafe.Pointer, flags int, data []byte, isvoid bool, fds []int) uint64 {
	// xcb_send_request wants scratch iovec slots in front of the one
	// it is handed.
	var iov [3]unix.Iovec
	if len(data) > 0 {
		iov[2].Base = &data[0]
	}
	iov[2].SetLen(len(data))

	req := protocolRequest{count: 1}
	if isvoid {
		req.isvoid = 1
	}

	var seq uint64
	if len(fds) > 0 {
		fds32 := make([]int32, len(fds))
		for i, fd := range fds {
			fds32[i] = int32(fd)
		}
		seq = xcb().sendRequestFDs64(uintptr(conn), int32(flags), &iov[2], &req, uint32(len(fds32)), &fds32[0])
	} else {
		seq = xcb().sendRequest64(uintptr(conn), int32(flags), &iov[2], &req)
	}
	runtime.KeepAlive(data)
	runtime.KeepAlive(&iov)
	return seq
}

func xcbWaitForReply(conn unsafe.Pointer, seq uint64) (reply, xerr unsafe.Pointer) {
	var cerr uintptr
	r := xcb().waitForReply64(uintptr(conn), seq, &cerr)
	return unsafe.Pointer(r), unsafe.Pointer(cerr)
}

func xcbPollForReply(conn unsafe.Pointer, seq uint64) (found bool, reply, xerr unsafe.Pointer) {
	var r, cerr uintptr
	ok := xcb().pollForReply64(uintptr(conn), seq, &r, &cerr)
	return ok != 0, unsafe.Pointer(r), unsafe.Pointer(cerr)
}

func xcbRequestCheck(conn unsafe.Pointer, seq uint64) unsafe.Pointer {
	return unsafe.Pointer(xcb().requestCheck(uintptr(conn), uint32(seq)))
}

func xcbFree(p unsafe.Pointer) {
	if p != nil {
		xcb().free(uintptr(p))
	}
}
