//go:build !xdpy_dl

package xcb

// #cgo pkg-config: xcb
// #include <stdlib.h>
// #include <string.h>
// #include <sys/uio.h>
// #include <xcb/xcb.h>
// #include <xcb/xcbext.h>
//
// // xcb_send_request wants scratch iovec slots in front of the ones
// // it is handed, so the request goes in the tail of a fixed array.
// static uint64_t xdpy_send_request(xcb_connection_t *c, int flags, void *data,
//                                   size_t len, int isvoid, int nfds, int *fds) {
// 	struct iovec iov[3];
// 	xcb_protocol_request_t req;
// 	memset(iov, 0, sizeof(iov));
// 	memset(&req, 0, sizeof(req));
// 	iov[2].iov_base = data;
// 	iov[2].iov_len = len;
// 	req.count = 1;
// 	req.isvoid = (uint8_t)isvoid;
// 	if (nfds > 0) {
// 		return xcb_send_request_with_fds64(c, flags, &iov[2], &req, nfds, fds);
// 	}
// 	return xcb_send_request64(c, flags, &iov[2], &req);
// }
import "C"

import "unsafe"

func xcbConnect(name string) (unsafe.Pointer, int) {
	var cname *C.char
	if name != "" {
		cname = C.CString(name)
		defer C.free(unsafe.Pointer(cname))
	}

	var screen C.int
	conn := C.xcb_connect(cname, &screen)
	return unsafe.Pointer(conn), int(screen)
}

func xcbConnectAuth(name string, authName, authData []byte) (unsafe.Pointer, int) {
	var cname *C.char
	if name != "" {
		cname = C.CString(name)
		defer C.free(unsafe.Pointer(cname))
	}

	an := C.CBytes(authName)
	defer C.free(an)
	ad := C.CBytes(authData)
	defer C.free(ad)
	auth := C.xcb_auth_info_t{
		namelen: C.int(len(authName)),
		name:    (*C.char)(an),
		datalen: C.int(len(authData)),
		data:    (*C.char)(ad),
	}

	var screen C.int
	conn := C.xcb_connect_to_display_with_auth_info(cname, &auth, &screen)
	return unsafe.Pointer(conn), int(screen)
}

func xcbConnectFD(fd int, authName, authData []byte) unsafe.Pointer {
	if len(authName) == 0 && len(authData) == 0 {
		return unsafe.Pointer(C.xcb_connect_to_fd(C.int(fd), nil))
	}

	an := C.CBytes(authName)
	defer C.free(an)
	ad := C.CBytes(authData)
	defer C.free(ad)
	auth := C.xcb_auth_info_t{
		namelen: C.int(len(authName)),
		name:    (*C.char)(an),
		datalen: C.int(len(authData)),
		data:    (*C.char)(ad),
	}

	return unsafe.Pointer(C.xcb_connect_to_fd(C.int(fd), &auth))
}

func xcbDisconnect(conn unsafe.Pointer) {
	C.xcb_disconnect((*C.xcb_connection_t)(conn))
}

func xcbHasError(conn unsafe.Pointer) int {
	return int(C.xcb_connection_has_error((*C.xcb_connection_t)(conn)))
}

func xcbFD(conn unsafe.Pointer) int {
	return int(C.xcb_get_file_descriptor((*C.xcb_connection_t)(conn)))
}

func xcbGetSetup(conn unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.xcb_get_setup((*C.xcb_connection_t)(conn)))
}

func xcbGenerateID(conn unsafe.Pointer) uint32 {
	return uint32(C.xcb_generate_id((*C.xcb_connection_t)(conn)))
}

func xcbFlush(conn unsafe.Pointer) int {
	return int(C.xcb_flush((*C.xcb_connection_t)(conn)))
}

func xcbMaxRequestLen(conn unsafe.Pointer) uint32 {
	return uint32(C.xcb_get_maximum_request_length((*C.xcb_connection_t)(conn)))
}

func xcbWaitForEvent(conn unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.xcb_wait_for_event((*C.xcb_connection_t)(conn)))
}

func xcbPollForEvent(conn unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.xcb_poll_for_event((*C.xcb_connection_t)(conn)))
}

func xcbSendRequest(conn unsafe.Pointer, flags int, data []byte, isvoid bool, fds []int) uint64 {
	buf := C.CBytes(data)
	defer C.free(buf)

	var isvoidC C.int
	if isvoid {
		isvoidC = 1
	}

	if len(fds) > 0 {
		cfds := make([]C.int, len(fds))
		for i, fd := range fds {
			cfds[i] = C.int(fd)
		}
		return uint64(C.xdpy_send_request(
			(*C.xcb_connection_t)(conn), C.int(flags),
			buf, C.size_t(len(data)), isvoidC,
			C.int(len(cfds)), &cfds[0],
		))
	}

	return uint64(C.xdpy_send_request(
		(*C.xcb_connection_t)(conn), C.int(flags),
		buf, C.size_t(len(data)), isvoidC,
		0, nil,
	))
}

func xcbWaitForReply(conn unsafe.Pointer, seq uint64) (reply, xerr unsafe.Pointer) {
	var cerr *C.xcb_generic_error_t
	r := C.xcb_wait_for_reply64((*C.xcb_connection_t)(conn), C.uint64_t(seq), &cerr)
	return r, unsafe.Pointer(cerr)
}

func xcbPollForReply(conn unsafe.Pointer, seq uint64) (found bool, reply, xerr unsafe.Pointer) {
	var r unsafe.Pointer
	var cerr *C.xcb_generic_error_t
	ok := C.xcb_poll_for_reply64((*C.xcb_connection_t)(conn), C.uint64_t(seq), &r, &cerr)
	return ok != 0, r, unsafe.Pointer(cerr)
}

func xcbRequestCheck(conn unsafe.Pointer, seq uint64) unsafe.Pointer {
	cookie := C.xcb_void_cookie_t{sequence: C.uint(seq)}
	return unsafe.Pointer(C.xcb_request_check((*C.xcb_connection_t)(conn), cookie))
}

func xcbFree(p unsafe.Pointer) {
	C.free(p)
}
