package xdpy

import "deedles.dev/xdpy/internal/bin"

// Request is a protocol request that has already been encoded by the
// caller, including its 4-byte header. The adapter passes the bytes
// through unmodified.
type Request struct {
	Data []byte

	// FDs are file descriptors to attach to the request. Ownership
	// passes to the transport when the request is sent.
	FDs []int

	// NoReply marks a request that the protocol defines as having no
	// reply.
	NoReply bool

	// Checked asks for errors caused by a no-reply request to be
	// reported through CheckRequest instead of the event queue.
	Checked bool

	// ReplyHasFDs marks a request whose reply carries file
	// descriptors.
	ReplyHasFDs bool
}

// Reply is a raw reply buffer in wire layout, along with any file
// descriptors that accompanied it.
type Reply struct {
	Data []byte
	FDs  []int
}

// Sequence is the low 16 bits of the sequence number of the request
// that produced the reply.
func (r *Reply) Sequence() uint16 {
	return bin.Value16[uint16]([2]byte(r.Data[2:4]))
}

// GenericEventCode is the response code of Generic Event extension
// events, which are the only variable-length events.
const GenericEventCode = 35

// Event is a raw event buffer in wire layout. Fixed-size events are
// 32 bytes; generic events are 32 + 4*length bytes with no gap, the
// transport having removed any bookkeeping its native library
// inserted.
type Event []byte

// Code is the event's response code, with the sent-event bit cleared.
func (ev Event) Code() uint8 {
	return ev[0] &^ 0x80
}

// Synthetic reports whether the event was produced by a SendEvent
// request rather than by the server itself.
func (ev Event) Synthetic() bool {
	return ev[0]&0x80 != 0
}

// Sequence is the low 16 bits of the sequence number of the last
// request the server had processed when it emitted the event. It is
// meaningless for KeymapNotify, which has no sequence field.
func (ev Event) Sequence() uint16 {
	return bin.Value16[uint16]([2]byte(ev[2:4]))
}

// Generic reports whether this is a Generic Event extension event.
func (ev Event) Generic() bool {
	return ev.Code() == GenericEventCode
}

// GenericExtension is the major opcode of the extension that emitted
// a generic event.
func (ev Event) GenericExtension() uint8 {
	return ev[1]
}

// GenericType is the extension-defined event type of a generic event.
func (ev Event) GenericType() uint16 {
	return bin.Value16[uint16]([2]byte(ev[8:10]))
}
