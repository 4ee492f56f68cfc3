package xdpy

import (
	"fmt"

	"deedles.dev/xdpy/internal/bin"
)

// Core protocol opcodes for the few requests the adapters need
// themselves.
const (
	opGetInputFocus  = 43
	opQueryExtension = 98
	opNoOperation    = 127
)

func coreRequest(opcode, detail uint8, body []byte) []byte {
	pad := (4 - len(body)%4) % 4
	units := (4 + len(body) + pad) / 4

	buf := make([]byte, 0, 4*units)
	buf = append(buf, opcode, detail)
	lenb := bin.Bytes16(uint16(units))
	buf = append(buf, lenb[:]...)
	buf = append(buf, body...)
	return append(buf, make([]byte, pad)...)
}

// NoOperation submits a NoOperation request.
func NoOperation(d Display) (uint64, error) {
	return d.SendRequest(&Request{
		Data:    coreRequest(opNoOperation, 0, nil),
		NoReply: true,
	})
}

// GetInputFocus submits a GetInputFocus request and returns its
// sequence number. The reply is collected with WaitForReply.
func GetInputFocus(d Display) (uint64, error) {
	return d.SendRequest(&Request{
		Data: coreRequest(opGetInputFocus, 0, nil),
	})
}

// InputFocus performs a GetInputFocus round trip and decodes the
// reply.
func InputFocus(d Display) (focus uint32, revertTo uint8, err error) {
	seq, err := GetInputFocus(d)
	if err != nil {
		return 0, 0, err
	}
	reply, err := d.WaitForReply(seq)
	if err != nil {
		return 0, 0, err
	}
	if len(reply.Data) < 12 {
		return 0, 0, fmt.Errorf("short GetInputFocus reply: %v bytes", len(reply.Data))
	}

	return bin.Value[uint32]([4]byte(reply.Data[8:12])), reply.Data[1], nil
}

// Synchronize forces a full round trip, confirming that the server
// has processed every request submitted before it.
func Synchronize(d Display) error {
	seq, err := d.SendRequest(&Request{
		Data:    coreRequest(opNoOperation, 0, nil),
		NoReply: true,
		Checked: true,
	})
	if err != nil {
		return err
	}
	return d.CheckRequest(seq)
}

// ExtensionInfo describes a protocol extension present on the
// server.
type ExtensionInfo struct {
	// MajorOpcode is the opcode that the extension's requests use.
	MajorOpcode uint8

	// FirstEvent and FirstError are the bases of the extension's
	// event and error code ranges, or zero if it defines none.
	FirstEvent uint8
	FirstError uint8
}

// QueryExtension performs a QueryExtension round trip for the named
// extension. It returns nil without an error when the server does
// not have the extension.
func QueryExtension(d Display, name string) (*ExtensionInfo, error) {
	body := make([]byte, 0, 4+len(name))
	lenb := bin.Bytes16(uint16(len(name)))
	body = append(body, lenb[:]...)
	body = append(body, 0, 0)
	body = append(body, name...)

	seq, err := d.SendRequest(&Request{
		Data: coreRequest(opQueryExtension, 0, body),
	})
	if err != nil {
		return nil, err
	}

	reply, err := d.WaitForReply(seq)
	if err != nil {
		return nil, err
	}
	if len(reply.Data) < 12 {
		return nil, fmt.Errorf("short QueryExtension reply: %v bytes", len(reply.Data))
	}
	if reply.Data[8] == 0 {
		return nil, nil
	}

	return &ExtensionInfo{
		MajorOpcode: reply.Data[9],
		FirstEvent:  reply.Data[10],
		FirstError:  reply.Data[11],
	}, nil
}
