package xdpy

import (
	"fmt"

	"deedles.dev/xdpy/internal/bin"
)

// setupHeaderLen is the fixed part of the setup block that precedes
// the length field's coverage.
const setupHeaderLen = 8

// SetupLength returns the total byte length of a connection setup
// block, given at least its first 8 bytes.
func SetupLength(header []byte) (int, error) {
	if len(header) < setupHeaderLen {
		return 0, fmt.Errorf("short setup header: %v bytes", len(header))
	}
	n := bin.Value16[uint16]([2]byte(header[6:8]))
	return setupHeaderLen + 4*int(n), nil
}

// Setup holds the connection setup information that the server sends
// during the handshake. The fixed fields are decoded; the complete
// block, including the screen and pixmap format lists, remains
// available through Raw.
type Setup struct {
	ProtocolMajor uint16
	ProtocolMinor uint16
	ReleaseNumber uint32

	// ResourceIDBase and ResourceIDMask define the space of resource
	// IDs available to this client.
	ResourceIDBase uint32
	ResourceIDMask uint32

	MotionBufferSize uint32

	// MaximumRequestLength is in 4-byte units.
	MaximumRequestLength uint16

	ImageByteOrder uint8
	BitmapBitOrder uint8
	ScanlineUnit   uint8
	ScanlinePad    uint8

	MinKeycode uint8
	MaxKeycode uint8

	Vendor string

	// NumScreens and NumFormats count the entries in the lists that
	// follow the fixed fields in the raw block.
	NumScreens uint8
	NumFormats uint8

	raw []byte
}

// ParseSetup decodes a connection setup block in wire layout. The
// slice is retained.
func ParseSetup(data []byte) (*Setup, error) {
	total, err := SetupLength(data)
	if err != nil {
		return nil, err
	}
	if len(data) < total {
		return nil, fmt.Errorf("truncated setup block: have %v bytes, need %v", len(data), total)
	}
	if total < 40 {
		return nil, fmt.Errorf("setup block too small: %v bytes", total)
	}
	if data[0] != 1 {
		return nil, fmt.Errorf("setup block is not a success response: status %v", data[0])
	}

	s := Setup{
		ProtocolMajor:        bin.Value16[uint16]([2]byte(data[2:4])),
		ProtocolMinor:        bin.Value16[uint16]([2]byte(data[4:6])),
		ReleaseNumber:        bin.Value[uint32]([4]byte(data[8:12])),
		ResourceIDBase:       bin.Value[uint32]([4]byte(data[12:16])),
		ResourceIDMask:       bin.Value[uint32]([4]byte(data[16:20])),
		MotionBufferSize:     bin.Value[uint32]([4]byte(data[20:24])),
		MaximumRequestLength: bin.Value16[uint16]([2]byte(data[26:28])),
		NumScreens:           data[28],
		NumFormats:           data[29],
		ImageByteOrder:       data[30],
		BitmapBitOrder:       data[31],
		ScanlineUnit:         data[32],
		ScanlinePad:          data[33],
		MinKeycode:           data[34],
		MaxKeycode:           data[35],
		raw:                  data[:total],
	}

	vendorLen := int(bin.Value16[uint16]([2]byte(data[24:26])))
	if 40+vendorLen > total {
		return nil, fmt.Errorf("vendor string overruns setup block: %v bytes", vendorLen)
	}
	s.Vendor = string(data[40 : 40+vendorLen])

	return &s, nil
}

// Raw is the complete setup block in wire layout, for callers that
// decode the screen or format lists themselves.
func (s *Setup) Raw() []byte {
	return s.raw
}
