// Package bin contains utilities for dealing with binary
// representations.
//
// Everything works in the host byte order. libxcb hands its buffers
// over in the byte order the connection negotiated, which for
// connections opened by this process is the host's.
package bin

import "unsafe"

func Bytes[T ~int32 | ~uint32](v T) [4]byte {
	return *(*[4]byte)(unsafe.Pointer(&v))
}

func Value[T ~int32 | ~uint32](data [4]byte) T {
	return *(*T)(unsafe.Pointer(&data))
}

func Bytes16[T ~int16 | ~uint16](v T) [2]byte {
	return *(*[2]byte)(unsafe.Pointer(&v))
}

func Value16[T ~int16 | ~uint16](data [2]byte) T {
	return *(*T)(unsafe.Pointer(&data))
}
