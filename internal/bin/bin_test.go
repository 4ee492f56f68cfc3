package bin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xdeadbeef, ^uint32(0)} {
		assert.Equal(t, v, Value[uint32](Bytes(v)))
	}
	for _, v := range []int32{-1, 0, 1 << 30} {
		assert.Equal(t, v, Value[int32](Bytes(v)))
	}
	for _, v := range []uint16{0, 1, 0xbeef, ^uint16(0)} {
		assert.Equal(t, v, Value16[uint16](Bytes16(v)))
	}
}
