package xdpy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(code uint8) Event {
	ev := make(Event, 32)
	ev[0] = code
	return ev
}

func TestPending(t *testing.T) {
	d := fakeDisplay{events: []Event{testEvent(2), testEvent(3), testEvent(4)}}

	var codes []uint8
	for ev, err := range Pending(&d) {
		require.NoError(t, err)
		codes = append(codes, ev.Code())
	}
	assert.Equal(t, []uint8{2, 3, 4}, codes)

	// The queue is now empty, so another drain yields nothing.
	for range Pending(&d) {
		t.Fatal("drained an event from an empty queue")
	}
}

func TestPendingStopsEarly(t *testing.T) {
	d := fakeDisplay{events: []Event{testEvent(2), testEvent(3), testEvent(4)}}

	for range Pending(&d) {
		break
	}
	assert.Len(t, d.events, 2, "breaking must leave the rest queued")
}

func TestPendingError(t *testing.T) {
	connErr := &ConnError{Code: ConnIO}
	d := fakeDisplay{failErr: connErr}

	var got error
	for ev, err := range Pending(&d) {
		assert.Nil(t, ev)
		got = err
	}
	assert.Same(t, error(connErr), got)
}
