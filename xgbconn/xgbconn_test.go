package xgbconn

import (
	"errors"
	"os"
	"testing"
	"time"

	"deedles.dev/xdpy"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolErrorConversion(t *testing.T) {
	var d Display

	// A typed error from the transport must surface in wire form,
	// and must not latch the connection.
	err := d.convert(xproto.WindowError{Sequence: 7, BadValue: 42})
	var xerr *xdpy.X11Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, uint16(7), xerr.Sequence)
	assert.Equal(t, uint32(42), xerr.Bad)
	assert.NoError(t, d.Err())

	ev, err := d.takeEvent(nil, xproto.AccessError{Sequence: 9})
	assert.Nil(t, ev)
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, uint16(9), xerr.Sequence)
	assert.NoError(t, d.Err())

	// Anything untyped is the transport dying, which does latch.
	err = d.convert(errors.New("broken pipe"))
	var connErr *xdpy.ConnError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, xdpy.ConnIO, connErr.Code)
	assert.Error(t, d.Err())
}

func testDisplay(t *testing.T, cfg xdpy.Config) *Display {
	t.Helper()
	if os.Getenv("DISPLAY") == "" {
		t.Skip("no X server available")
	}

	dl := Dialer{Config: cfg}
	d, err := dl.Connect("")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestConnect(t *testing.T) {
	d := testDisplay(t, xdpy.Config{})

	setup, err := d.Setup()
	require.NoError(t, err)
	assert.Equal(t, uint16(11), setup.ProtocolMajor)
	assert.NotZero(t, setup.ResourceIDMask)

	assert.NotNil(t, d.XGB())
	assert.NotZero(t, d.MaximumRequestLength())
	assert.NoError(t, d.Err())
}

func TestRoundTrip(t *testing.T) {
	d := testDisplay(t, xdpy.Config{})

	focus, _, err := xdpy.InputFocus(d)
	require.NoError(t, err)
	assert.NotZero(t, focus)

	require.NoError(t, xdpy.Synchronize(d))
}

func TestQueryExtension(t *testing.T) {
	d := testDisplay(t, xdpy.Config{})

	info, err := xdpy.QueryExtension(d, "BIG-REQUESTS")
	require.NoError(t, err)
	require.NotNil(t, info)

	info, err = xdpy.QueryExtension(d, "NO-SUCH-EXTENSION")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestGenerateID(t *testing.T) {
	d := testDisplay(t, xdpy.Config{})

	a, err := d.GenerateID()
	require.NoError(t, err)
	b, err := d.GenerateID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFDPassingRejected(t *testing.T) {
	d := testDisplay(t, xdpy.Config{})

	_, err := d.SendRequest(&xdpy.Request{
		Data:    []byte{127, 0, 1, 0},
		NoReply: true,
		FDs:     []int{0},
	})
	assert.ErrorIs(t, err, ErrFDPassing)

	_, err = d.SendRequest(&xdpy.Request{
		Data:        []byte{127, 0, 1, 0},
		ReplyHasFDs: true,
	})
	assert.ErrorIs(t, err, ErrFDPassing)

	// Rejection is not terminal.
	assert.NoError(t, d.Err())
	require.NoError(t, xdpy.Synchronize(d))
}

func TestWaitOnceOnly(t *testing.T) {
	d := testDisplay(t, xdpy.Config{})

	seq, err := xdpy.GetInputFocus(d)
	require.NoError(t, err)

	reply, err := d.WaitForReply(seq)
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Data)

	_, err = d.WaitForReply(seq)
	assert.Error(t, err)
}

func TestNonBlockingReply(t *testing.T) {
	d := testDisplay(t, xdpy.Config{NonBlocking: true})

	seq, err := xdpy.GetInputFocus(d)
	require.NoError(t, err)

	// The wait must never block; it reports ErrWouldBlock until the
	// reply shows up and stays claimable in the meantime.
	var reply *xdpy.Reply
	require.Eventually(t, func() bool {
		r, err := d.WaitForReply(seq)
		if errors.Is(err, xdpy.ErrWouldBlock) {
			return false
		}
		require.NoError(t, err)
		reply = r
		return true
	}, 5*time.Second, 2*time.Millisecond)
	assert.NotEmpty(t, reply.Data)

	// Collected means gone.
	_, err = d.WaitForReply(seq)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, xdpy.ErrWouldBlock)

	_, err = d.WaitForReply(99999)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, xdpy.ErrWouldBlock)
}

func TestNonBlocking(t *testing.T) {
	d := testDisplay(t, xdpy.Config{NonBlocking: true})
	require.NoError(t, xdpy.Synchronize(d))

	for ev, err := range xdpy.Pending(d) {
		require.NoError(t, err)
		_ = ev
	}

	_, err := d.WaitForEvent()
	assert.ErrorIs(t, err, xdpy.ErrWouldBlock)
}

func TestClose(t *testing.T) {
	d := testDisplay(t, xdpy.Config{})
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	var connErr *xdpy.ConnError
	require.ErrorAs(t, d.Err(), &connErr)
	assert.Equal(t, xdpy.ConnClosed, connErr.Code)

	_, err := xdpy.NoOperation(d)
	assert.Same(t, d.Err(), err)
}
