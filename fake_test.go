package xdpy

import "fmt"

// fakeDisplay is a scripted Display for tests. Sequence numbers
// start at 1 and count up per request.
type fakeDisplay struct {
	sent    []*Request
	seq     uint64
	replies map[uint64]*Reply
	checks  map[uint64]error
	events  []Event
	failErr error
}

func (d *fakeDisplay) Setup() (*Setup, error)    { return nil, fmt.Errorf("no setup") }
func (d *fakeDisplay) DefaultScreen() int        { return 0 }
func (d *fakeDisplay) Flush() error              { return d.failErr }
func (d *fakeDisplay) GenerateID() (uint32, error) { return 0, d.failErr }
func (d *fakeDisplay) MaximumRequestLength() uint32 { return 0 }
func (d *fakeDisplay) Err() error                { return d.failErr }
func (d *fakeDisplay) Close() error              { return nil }

func (d *fakeDisplay) SendRequest(req *Request) (uint64, error) {
	if d.failErr != nil {
		return 0, d.failErr
	}
	d.sent = append(d.sent, req)
	d.seq++
	return d.seq, nil
}

func (d *fakeDisplay) WaitForReply(seq uint64) (*Reply, error) {
	if d.failErr != nil {
		return nil, d.failErr
	}
	reply, ok := d.replies[seq]
	if !ok {
		return nil, fmt.Errorf("no scripted reply for sequence %v", seq)
	}
	delete(d.replies, seq)
	return reply, nil
}

func (d *fakeDisplay) CheckRequest(seq uint64) error {
	if d.failErr != nil {
		return d.failErr
	}
	return d.checks[seq]
}

func (d *fakeDisplay) WaitForEvent() (Event, error) {
	ev, err := d.PollForEvent()
	if err == nil && ev == nil {
		return nil, fmt.Errorf("no scripted events left")
	}
	return ev, err
}

func (d *fakeDisplay) PollForEvent() (Event, error) {
	if len(d.events) == 0 {
		return nil, d.failErr
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, nil
}
