// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/co2mond/internal/state"
	"github.com/tamzrod/co2mond/internal/transport"
)

// fakeDevice scripts a sequence of transfers. After the script runs
// out, BulkRead blocks until ctx is cancelled.
type fakeDevice struct {
	script []scripted
	pos    int
}

type scripted struct {
	data []byte
	err  error
}

func (f *fakeDevice) ID() string { return "fake" }

func (f *fakeDevice) FindBulkInEndpoint() (transport.Endpoint, error) {
	return 1, nil
}

func (f *fakeDevice) BulkRead(ctx context.Context, ep transport.Endpoint, buf []byte, timeout time.Duration) (int, error) {
	if f.pos >= len(f.script) {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	s := f.script[f.pos]
	f.pos++
	if s.err != nil {
		return 0, s.err
	}
	return copy(buf, s.data), nil
}

func (f *fakeDevice) Close() error { return nil }

func validFrame(ppm uint16) []byte {
	hi := byte(ppm >> 8)
	lo := byte(ppm)
	return []byte{0x50, hi, lo, 0x50 + hi + lo, 0x0D}
}

func newTestPoller(t *testing.T, dev transport.Device, st *state.State) *Poller {
	t.Helper()
	p, err := New(Config{DeviceID: "fake", Endpoint: 1, Timeout: time.Second}, dev, st)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return p
}

func TestPollOnce_AcceptUpdatesState(t *testing.T) {
	st := state.New()
	dev := &fakeDevice{script: []scripted{{data: validFrame(612)}}}

	res := newTestPoller(t, dev, st).PollOnce(context.Background())
	if res.Err != nil || res.Rejected {
		t.Fatalf("unexpected outcome: %+v", res)
	}
	if res.Reading == nil || res.Reading.PPM != 612 {
		t.Fatalf("reading=%+v want ppm=612", res.Reading)
	}

	r, ok := st.Snapshot()
	if !ok || r.PPM != 612 {
		t.Fatalf("state=%v ok=%v want ppm=612", r, ok)
	}
}

func TestPollOnce_TransportErrorLeavesState(t *testing.T) {
	st := state.New()
	dev := &fakeDevice{script: []scripted{{err: errors.New("stall")}}}

	res := newTestPoller(t, dev, st).PollOnce(context.Background())
	if res.Err == nil {
		t.Fatal("expected transport error in result")
	}
	if _, ok := st.Snapshot(); ok {
		t.Fatal("state must stay empty on transport error")
	}
}

func TestPollOnce_RejectedFrameLeavesState(t *testing.T) {
	st := state.New()
	dev := &fakeDevice{script: []scripted{
		{data: validFrame(455)},
		{data: []byte{0x50, 0x01, 0xC7, 0x18, 0xFF}}, // bad terminator
	}}
	p := newTestPoller(t, dev, st)

	p.PollOnce(context.Background())
	res := p.PollOnce(context.Background())

	if !res.Rejected {
		t.Fatal("expected rejection")
	}
	r, ok := st.Snapshot()
	if !ok || r.PPM != 455 {
		t.Fatalf("state=%v ok=%v, rejected frame must not overwrite", r, ok)
	}
}

// Errors and rejections interleave with accepts; state must hold the
// last accepted reading.
func TestRun_LastAcceptedWins(t *testing.T) {
	st := state.New()
	dev := &fakeDevice{script: []scripted{
		{data: validFrame(400)},
		{err: errors.New("timeout")},
		{data: []byte{0x00, 0x01, 0x02, 0x03, 0x04}}, // bad marker
		{data: validFrame(783)},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan Result)
	done := make(chan struct{})
	go func() {
		defer close(done)
		newTestPoller(t, dev, st).Run(ctx, out)
	}()

	accepted := 0
	for accepted < 2 {
		res := <-out
		if res.Reading != nil {
			accepted++
		}
	}

	cancel()
	<-done

	r, ok := st.Snapshot()
	if !ok || r.PPM != 783 {
		t.Fatalf("state=%v ok=%v want ppm=783", r, ok)
	}
}

// Cancellation must interrupt a blocked transfer and stop the loop.
func TestRun_CancelInterruptsInFlightRead(t *testing.T) {
	st := state.New()
	dev := &fakeDevice{} // empty script: first read blocks on ctx

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		newTestPoller(t, dev, st).Run(ctx, nil)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}
