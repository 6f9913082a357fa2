// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/co2mond/internal/frame"
	"github.com/tamzrod/co2mond/internal/state"
	"github.com/tamzrod/co2mond/internal/transport"
)

// DefaultTimeout bounds one bulk transfer, matching the sensor's
// reference behavior of 5000 ms.
const DefaultTimeout = 5000 * time.Millisecond

// Config is the minimal runtime config the poller needs.
type Config struct {
	DeviceID string
	Endpoint transport.Endpoint
	Timeout  time.Duration
}

// Poller is the one background reader per session. It owns no state
// beyond its config; DeviceState is owned by the session and mutated
// here under its guard.
type Poller struct {
	cfg   Config
	dev   transport.Device
	state *state.State
}

// New creates a poller with immutable config.
func New(cfg Config, dev transport.Device, st *state.State) (*Poller, error) {
	if cfg.DeviceID == "" {
		return nil, errors.New("poller: device id required")
	}
	if dev == nil {
		return nil, errors.New("poller: transport required")
	}
	if st == nil {
		return nil, errors.New("poller: state required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Poller{cfg: cfg, dev: dev, state: st}, nil
}

// PollOnce performs exactly one read-validate-update cycle.
// Every failure is absorbed into the Result; nothing is retried here,
// the loop simply comes back around.
func (p *Poller) PollOnce(ctx context.Context) Result {
	res := Result{
		Device: p.cfg.DeviceID,
		At:     time.Now(),
	}

	// Fresh buffer per iteration; the previous frame is never reused.
	buf := make([]byte, frame.BufSize)

	n, err := p.dev.BulkRead(ctx, p.cfg.Endpoint, buf, p.cfg.Timeout)
	if err != nil {
		res.Err = err
		return res
	}

	r, ok := frame.Decode(buf, n)
	if !ok {
		res.Rejected = true
		return res
	}

	// The state guard is held only for this store, never across the
	// transport call above.
	p.state.Set(r)
	res.Reading = &r
	return res
}

// Run loops until ctx is cancelled. Infinite retry: transport errors
// and rejected frames never terminate the loop, and there is no
// backoff. Results go to out when a consumer is listening; out may be
// nil. Cancellation interrupts an in-flight transfer through ctx.
func (p *Poller) Run(ctx context.Context, out chan<- Result) {
	for {
		if ctx.Err() != nil {
			return
		}

		res := p.PollOnce(ctx)

		if out == nil {
			continue
		}
		select {
		case out <- res:
		case <-ctx.Done():
			return
		}
	}
}
