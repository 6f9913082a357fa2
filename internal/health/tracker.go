// internal/health/tracker.go
package health

import (
	"github.com/tamzrod/co2mond/internal/poller"
)

// Tracker folds one device's poll results into a health snapshot.
// It observes the poller's side channel only; nothing here feeds back
// into the polling loop, which stays infinite-retry by contract.
// Not safe for concurrent use; each device's tracker lives on the
// dispatcher goroutine.
type Tracker struct {
	snap       Snapshot
	haveSample bool
}

// NewTracker starts in the unknown/boot state.
func NewTracker() *Tracker {
	return &Tracker{
		snap: Snapshot{Health: HealthUnknown},
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// Observe folds one poll result in. changed reports whether the
// snapshot differs from before, so callers only deliver on edges.
func (t *Tracker) Observe(res poller.Result) (Snapshot, bool) {
	prev := t.snap

	switch {
	case res.Reading != nil:
		t.haveSample = true
		t.snap.Health = HealthOK
		t.snap.TransportErrors = 0
		t.snap.SecondsSinceSample = 0

	case res.Err != nil:
		t.snap.Health = HealthError
		t.snap.TransportErrors = saturatingInc(t.snap.TransportErrors)

	case res.Rejected:
		// Garbled or empty frames are expected noise; they count but
		// do not change health on their own.
		t.snap.RejectedFrames = saturatingInc(t.snap.RejectedFrames)
	}

	return t.snap, t.snap != prev
}

// Tick advances the staleness clock by one second. Call at 1 Hz.
func (t *Tracker) Tick() (Snapshot, bool) {
	prev := t.snap

	if t.haveSample {
		t.snap.SecondsSinceSample = saturatingInc(t.snap.SecondsSinceSample)
		if t.snap.Health == HealthOK && t.snap.SecondsSinceSample > StaleAfterSeconds {
			t.snap.Health = HealthStale
		}
	}

	return t.snap, t.snap != prev
}

// HARD INVARIANT: counters MUST NOT wrap.
func saturatingInc(v uint16) uint16 {
	if v == 65535 {
		return v
	}
	return v + 1
}
