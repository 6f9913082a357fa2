// internal/state/state.go
package state

import (
	"sync"

	"github.com/tamzrod/co2mond/internal/frame"
)

// State holds the latest validated reading for one attached device.
// Exactly one writer (the session's poller) and any number of readers.
// All access to the current reading goes through the mutex; the critical
// sections are brief, so a plain mutex is enough.
type State struct {
	mu      sync.Mutex
	current *frame.Reading
}

// New creates an empty State. There is no reading until the poller
// accepts the first frame.
func New() *State {
	return &State{}
}

// Set replaces the current reading.
func (s *State) Set(r frame.Reading) {
	s.mu.Lock()
	s.current = &r
	s.mu.Unlock()
}

// Snapshot returns a copy of the current reading.
// ok is false until the first accepted frame.
func (s *State) Snapshot() (frame.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return frame.Reading{}, false
	}
	return *s.current, true
}
