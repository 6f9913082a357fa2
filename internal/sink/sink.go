// internal/sink/sink.go
package sink

import (
	"time"

	"github.com/tamzrod/co2mond/internal/health"
)

// Sample is one validated reading on its way out of the daemon.
type Sample struct {
	Device string    `json:"device"`
	PPM    uint16    `json:"ppm"`
	At     time.Time `json:"at"`
}

// Sink delivers validated samples to one destination. Delivery is
// best effort: a failing sink is logged by the dispatcher and never
// feeds back into the polling loop.
type Sink interface {
	Publish(s Sample) error
	Close() error
}

// HealthWriter is the delivery-only contract for device health.
// It receives a snapshot and writes it verbatim.
// No logic, no state, no interpretation.
type HealthWriter interface {
	WriteHealth(deviceID string, snap health.Snapshot) error
}
