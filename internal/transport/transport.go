// internal/transport/transport.go
package transport

import (
	"context"
	"errors"
	"time"
)

// Endpoint addresses one bulk-in endpoint on a device interface.
type Endpoint uint8

// ErrNoBulkInEndpoint is returned by endpoint resolution when the
// interface exposes no bulk-in endpoint. Fatal to attach.
var ErrNoBulkInEndpoint = errors.New("transport: no bulk-in endpoint")

// Device is one attached sensor's transport handle. The USB machinery
// behind it (enumeration, claiming, transfer submission) is not this
// module's concern; the poller depends on this contract only.
type Device interface {
	// ID identifies the physical device instance (stable for the
	// lifetime of one attachment, e.g. "1:4" for bus 1 address 4).
	ID() string

	// FindBulkInEndpoint resolves the device's bulk-in endpoint.
	// Returns ErrNoBulkInEndpoint if the interface has none.
	FindBulkInEndpoint() (Endpoint, error)

	// BulkRead performs one blocking bulk transfer into buf, bounded
	// by timeout. Cancelling ctx interrupts an in-flight transfer.
	// Returns the number of bytes actually transferred.
	BulkRead(ctx context.Context, ep Endpoint, buf []byte, timeout time.Duration) (int, error)

	// Close releases the transport handle. Callers must not Close
	// while a BulkRead is in flight.
	Close() error
}
