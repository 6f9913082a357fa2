// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/co2mond/internal/frame"
)

// Result is the side-channel record of one poll iteration. It exists
// for observability only: every outcome it reports has already been
// absorbed by the poller, which never escalates.
type Result struct {
	Device string
	At     time.Time

	// Reading is set iff the frame was accepted. By then DeviceState
	// already holds it.
	Reading *frame.Reading

	// Rejected means the transport delivered data but validation
	// discarded it. An empty transfer counts here too; the contract
	// does not distinguish the two.
	Rejected bool

	// Err is the transport failure for this iteration, if any.
	Err error
}
