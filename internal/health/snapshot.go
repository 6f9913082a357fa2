// internal/health/snapshot.go
package health

// Snapshot represents exactly what the sinks are allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health             uint16
	TransportErrors    uint16
	RejectedFrames     uint16
	SecondsSinceSample uint16
}
