// internal/health/encode.go
package health

// Encode converts a Snapshot into a full device status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotTransportErrors] = s.TransportErrors
	regs[SlotRejectedFrames] = s.RejectedFrames
	regs[SlotSecondsSinceSample] = s.SecondsSinceSample

	return regs
}
