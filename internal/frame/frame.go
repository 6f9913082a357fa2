// internal/frame/frame.go
package frame

// Frame protocol constants. These values are fixed by the sensor firmware
// and MUST NOT be configurable.

// BufSize is the transfer buffer capacity. The sensor pads frames; only
// the first PayloadLen bytes carry meaning.
const BufSize = 16

// PayloadLen is the number of meaningful bytes in one frame.
const PayloadLen = 5

// Marker is the fixed first byte of every valid frame.
const Marker = 0x50

// Terminator is the fixed fifth byte of every valid frame.
const Terminator = 0x0D

// Reading is one validated gas-concentration sample.
// Immutable once produced.
type Reading struct {
	PPM uint16
}

// Decode validates one raw frame and extracts its reading.
// transferred is the byte count the transport actually delivered;
// buf may be longer.
//
// A frame is accepted iff:
//   - transferred >= PayloadLen,
//   - buf[0] == Marker,
//   - buf[0]+buf[1]+buf[2] == buf[3] with uint8 wraparound (the marker
//     byte is part of the sum; the sensor firmware defines it that way),
//   - buf[4] == Terminator.
//
// On acceptance the reading is buf[1]*256 + buf[2]. Rejection yields
// ok=false and no error: a malformed frame and an empty transfer are
// indistinguishable by contract. No side effects.
func Decode(buf []byte, transferred int) (Reading, bool) {
	if transferred < PayloadLen || len(buf) < PayloadLen {
		return Reading{}, false
	}
	if buf[0] != Marker {
		return Reading{}, false
	}
	if buf[0]+buf[1]+buf[2] != buf[3] {
		return Reading{}, false
	}
	if buf[4] != Terminator {
		return Reading{}, false
	}
	return Reading{PPM: uint16(buf[1])*256 + uint16(buf[2])}, true
}
