// internal/session/handle.go
package session

import (
	"io"
	"strconv"
)

// handleBufCap bounds the formatted line. A uint16 in decimal plus
// newline needs at most 7 bytes.
const handleBufCap = 32

// Handle is one opened view of a device's reading: a static snapshot
// formatted at open time. Reads never go back to DeviceState, so a
// consumer sees one consistent value per open at the cost of staleness
// until the next open.
type Handle struct {
	buf []byte
}

// Open snapshots the device's current reading into a new handle.
// Fails with ErrNoSuchDevice when no session backs id, and with
// ErrNotReady before the first accepted frame.
func (m *Manager) Open(id string) (*Handle, error) {
	m.mu.RLock()
	s := m.sessions[id]
	m.mu.RUnlock()

	if s == nil {
		return nil, ErrNoSuchDevice
	}

	r, ok := s.state.Snapshot()
	if !ok {
		return nil, ErrNotReady
	}

	buf := strconv.AppendUint(make([]byte, 0, handleBufCap), uint64(r.PPM), 10)
	buf = append(buf, '\n')
	return &Handle{buf: buf}, nil
}

// Len reports the snapshot length in bytes.
func (h *Handle) Len() int { return len(h.buf) }

// ReadAt serves the frozen snapshot at the requested offset, with
// io.ReaderAt semantics. A closed or never-opened handle fails with
// ErrNoSuchDevice.
func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	if h == nil || h.buf == nil {
		return 0, ErrNoSuchDevice
	}
	if off < 0 || off >= int64(len(h.buf)) {
		return 0, io.EOF
	}

	n := copy(p, h.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the snapshot buffer. It never touches DeviceState.
func (h *Handle) Close() error {
	h.buf = nil
	return nil
}
