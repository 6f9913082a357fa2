// internal/session/errors.go
package session

import "errors"

// ErrNoSuchDevice is returned when Open or Read target a device
// identity with no backing session.
var ErrNoSuchDevice = errors.New("session: no such device")

// ErrNotReady is returned by Open while the sensor has not produced a
// valid sample yet.
var ErrNotReady = errors.New("session: device not ready")

// ErrAlreadyAttached is returned when attach is invoked for a device
// identity that already has a live session.
var ErrAlreadyAttached = errors.New("session: device already attached")
