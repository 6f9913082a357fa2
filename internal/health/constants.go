// internal/health/constants.go
package health

// Device status block layout for the Modbus mirror.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotTransportErrors holds the consecutive transport-error count.
const SlotTransportErrors = 1

// SlotRejectedFrames holds the cumulative rejected-frame count.
const SlotRejectedFrames = 2

// SlotSecondsSinceSample holds the seconds since the last accepted frame.
const SlotSecondsSinceSample = 3

// ---- RESERVED RANGE ----

// Slots 4–10 are reserved for future use.
const SlotReservedStart = 4
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored
// for the device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a device delivering valid samples.
const HealthOK uint16 = 1

// HealthError represents a device whose transfers are failing.
const HealthError uint16 = 2

// HealthStale represents a device that stopped producing accepted
// frames without reporting transport errors.
const HealthStale uint16 = 3

// StaleAfterSeconds is how long without an accepted frame before an
// otherwise healthy device is marked stale.
const StaleAfterSeconds = 30
