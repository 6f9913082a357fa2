// internal/sink/modbus/mirror.go

// Package modbus mirrors sensor readings into a building-management
// system's holding registers over Modbus TCP. Each device owns one
// value register and one fixed-size status block; register assignment
// follows attach order.
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gomodbus "github.com/goburrow/modbus"

	"github.com/tamzrod/co2mond/internal/health"
	"github.com/tamzrod/co2mond/internal/sink"
)

// registerWriter is the exact contract the mirror uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type registerWriter interface {
	WriteSingleRegister(address, value uint16) ([]byte, error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// Config locates the mirror target and its register layout.
type Config struct {
	Endpoint string
	UnitID   byte
	Timeout  time.Duration

	// ValueBase is the first holding register for readings; device i
	// writes to ValueBase+i.
	ValueBase uint16

	// StatusBase is the first status slot; device i owns the block
	// of health.SlotsPerDevice registers starting at
	// (StatusBase+i)*health.SlotsPerDevice.
	StatusBase uint16

	// DeviceName is the ASCII name stem placed in each status block;
	// the device index is appended.
	DeviceName string
}

// Mirror implements sink.Sink and sink.HealthWriter against one
// Modbus TCP endpoint.
type Mirror struct {
	handler *gomodbus.TCPClientHandler
	cli     registerWriter
	cfg     Config

	mu  sync.Mutex
	idx map[string]uint16 // device ID -> assigned index
}

// New connects to the mirror endpoint. Fail fast at startup; once
// running, per-write failures are reported to the dispatcher and
// retried on the next sample.
func New(cfg Config) (*Mirror, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus mirror: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	handler := gomodbus.NewTCPClientHandler(cfg.Endpoint)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.UnitID
	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("modbus mirror: connect %s: %w", cfg.Endpoint, err)
	}

	return &Mirror{
		handler: handler,
		cli:     gomodbus.NewClient(handler),
		cfg:     cfg,
		idx:     make(map[string]uint16),
	}, nil
}

// Publish writes the reading into the device's value register.
func (m *Mirror) Publish(s sink.Sample) error {
	i := m.index(s.Device)

	if _, err := m.cli.WriteSingleRegister(m.cfg.ValueBase+i, s.PPM); err != nil {
		return fmt.Errorf("modbus mirror: value write device=%s: %w", s.Device, err)
	}
	return nil
}

// WriteHealth re-asserts the device's full status block. Writing the
// whole block every time keeps the mirror self-healing after target
// restarts at the cost of a few registers per update.
func (m *Mirror) WriteHealth(deviceID string, snap health.Snapshot) error {
	i := m.index(deviceID)

	regs := health.Encode(snap)

	name := fmt.Sprintf("%s%d", m.cfg.DeviceName, i)
	nameRegs := encodeDeviceNameRegs(name)
	for j := 0; j < health.SlotDeviceNameSlots; j++ {
		regs[health.SlotDeviceNameStart+j] = nameRegs[j]
	}

	addr := (m.cfg.StatusBase + i) * health.SlotsPerDevice
	if _, err := m.cli.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs)); err != nil {
		return fmt.Errorf("modbus mirror: status write device=%s: %w", deviceID, err)
	}
	return nil
}

func (m *Mirror) Close() error {
	return m.handler.Close()
}

// index returns the device's register index, assigning the next free
// one on first sight. Indices are never reused within one run.
func (m *Mirror) index(deviceID string) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.idx[deviceID]; ok {
		return i
	}
	i := uint16(len(m.idx))
	m.idx[deviceID] = i
	return i
}

// packRegisters converts registers to the big-endian byte layout the
// wire wants.
func packRegisters(regs []uint16) []byte {
	out := make([]byte, 2*len(regs))
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 uint16
// registers, two big-endian bytes per register.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, health.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > health.DeviceNameMaxChars {
		b = b[:health.DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < len(b); i++ {
		reg := i / 2
		if i%2 == 0 {
			out[reg] |= uint16(b[i]) << 8
		} else {
			out[reg] |= uint16(b[i])
		}
	}

	return out
}
