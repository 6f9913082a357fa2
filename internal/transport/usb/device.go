// internal/transport/usb/device.go
package usb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"

	"github.com/tamzrod/co2mond/internal/transport"
)

// Device adapts one opened gousb device to transport.Device.
type Device struct {
	id   string
	dev  *gousb.Device
	intf *gousb.Interface
	done func()

	mu  sync.Mutex
	eps map[transport.Endpoint]*gousb.InEndpoint
}

// open claims the device's default interface and wraps it.
func open(dev *gousb.Device) (*Device, error) {
	// Kick the kernel HID driver off the interface, same as the
	// in-kernel driver would own it.
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		return nil, fmt.Errorf("usb: auto-detach: %w", err)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("usb: claim interface: %w", err)
	}

	return &Device{
		id:   deviceKey(dev.Desc),
		dev:  dev,
		intf: intf,
		done: done,
		eps:  make(map[transport.Endpoint]*gousb.InEndpoint),
	}, nil
}

// deviceKey identifies one physical attachment. Bus and address are
// stable until the device is unplugged.
func deviceKey(desc *gousb.DeviceDesc) string {
	return fmt.Sprintf("%d:%d", desc.Bus, desc.Address)
}

func (d *Device) ID() string { return d.id }

// FindBulkInEndpoint scans the claimed interface setting for a bulk-in
// endpoint. The sensor exposes exactly one; any match is taken.
func (d *Device) FindBulkInEndpoint() (transport.Endpoint, error) {
	for _, ep := range d.intf.Setting.Endpoints {
		if ep.Direction == gousb.EndpointDirectionIn && ep.TransferType == gousb.TransferTypeBulk {
			return transport.Endpoint(ep.Number), nil
		}
	}
	return 0, transport.ErrNoBulkInEndpoint
}

func (d *Device) inEndpoint(ep transport.Endpoint) (*gousb.InEndpoint, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if in, ok := d.eps[ep]; ok {
		return in, nil
	}
	in, err := d.intf.InEndpoint(int(ep))
	if err != nil {
		return nil, fmt.Errorf("usb: endpoint %d: %w", ep, err)
	}
	d.eps[ep] = in
	return in, nil
}

// BulkRead performs one transfer bounded by timeout. Cancelling ctx
// aborts the transfer via libusb.
func (d *Device) BulkRead(ctx context.Context, ep transport.Endpoint, buf []byte, timeout time.Duration) (int, error) {
	in, err := d.inEndpoint(ep)
	if err != nil {
		return 0, err
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return in.ReadContext(tctx, buf)
}

// Close releases the interface claim and the device handle.
func (d *Device) Close() error {
	if d.done != nil {
		d.done()
		d.done = nil
	}
	return d.dev.Close()
}
