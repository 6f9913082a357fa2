// internal/transport/usb/watcher.go
package usb

import (
	"context"
	"time"

	"github.com/google/gousb"

	"github.com/tamzrod/co2mond/internal/transport"
)

// Logger is the minimal logging contract the watcher needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config selects which devices the watcher manages.
type Config struct {
	Vendor       uint16
	Product      uint16
	ScanInterval time.Duration
}

// Hooks are the attach/detach callbacks invoked on presence changes.
// Attach receives an opened, claimed transport handle; if it returns an
// error the watcher closes the handle and retries on a later scan.
// Detach is invoked before the watcher closes the handle.
type Hooks struct {
	Attach func(dev transport.Device) error
	Detach func(id string)
}

// Watcher polls the bus for matching devices and drives the session
// manager through Hooks. It stands in for the kernel's device-presence
// notification mechanism.
type Watcher struct {
	usb    *gousb.Context
	cfg    Config
	hooks  Hooks
	logger Logger

	// known holds handles the watcher has successfully attached,
	// keyed by bus:address. Accessed only from Run's goroutine.
	known map[string]*Device
}

// NewWatcher initializes libusb and returns a watcher. Call Run to
// start scanning; the watcher owns the libusb context until Run returns.
func NewWatcher(cfg Config, hooks Hooks, logger Logger) *Watcher {
	if logger == nil {
		logger = noopLogger{}
	}
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 2 * time.Second
	}
	return &Watcher{
		usb:    gousb.NewContext(),
		cfg:    cfg,
		hooks:  hooks,
		logger: logger,
		known:  make(map[string]*Device),
	}
}

// Run scans until ctx is cancelled, then detaches every known device
// and tears down libusb. Blocking; run it on its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.ScanInterval)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-ctx.Done():
			for id, dev := range w.known {
				w.hooks.Detach(id)
				if err := dev.Close(); err != nil {
					w.logger.Warn("usb close failed", "device", id, "error", err)
				}
				delete(w.known, id)
			}
			if err := w.usb.Close(); err != nil {
				w.logger.Warn("libusb teardown failed", "error", err)
			}
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	present := make(map[string]bool)

	opened, err := w.usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor != gousb.ID(w.cfg.Vendor) || desc.Product != gousb.ID(w.cfg.Product) {
			return false
		}
		key := deviceKey(desc)
		present[key] = true
		_, attached := w.known[key]
		return !attached
	})
	if err != nil {
		// OpenDevices can fail per-device yet still return the rest.
		w.logger.Warn("usb enumeration error", "error", err)
	}

	// New arrivals.
	for _, gd := range opened {
		dev, err := open(gd)
		if err != nil {
			w.logger.Error("usb open failed", "error", err)
			continue
		}
		if err := w.hooks.Attach(dev); err != nil {
			w.logger.Error("attach failed", "device", dev.ID(), "error", err)
			dev.Close()
			continue
		}
		w.logger.Info("device attached", "device", dev.ID())
		w.known[dev.ID()] = dev
	}

	// Departures. Detach first so the poller is cancelled and joined
	// before the handle it reads from is closed.
	for id, dev := range w.known {
		if present[id] {
			continue
		}
		w.hooks.Detach(id)
		if err := dev.Close(); err != nil {
			w.logger.Warn("usb close failed", "device", id, "error", err)
		}
		delete(w.known, id)
		w.logger.Info("device detached", "device", id)
	}
}
