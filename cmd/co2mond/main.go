// cmd/co2mond/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/co2mond/internal/config"
	"github.com/tamzrod/co2mond/internal/devnode"
	"github.com/tamzrod/co2mond/internal/health"
	"github.com/tamzrod/co2mond/internal/logging"
	"github.com/tamzrod/co2mond/internal/poller"
	"github.com/tamzrod/co2mond/internal/session"
	"github.com/tamzrod/co2mond/internal/sink"
	"github.com/tamzrod/co2mond/internal/sink/console"
	"github.com/tamzrod/co2mond/internal/sink/influx"
	sinkmodbus "github.com/tamzrod/co2mond/internal/sink/modbus"
	sinkmqtt "github.com/tamzrod/co2mond/internal/sink/mqtt"
	"github.com/tamzrod/co2mond/internal/transport/usb"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: co2mond <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Sinks (fail fast at startup, best effort afterwards)
	// --------------------

	var sinks []sink.Sink
	var healthWriters []sink.HealthWriter

	if cfg.Sinks.Console.Enabled {
		sinks = append(sinks, console.New())
	}

	if cfg.Sinks.MQTT.Enabled {
		m, err := sinkmqtt.New(sinkmqtt.Config{
			Broker:      cfg.Sinks.MQTT.Broker,
			ClientID:    cfg.Sinks.MQTT.ClientID,
			Username:    cfg.Sinks.MQTT.Username,
			Password:    cfg.Sinks.MQTT.Password,
			StateTopic:  cfg.Sinks.MQTT.StateTopic,
			StatusTopic: cfg.Sinks.MQTT.StatusTopic,
			QoS:         cfg.Sinks.MQTT.QoS,
		})
		if err != nil {
			logger.Error("mqtt sink failed", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, m)
		healthWriters = append(healthWriters, m)
	}

	if cfg.Sinks.Influx.Enabled {
		i, err := influx.New(influx.Config{
			URL:       cfg.Sinks.Influx.URL,
			Token:     cfg.Sinks.Influx.Token,
			Org:       cfg.Sinks.Influx.Org,
			Bucket:    cfg.Sinks.Influx.Bucket,
			BatchSize: cfg.Sinks.Influx.BatchSize,
		}, logger.With("component", "influx"))
		if err != nil {
			logger.Error("influxdb sink failed", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, i)
	}

	if cfg.Sinks.Modbus.Enabled {
		mir, err := sinkmodbus.New(sinkmodbus.Config{
			Endpoint:   cfg.Sinks.Modbus.Endpoint,
			UnitID:     cfg.Sinks.Modbus.UnitID,
			Timeout:    time.Duration(cfg.Sinks.Modbus.TimeoutMs) * time.Millisecond,
			ValueBase:  cfg.Sinks.Modbus.ValueBase,
			StatusBase: cfg.Sinks.Modbus.StatusBase,
			DeviceName: cfg.Sinks.Modbus.DeviceName,
		})
		if err != nil {
			logger.Error("modbus mirror sink failed", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, mir)
		healthWriters = append(healthWriters, mir)
	}

	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				logger.Warn("sink close failed", "error", err)
			}
		}
	}()

	// --------------------
	// Device nodes + sessions
	// --------------------

	nodes, err := devnode.New(cfg.Nodes.Dir, logger.With("component", "devnode"))
	if err != nil {
		logger.Error("device node setup failed", "error", err)
		os.Exit(1)
	}
	defer nodes.Close()

	events := make(chan poller.Result, 16)
	mgr := session.NewManager(session.Config{
		PollTimeout: time.Duration(cfg.Device.ReadTimeoutMs) * time.Millisecond,
	}, nodes, events, logger.With("component", "session"))

	// --------------------
	// Dispatcher (sample fan-out + health side channel)
	// --------------------

	go dispatch(ctx, events, mgr, sinks, healthWriters, logger.With("component", "dispatch"))

	// --------------------
	// USB presence watcher; blocks until shutdown, then detaches
	// every session before returning.
	// --------------------

	logger.Info("co2mond starting",
		"vendor_id", cfg.Device.VendorID,
		"product_id", cfg.Device.ProductID,
		"node_dir", cfg.Nodes.Dir,
	)

	watcher := usb.NewWatcher(usb.Config{
		Vendor:       cfg.Device.VendorID,
		Product:      cfg.Device.ProductID,
		ScanInterval: time.Duration(cfg.Device.ScanIntervalMs) * time.Millisecond,
	}, usb.Hooks{
		Attach: mgr.Attach,
		Detach: mgr.Detach,
	}, logger.With("component", "usb"))

	watcher.Run(ctx)

	logger.Info("co2mond stopped")
}

// dispatch consumes the pollers' side channel: validated samples fan
// out to every sink, every outcome feeds the per-device health
// tracker, and a 1 Hz ticker advances staleness. Nothing here can
// stall or fail a poller.
func dispatch(
	ctx context.Context,
	events <-chan poller.Result,
	mgr *session.Manager,
	sinks []sink.Sink,
	healthWriters []sink.HealthWriter,
	logger *logging.Logger,
) {
	trackers := make(map[string]*health.Tracker)

	writeHealth := func(device string, snap health.Snapshot) {
		for _, hw := range healthWriters {
			if err := hw.WriteHealth(device, snap); err != nil {
				logger.Warn("health write failed", "device", device, "error", err)
			}
		}
	}

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-events:
			tr := trackers[res.Device]
			if tr == nil {
				tr = health.NewTracker()
				trackers[res.Device] = tr
			}

			switch {
			case res.Reading != nil:
				s := sink.Sample{Device: res.Device, PPM: res.Reading.PPM, At: res.At}
				for _, out := range sinks {
					if err := out.Publish(s); err != nil {
						logger.Warn("sink publish failed", "device", res.Device, "error", err)
					}
				}
			case res.Err != nil:
				logger.Debug("poll transport error", "device", res.Device, "error", res.Err)
			case res.Rejected:
				logger.Debug("frame rejected", "device", res.Device)
			}

			if snap, changed := tr.Observe(res); changed {
				writeHealth(res.Device, snap)
			}

		case <-secTicker.C:
			// Drop trackers for devices that detached.
			live := make(map[string]bool)
			for _, id := range mgr.Devices() {
				live[id] = true
			}
			for id, tr := range trackers {
				if !live[id] {
					delete(trackers, id)
					continue
				}
				if snap, changed := tr.Tick(); changed {
					writeHealth(id, snap)
				}
			}
		}
	}
}
