// internal/session/session.go
package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tamzrod/co2mond/internal/poller"
	"github.com/tamzrod/co2mond/internal/state"
	"github.com/tamzrod/co2mond/internal/transport"
)

// Logger is the minimal logging contract the manager needs.
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

// Registrar registers read-only device nodes with whatever node
// mechanism the host provides. open is invoked once per node open and
// must return the formatted snapshot for that open.
// IMPORTANT: There must be NO other version of this interface anywhere.
type Registrar interface {
	Register(deviceID string, open func() ([]byte, error)) error
	Deregister(deviceID string)
}

// Session is one attached device instance: the owned DeviceState, the
// transport reference held for the session's lifetime, and the poller
// lifecycle handles.
type Session struct {
	id    string
	dev   transport.Device
	state *state.State

	cancel context.CancelFunc
	done   chan struct{}
}

// Config is the per-manager runtime config.
type Config struct {
	// PollTimeout bounds each bulk transfer. Zero means the poller
	// default (5000 ms).
	PollTimeout time.Duration
}

// Manager owns every live session, keyed by device identity. There is
// no package-level table; callers hold the Manager.
type Manager struct {
	cfg    Config
	nodes  Registrar
	events chan<- poller.Result
	logger Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager. events receives every
// poll iteration's Result across all sessions; it may be nil when
// nobody consumes the side channel.
func NewManager(cfg Config, nodes Registrar, events chan<- poller.Result, logger Logger) *Manager {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Manager{
		cfg:      cfg,
		nodes:    nodes,
		events:   events,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Attach brings up a session for an opened transport handle:
// resolve the bulk-in endpoint, allocate empty DeviceState, register
// the device node, then start the poller. Endpoint resolution or
// registration failure tears the session down with no poller ever
// started; the transport handle stays owned by the caller.
func (m *Manager) Attach(dev transport.Device) error {
	id := dev.ID()

	ep, err := dev.FindBulkInEndpoint()
	if err != nil {
		return fmt.Errorf("session: attach %s: %w", id, err)
	}

	st := state.New()

	p, err := poller.New(poller.Config{
		DeviceID: id,
		Endpoint: ep,
		Timeout:  m.cfg.PollTimeout,
	}, dev, st)
	if err != nil {
		return fmt.Errorf("session: attach %s: %w", id, err)
	}

	s := &Session{
		id:    id,
		dev:   dev,
		state: st,
		done:  make(chan struct{}),
	}

	m.mu.Lock()
	if _, exists := m.sessions[id]; exists {
		m.mu.Unlock()
		return fmt.Errorf("session: attach %s: %w", id, ErrAlreadyAttached)
	}
	m.sessions[id] = s
	m.mu.Unlock()

	// The node must exist before the first sample can land; opens in
	// the window before the poller starts fail with ErrNotReady.
	if err := m.nodes.Register(id, func() ([]byte, error) {
		return m.snapshotLine(id)
	}); err != nil {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return fmt.Errorf("session: attach %s: register node: %w", id, err)
	}

	pctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer close(s.done)
		p.Run(pctx, m.events)
	}()

	m.logger.Info("session active", "device", id, "endpoint", ep)
	return nil
}

// Detach tears a session down. Ordering is the safety property:
// cancel the poller, join it, and only then release the node and the
// session. After Detach returns no poll iteration can still touch the
// session's state.
func (m *Manager) Detach(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if s == nil {
		return
	}

	s.cancel()
	<-s.done

	m.nodes.Deregister(id)
	m.logger.Info("session destroyed", "device", id)
}

// Devices lists the identities of live sessions.
func (m *Manager) Devices() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// snapshotLine is the node-open path: one formatted line per open.
func (m *Manager) snapshotLine(id string) ([]byte, error) {
	h, err := m.Open(id)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	out := make([]byte, h.Len())
	if _, err := h.ReadAt(out, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}
