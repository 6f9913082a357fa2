// internal/devnode/devnode.go

// Package devnode exposes each attached sensor as a named read-only
// node: a Unix-domain socket under one directory, co2meter0,
// co2meter1, and so on. Every accepted connection is one open of the
// device's read interface: the node asks the session layer for a
// snapshot line, streams it, and closes. Consumers get `cat`-able
// nodes without any kernel involvement.
package devnode

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
)

// OpenFunc produces one formatted snapshot per node open.
type OpenFunc func() ([]byte, error)

// Logger is the minimal logging contract the registrar needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

const nodePrefix = "co2meter"

// Registrar manages the socket nodes for all attached devices. Node
// indices are allocated lowest-free-first, minor-number style, so a
// replug lands on the same node name when nothing else moved in.
type Registrar struct {
	dir    string
	logger Logger

	mu    sync.Mutex
	nodes map[string]*node // by device ID
	used  map[int]bool     // allocated node indices
}

type node struct {
	index int
	path  string
	ln    net.Listener
	open  OpenFunc

	closing chan struct{}
	wg      sync.WaitGroup
}

// New creates a registrar rooted at dir, creating it if needed.
func New(dir string, logger Logger) (*Registrar, error) {
	if dir == "" {
		return nil, errors.New("devnode: dir required")
	}
	if logger == nil {
		logger = noopLogger{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("devnode: create %s: %w", dir, err)
	}
	return &Registrar{
		dir:    dir,
		logger: logger,
		nodes:  make(map[string]*node),
		used:   make(map[int]bool),
	}, nil
}

// Register creates the node for a device and starts serving opens.
// Fatal to the caller's attach when listening fails.
func (r *Registrar) Register(deviceID string, open OpenFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[deviceID]; exists {
		return fmt.Errorf("devnode: %s already registered", deviceID)
	}

	idx := 0
	for r.used[idx] {
		idx++
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s%d", nodePrefix, idx))
	// A stale socket from an unclean shutdown blocks the listen.
	_ = os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("devnode: listen %s: %w", path, err)
	}

	n := &node{
		index:   idx,
		path:    path,
		ln:      ln,
		open:    open,
		closing: make(chan struct{}),
	}
	r.used[idx] = true
	r.nodes[deviceID] = n

	n.wg.Add(1)
	go n.serve(r.logger)

	r.logger.Debug("node registered", "device", deviceID, "path", path)
	return nil
}

// Deregister tears the device's node down and waits for its accept
// loop to stop. Connections already being served run to completion.
func (r *Registrar) Deregister(deviceID string) {
	r.mu.Lock()
	n := r.nodes[deviceID]
	delete(r.nodes, deviceID)
	if n != nil {
		delete(r.used, n.index)
	}
	r.mu.Unlock()

	if n == nil {
		return
	}

	close(n.closing)
	n.ln.Close()
	n.wg.Wait()
	_ = os.Remove(n.path)
}

// Close deregisters every remaining node.
func (r *Registrar) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Deregister(id)
	}
}

func (n *node) serve(logger Logger) {
	defer n.wg.Done()

	for {
		conn, err := n.ln.Accept()
		if err != nil {
			select {
			case <-n.closing:
				return
			default:
			}
			logger.Warn("node accept failed", "path", n.path, "error", err)
			continue
		}

		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			defer conn.Close()

			line, err := n.open()
			if err != nil {
				// NotReady and NoSuchDevice both present as an
				// empty node to the consumer.
				logger.Debug("node open refused", "path", n.path, "error", err)
				return
			}
			if _, err := conn.Write(line); err != nil {
				logger.Debug("node write failed", "path", n.path, "error", err)
			}
		}()
	}
}
