// internal/devnode/devnode_test.go
package devnode

import (
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
)

func dial(t *testing.T, path string) []byte {
	t.Helper()
	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	defer conn.Close()

	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return data
}

func TestRegister_ServesSnapshotPerOpen(t *testing.T) {
	r, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	defer r.Close()

	calls := 0
	if err := r.Register("0:1", func() ([]byte, error) {
		calls++
		return []byte("612\n"), nil
	}); err != nil {
		t.Fatalf("register err=%v", err)
	}

	path := filepath.Join(r.dir, "co2meter0")
	if got := dial(t, path); string(got) != "612\n" {
		t.Fatalf("line=%q want %q", got, "612\n")
	}
	if got := dial(t, path); string(got) != "612\n" {
		t.Fatalf("line=%q want %q", got, "612\n")
	}
	if calls != 2 {
		t.Fatalf("open calls=%d want one per connection", calls)
	}
}

func TestRegister_NotReadyServesEmpty(t *testing.T) {
	r, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	defer r.Close()

	if err := r.Register("0:1", func() ([]byte, error) {
		return nil, errors.New("not ready")
	}); err != nil {
		t.Fatalf("register err=%v", err)
	}

	if got := dial(t, filepath.Join(r.dir, "co2meter0")); len(got) != 0 {
		t.Fatalf("expected empty node, got %q", got)
	}
}

func TestIndexAllocation_LowestFree(t *testing.T) {
	r, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	defer r.Close()

	line := func(s string) OpenFunc {
		return func() ([]byte, error) { return []byte(s), nil }
	}

	r.Register("a", line("1\n"))
	r.Register("b", line("2\n"))
	r.Register("c", line("3\n"))

	// Freeing the middle node makes its index the next allocation.
	r.Deregister("b")
	if _, err := os.Stat(filepath.Join(r.dir, "co2meter1")); !os.IsNotExist(err) {
		t.Fatal("deregistered node file still present")
	}

	r.Register("d", line("4\n"))
	if got := dial(t, filepath.Join(r.dir, "co2meter1")); string(got) != "4\n" {
		t.Fatalf("line=%q want %q", got, "4\n")
	}
	if got := dial(t, filepath.Join(r.dir, "co2meter2")); string(got) != "3\n" {
		t.Fatalf("line=%q, node c must keep its index", got)
	}
}

func TestDeregister_StopsServing(t *testing.T) {
	r, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	r.Register("a", func() ([]byte, error) { return []byte("1\n"), nil })
	path := filepath.Join(r.dir, "co2meter0")
	dial(t, path)

	r.Deregister("a")
	if _, err := net.Dial("unix", path); err == nil {
		t.Fatal("expected dial to fail after deregister")
	}
}
