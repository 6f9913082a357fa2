// internal/state/state_test.go
package state

import (
	"sync"
	"testing"

	"github.com/tamzrod/co2mond/internal/frame"
)

func TestSnapshot_Empty(t *testing.T) {
	s := New()

	if _, ok := s.Snapshot(); ok {
		t.Fatal("expected no reading before first Set")
	}
}

func TestSet_LastWriteWins(t *testing.T) {
	s := New()

	for ppm := uint16(400); ppm <= 420; ppm++ {
		s.Set(frame.Reading{PPM: ppm})
	}

	r, ok := s.Snapshot()
	if !ok {
		t.Fatal("expected a reading")
	}
	if r.PPM != 420 {
		t.Fatalf("ppm=%d want=420", r.PPM)
	}
}

func TestSnapshot_IsolatedFromWriter(t *testing.T) {
	s := New()
	s.Set(frame.Reading{PPM: 500})

	r, _ := s.Snapshot()
	s.Set(frame.Reading{PPM: 900})

	if r.PPM != 500 {
		t.Fatalf("snapshot mutated by later write: ppm=%d", r.PPM)
	}
}

// One writer, many readers. Every observed value must be one the writer
// actually stored; run with -race to catch guard violations.
func TestConcurrentReaders(t *testing.T) {
	s := New()

	const writes = 1000
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			s.Set(frame.Reading{PPM: 400 + uint16(i%100)})
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < writes; j++ {
				r, ok := s.Snapshot()
				if !ok {
					continue
				}
				if r.PPM < 400 || r.PPM > 499 {
					t.Errorf("torn or invalid ppm %d", r.PPM)
					return
				}
			}
		}()
	}

	wg.Wait()
}
