// internal/sink/console/console_test.go
package console

import (
	"bytes"
	"testing"
	"time"

	"github.com/tamzrod/co2mond/internal/sink"
)

func TestPublish(t *testing.T) {
	var buf bytes.Buffer
	c := &ConsoleSink{w: &buf}

	ts := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	if err := c.Publish(sink.Sample{Device: "1:4", PPM: 612, At: ts}); err != nil {
		t.Fatalf("publish err=%v", err)
	}

	want := "2026-03-02T09:15:00Z device=1:4 co2_ppm=612\n"
	if buf.String() != want {
		t.Fatalf("output mismatch:\n got: %q\nwant: %q", buf.String(), want)
	}
}
