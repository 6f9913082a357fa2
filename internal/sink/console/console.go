// internal/sink/console/console.go
package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tamzrod/co2mond/internal/sink"
)

type ConsoleSink struct {
	w io.Writer
}

func New() sink.Sink { return &ConsoleSink{w: os.Stdout} }

func (c *ConsoleSink) Publish(s sink.Sample) error {
	_, err := fmt.Fprintf(c.w, "%s device=%s co2_ppm=%d\n", s.At.Format(time.RFC3339), s.Device, s.PPM)
	return err
}

func (c *ConsoleSink) Close() error { return nil }
