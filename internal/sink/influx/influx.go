// internal/sink/influx/influx.go
package influx

import (
	"errors"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/tamzrod/co2mond/internal/sink"
)

const defaultBatchSize = 100

// Config selects the InfluxDB v2 destination.
type Config struct {
	URL       string
	Token     string
	Org       string
	Bucket    string
	BatchSize uint
}

// Logger is the minimal logging contract for async write errors.
type Logger interface {
	Warn(msg string, args ...any)
}

// InfluxSink records each validated sample as one point. Writes are
// non-blocking and batched; async failures surface on the error
// channel and are logged, never propagated.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	done     chan struct{}
}

func New(cfg Config, logger Logger) (*InfluxSink, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.New("influx sink: url, token, org and bucket required")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetBatchSize(cfg.BatchSize))
	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	s := &InfluxSink{
		client:   client,
		writeAPI: writeAPI,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		for err := range writeAPI.Errors() {
			if logger != nil {
				logger.Warn("influx write failed", "error", err)
			}
		}
	}()

	return s, nil
}

func (s *InfluxSink) Publish(sample sink.Sample) error {
	point := write.NewPoint(
		"co2",
		map[string]string{
			"device": sample.Device,
		},
		map[string]interface{}{
			"ppm": int64(sample.PPM),
		},
		sample.At,
	)

	s.writeAPI.WritePoint(point)
	return nil
}

func (s *InfluxSink) Close() error {
	s.writeAPI.Flush()
	s.client.Close()
	<-s.done
	return nil
}
