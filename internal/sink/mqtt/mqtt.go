// internal/sink/mqtt/mqtt.go
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/co2mond/internal/health"
	"github.com/tamzrod/co2mond/internal/sink"
)

const (
	DefaultBroker      = "tcp://localhost:1883"
	DefaultClientID    = "co2mond"
	DefaultStateTopic  = "co2mond/reading"
	DefaultStatusTopic = "co2mond/status"

	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	disconnectMs   = 250
)

// Config is the broker and topic layout for the MQTT sink.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	StateTopic  string
	StatusTopic string
	QoS         byte
}

// MQTTSink publishes each validated sample as JSON on
// <state_topic>/<device>, and health snapshots retained on
// <status_topic>/<device> so late subscribers see the last state.
type MQTTSink struct {
	client      pahomqtt.Client
	stateTopic  string
	statusTopic string
	qos         byte
}

// New connects to the broker with auto-reconnect enabled.
func New(cfg Config) (*MQTTSink, error) {
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.StateTopic == "" {
		cfg.StateTopic = DefaultStateTopic
	}
	if cfg.StatusTopic == "" {
		cfg.StatusTopic = DefaultStatusTopic
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect: timeout after %v", connectTimeout)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return &MQTTSink{
		client:      client,
		stateTopic:  cfg.StateTopic,
		statusTopic: cfg.StatusTopic,
		qos:         cfg.QoS,
	}, nil
}

func (m *MQTTSink) Publish(s sink.Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.publish(m.stateTopic+"/"+s.Device, payload, false)
}

// WriteHealth publishes the device status block retained.
func (m *MQTTSink) WriteHealth(deviceID string, snap health.Snapshot) error {
	payload, err := json.Marshal(map[string]any{
		"device":               deviceID,
		"health":               snap.Health,
		"transport_errors":     snap.TransportErrors,
		"rejected_frames":      snap.RejectedFrames,
		"seconds_since_sample": snap.SecondsSinceSample,
	})
	if err != nil {
		return err
	}
	return m.publish(m.statusTopic+"/"+deviceID, payload, true)
}

func (m *MQTTSink) publish(topic string, payload []byte, retained bool) error {
	if !m.client.IsConnected() {
		return fmt.Errorf("mqtt publish: not connected")
	}
	token := m.client.Publish(topic, m.qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish: timeout after %v", publishTimeout)
	}
	return token.Error()
}

func (m *MQTTSink) Close() error {
	m.client.Disconnect(disconnectMs)
	return nil
}
