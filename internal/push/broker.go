// Package push is the MQTT side of the feed: the ingest surface publishes
// every stored reading to one topic, and the live controller subscribes to
// it as its push channel.
package push

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"biodash/internal/models"
)

// Broker wraps one MQTT client bound to the readings topic.
type Broker struct {
	client mqtt.Client
	topic  string
	log    *slog.Logger
}

// Connect dials the broker. Callers treat a connect failure as non-fatal:
// the dashboard still works poll-only.
func Connect(addr, clientID, topic string, logger *slog.Logger) (*Broker, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(addr).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", addr, token.Error())
	}
	return &Broker{client: client, topic: topic, log: logger}, nil
}

// Subscribe registers a handler for row-insert notifications. Malformed
// payloads are logged and dropped. The returned function unsubscribes.
func (b *Broker) Subscribe(handler func(models.SensorReading)) (func(), error) {
	token := b.client.Subscribe(b.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		r, err := decodeReading(msg.Payload())
		if err != nil {
			b.log.Warn("bad push payload", "topic", msg.Topic(), "err", err)
			return
		}
		handler(r)
	})
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", b.topic, token.Error())
	}
	unsubscribe := func() {
		b.client.Unsubscribe(b.topic).Wait()
	}
	return unsubscribe, nil
}

func decodeReading(payload []byte) (models.SensorReading, error) {
	var r models.SensorReading
	if err := json.Unmarshal(payload, &r); err != nil {
		return models.SensorReading{}, fmt.Errorf("decode reading: %w", err)
	}
	return r, nil
}

// Publish sends one reading as a retained-free QoS 0 notification.
func (b *Broker) Publish(r models.SensorReading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	token := b.client.Publish(b.topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt publish %s: %w", b.topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (b *Broker) Close() {
	b.client.Disconnect(250)
}
