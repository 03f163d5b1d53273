// v2
// internal/export/mqtt.go
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"urbantech/twin/internal/model"
)

const mqttPublishTimeout = 2 * time.Second

// MQTTAlertPublisher pushes the alert set of each tick to an MQTT
// topic. Only ticks that raised alerts produce traffic.
type MQTTAlertPublisher struct {
	lg     *slog.Logger
	client mqtt.Client
	topic  string
}

func NewMQTTAlertPublisher(lg *slog.Logger, brokerAddr, clientID, topic string) (*MQTTAlertPublisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(brokerAddr).SetClientID(clientID)
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", brokerAddr, token.Error())
	}
	lg.Info("mqtt alert publisher connected", "broker", brokerAddr, "topic", topic)
	return &MQTTAlertPublisher{lg: lg, client: c, topic: topic}, nil
}

func (p *MQTTAlertPublisher) Publish(_ context.Context, out model.TickOutput) error {
	if len(out.Alerts) == 0 {
		return nil
	}
	payload, err := json.Marshal(struct {
		Timestamp time.Time     `json:"timestamp"`
		Alerts    []model.Alert `json:"alerts"`
	}{out.Timestamp, out.Alerts})
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("publish alerts: timeout after %s", mqttPublishTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish alerts: %w", token.Error())
	}
	return nil
}

func (p *MQTTAlertPublisher) Name() string { return "mqtt" }

func (p *MQTTAlertPublisher) Close() {
	p.client.Disconnect(250)
}
