// v2
// internal/export/kafka.go
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"urbantech/twin/internal/model"
)

// KafkaExporter publishes each tick's combined output to a Kafka topic
// keyed by tick timestamp, for downstream archival or replay.
type KafkaExporter struct {
	lg     *slog.Logger
	writer *kafka.Writer
}

func NewKafkaExporter(lg *slog.Logger, brokers []string, topic string) *KafkaExporter {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	lg.Info("kafka exporter wired", "brokers", brokers, "topic", topic)
	return &KafkaExporter{lg: lg, writer: w}
}

func (e *KafkaExporter) Publish(ctx context.Context, out model.TickOutput) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal tick output: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(out.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")),
		Value: payload,
	}
	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write tick output: %w", err)
	}
	return nil
}

func (e *KafkaExporter) Name() string { return "kafka" }

func (e *KafkaExporter) Close() error { return e.writer.Close() }
