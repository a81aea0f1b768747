package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/travelstore/internal/metrics"
	"github.com/segmentio/kafka-go"
)

// StoreEvent is published for every committed purchase, reservation and
// settlement.
type StoreEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	PackageID string    `json:"package_id"`
	RecordID  string    `json:"record_id"`
	Price     string    `json:"price"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}

const (
	EventPurchaseCreated    = "purchase_created"
	EventReservationCreated = "reservation_created"
	EventReservationSettled = "reservation_settled"
	EventReservationDeleted = "reservation_deleted"
)

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		metrics.PublishErrors.Inc()
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	metrics.EventsPublished.Inc()
	log.Printf("published to Kafka - topic: %s, key: %s", topic, key)
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	log.Printf("connected to Kafka, %d partitions visible", len(partitions))
	return nil
}
