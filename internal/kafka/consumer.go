package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeEvents decodes each message as a StoreEvent. Messages that do not
// decode are logged and skipped; a handler error stops consumption.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, StoreEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, ok := decodeEvent(msg.Value)
		if !ok {
			log.Printf("skip undecodable event at offset %d", msg.Offset)
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeEvent(value []byte) (StoreEvent, bool) {
	var event StoreEvent
	if err := json.Unmarshal(value, &event); err != nil || event.Type == "" {
		return StoreEvent{}, false
	}
	return event, true
}
