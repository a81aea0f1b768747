package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/travelstore/config"
	"github.com/Domenick1991/travelstore/internal/email"
	"github.com/Domenick1991/travelstore/internal/kafka"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Kafka.NotificationsTopic == "" {
		log.Fatalf("kafka.notifications_topic is not set, nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	log.Printf("worker consuming %s", cfg.Kafka.NotificationsTopic)
	err = consumer.ConsumeEvents(ctx, func(ctx context.Context, event kafka.StoreEvent) error {
		if err := emailSender.Send(ctx, event); err != nil {
			log.Printf("send email for %s %s: %v", event.Type, event.RecordID, err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Printf("worker shut down")
}
