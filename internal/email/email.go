package email

import (
	"context"
	"log"

	"github.com/Domenick1991/travelstore/internal/kafka"
)

// Sender stands in for a mail provider and writes receipts to the log.
type Sender struct {
	logf func(format string, args ...any)
}

func NewSender() *Sender {
	return &Sender{logf: log.Printf}
}

func (s *Sender) Send(ctx context.Context, event kafka.StoreEvent) error {
	if event.Email == "" {
		return nil
	}
	s.logf("send email to %s: %s", event.Email, Subject(event))
	return nil
}

func Subject(event kafka.StoreEvent) string {
	switch event.Type {
	case kafka.EventPurchaseCreated:
		return "payment received for package " + event.PackageID + " (" + event.Price + ")"
	case kafka.EventReservationCreated:
		return "package " + event.PackageID + " reserved, visit the office to pay"
	case kafka.EventReservationSettled:
		return "reservation " + event.RecordID + " marked as paid"
	case kafka.EventReservationDeleted:
		return "reservation " + event.RecordID + " was cancelled"
	default:
		return event.Type
	}
}
