package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelstore_checkout_total",
		Help: "Checkout runs by action and terminal state",
	}, []string{"action", "state"})

	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelstore_settlements_total",
		Help: "Reservation settlements by result",
	}, []string{"result"})

	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelstore_events_published_total",
		Help: "Store events written to Kafka",
	})

	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelstore_event_publish_errors_total",
		Help: "Failed attempts to write store events to Kafka",
	})
)
