package checkout

import (
	"errors"
	"log"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/metrics"
)

type Action string

const (
	ActionPay     Action = "pay"
	ActionReserve Action = "reserve"
)

// State is a step of a checkout run:
//
//	idle -> validating -> failed
//	                   -> submitting -> committed
//	                                 -> failed
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

// Outcome reports how a run ended. Trail lists every state entered, in
// order. On a failed submit, Purchases or Reservations hold what was written
// before the failure.
type Outcome struct {
	Action       Action               `json:"action"`
	State        State                `json:"state"`
	Reason       string               `json:"reason,omitempty"`
	Trail        []State              `json:"trail"`
	Purchases    []domain.Purchase    `json:"purchases,omitempty"`
	Reservations []domain.Reservation `json:"reservations,omitempty"`
}

func (o *Outcome) Committed() bool {
	return o.State == StateCommitted
}

type run struct {
	outcome *Outcome
	userID  string
}

func (r *run) enter(state State) {
	r.outcome.State = state
	r.outcome.Trail = append(r.outcome.Trail, state)
	log.Printf("checkout %s user=%s: %s", r.outcome.Action, r.userID, state)
}

// fail moves the run to failed with a user-facing reason and returns err so
// callers can classify it.
func (r *run) fail(err error) (*Outcome, error) {
	r.outcome.Reason = reasonFor(err)
	r.enter(StateFailed)
	metrics.CheckoutTotal.WithLabelValues(string(r.outcome.Action), string(StateFailed)).Inc()
	return r.outcome, err
}

func reasonFor(err error) string {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	var wErr *domain.BackendWriteError
	if errors.As(err, &wErr) {
		return "the order could not be saved, try again later"
	}
	return "checkout is unavailable, try again later"
}
