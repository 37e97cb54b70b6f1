package notify

import (
	"context"
	"errors"
	"time"
)

const (
	KindUser    = "user"
	KindVehicle = "vehicle"

	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Decision is the event emitted after a verified record is saved.
type Decision struct {
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	RecordID  int       `json:"record_id"`
	SubjectID int       `json:"subject_id"`
	Subject   string    `json:"subject"`
	Verified  bool      `json:"verified"`
	Rejected  bool      `json:"rejected"`
	WillActAt time.Time `json:"will_act_at"`
}

type Notifier interface {
	NotifyDecision(ctx context.Context, d Decision) error
}

type nop struct{}

func (nop) NotifyDecision(context.Context, Decision) error { return nil }

// Nop drops every event.
func Nop() Notifier { return nop{} }

type multi []Notifier

// Multi sends the event to every sink and joins their errors.
func Multi(sinks ...Notifier) Notifier {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 0 {
		return Nop()
	}
	return m
}

func (m multi) NotifyDecision(ctx context.Context, d Decision) error {
	var errs []error
	for _, s := range m {
		if err := s.NotifyDecision(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sendWithContext runs a blocking send and stops waiting once ctx is done.
// The send itself is bounded by the sink's own client timeout.
func sendWithContext(ctx context.Context, send func() error) error {
	done := make(chan error, 1)
	go func() { done <- send() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
