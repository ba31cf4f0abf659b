package ports

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by EventBus implementations.
// None of them are fatal: the failed operation is skipped and the bus keeps working.
var (
	// ErrCapacityExceeded is wrapped by every capacity error.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	ErrTooManySubscribers = fmt.Errorf("max subscribers reached: %w", ErrCapacityExceeded)
	ErrTooManyTopics      = fmt.Errorf("max topics per subscriber reached: %w", ErrCapacityExceeded)

	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrNotSubscribed      = errors.New("subscriber is not subscribed to topic")

	ErrInvalidTopic        = errors.New("invalid topic")
	ErrInvalidSubscriberID = errors.New("invalid subscriber id")
	ErrInvalidSourceID     = errors.New("invalid source id")
	ErrNilHandler          = errors.New("handler cannot be nil")
)

// HandlerError wraps an error returned by one subscriber's handler.
type HandlerError struct {
	SubscriberID string
	Topic        string
	Err          error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for subscriber %q on topic %q: %v", e.SubscriberID, e.Topic, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
