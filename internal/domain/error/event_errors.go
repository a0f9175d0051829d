package error

import "errors"

// Event bus boundary errors.
var (
	// ErrUnknownEventName is returned when an envelope names an event this
	// service does not know how to decode.
	ErrUnknownEventName = errors.New("unknown event name")

	// ErrMalformedEventPayload is returned when an envelope payload does not
	// match the schema for its event name.
	ErrMalformedEventPayload = errors.New("malformed event payload")

	// ErrStaleAggregateUpdate is returned when a bulk aggregate update is
	// older than the locally stored state and must be discarded.
	ErrStaleAggregateUpdate = errors.New("stale aggregate update")
)
