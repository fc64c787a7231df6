package transcript

import (
	"context"
	"fmt"
)

// MessageHandle is an opaque reference to a sent message, stable for the
// lifetime of one turn.
type MessageHandle interface{}

// Transport delivers rendered chunks to the messaging surface. Both calls
// are bounded by the transport's maximum payload size; the renderer's chunk
// size stays below it with a safety margin.
type Transport interface {
	// Send posts a new message and returns its handle.
	Send(ctx context.Context, text string, markdown bool) (MessageHandle, error)

	// Edit replaces the text of a previously sent message.
	Edit(ctx context.Context, handle MessageHandle, text string, markdown bool) error
}

// FormatError marks a transport rejection of formatted markup, as opposed
// to a delivery failure. The renderer retries such sends with plain text.
type FormatError struct {
	Cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("transport rejected formatted content: %v", e.Cause)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}
