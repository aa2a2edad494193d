package command

import "errors"

// Validation failures are client-input errors: callers translate them into a
// protocol-specific negative acknowledgment and keep running.
var (
	// ErrPayloadTooLarge means the message body exceeds the payload budget.
	ErrPayloadTooLarge = errors.New("command: payload too large")

	// ErrInvalidEncoding means the body is not valid UTF-8 text.
	ErrInvalidEncoding = errors.New("command: payload is not valid UTF-8")

	// ErrMalformedPayload means the body is not a JSON array of {r,g,b}
	// objects with byte-range channels.
	ErrMalformedPayload = errors.New("command: malformed payload")
)

// IsClientError reports whether err is a validation failure rather than an
// internal fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrPayloadTooLarge) ||
		errors.Is(err, ErrInvalidEncoding) ||
		errors.Is(err, ErrMalformedPayload)
}
