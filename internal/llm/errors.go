package llm

import "errors"

var (
	// ErrMissingCredential indicates no API key was configured.
	ErrMissingCredential = errors.New("completion service credential not configured")

	// ErrUnavailable indicates the completion service is unreachable.
	ErrUnavailable = errors.New("completion service unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("completion request timed out")

	// ErrRequestFailed indicates the service answered with a non-200 status.
	ErrRequestFailed = errors.New("completion request failed")

	// ErrInvalidOutput indicates the response body could not be used.
	ErrInvalidOutput = errors.New("invalid completion output")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("completion retry attempts exhausted")
)
