package llm

import "errors"

var (
	// ErrProviderUnavailable indicates the provider could not be reached.
	ErrProviderUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the response could not be parsed into
	// the expected structured format or failed its schema validator.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrEmbeddingShape indicates the provider returned the wrong number
	// of vectors or vectors of inconsistent dimensionality.
	ErrEmbeddingShape = errors.New("unexpected embedding shape")
)

// IsOutage reports whether err means the provider itself failed, as
// opposed to answering with unusable output.
func IsOutage(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRetryExhausted)
}
