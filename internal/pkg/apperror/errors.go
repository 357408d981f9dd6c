package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Callers match with errors.Is and
// the HTTP layer maps them to status codes in serverutils.ErrorHandlerMiddleware.
var (
	// ErrInvalidQuery rejects malformed requests before any backend is touched:
	// empty query text, unknown request type, unknown facet name, bad pagination.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNotFound marks lookups of ids that do not exist in the corpus.
	ErrNotFound = errors.New("not found")

	// ErrIngestRunning is returned when an ingestion run is requested while
	// another run holds the corpus lock.
	ErrIngestRunning = errors.New("ingestion already running")

	// ErrEmbeddingUnavailable wraps failures of the embedding backend.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable wraps failures of the generation backend after
	// the retry budget is spent.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrRetrievalUnavailable wraps storage failures that survived one retry.
	ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")
)

// Invalid wraps ErrInvalidQuery with a reason the client can act on.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

// Wrap chains a sentinel over an underlying cause so both errors.Is checks hold.
func Wrap(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
