package enginerr

import "fmt"

// ExternalServiceError wraps a failed or timed-out call to a reasoning,
// search, or session service. Retrieval steps recover from it locally by
// degrading to an empty outcome; gating steps (clarity, routing) propagate it.
type ExternalServiceError struct {
	Service string // "reasoning" | "corpus-search" | "web-search" | "session-store"
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// External wraps err as an ExternalServiceError for the named service.
func External(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}

// ValidationError reports malformed caller input. Surfaced immediately,
// never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// SynthesisError reports a failed merge of source results. The synthesizer
// recovers by falling back to the single-source attribution path.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
