package services

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// BusyError is returned when a session already has a question in flight.
type BusyError struct{ Message string }

func (e *BusyError) Error() string { return e.Message }

// CompletionError wraps a failure of the hosted model. The conversation log
// is left untouched when it is returned.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string { return "completion failed: " + e.Err.Error() }

func (e *CompletionError) Unwrap() error { return e.Err }
