package domain

// ValidationError is bad user input: card fields, an empty cart, package form
// fields. The user has to correct the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError covers bad credentials and duplicate registrations.
type AuthError struct {
	Message   string
	Duplicate bool
}

func (e *AuthError) Error() string {
	return e.Message
}

// BackendWriteError wraps a persistence failure. No automatic retry or
// rollback is attempted.
type BackendWriteError struct {
	Op  string
	Err error
}

func (e *BackendWriteError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendWriteError) Unwrap() error {
	return e.Err
}
