package config

import "fmt"

// Error is a configuration error: malformed settings, persona data or requests.
// It is fatal for the operation that hit it and is never replaced by a default value.
type Error struct {
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	prefix := "config error"
	if e.Field != "" {
		prefix = fmt.Sprintf("config error: '%s'", e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Errorf builds an Error for a field
func Errorf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}
