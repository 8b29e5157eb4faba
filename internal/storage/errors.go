package storage

import "fmt"

// PublishError is returned when an artifact cannot be uploaded
type PublishError struct {
	Destination string
	Message     string
	Cause       error
}

func (e *PublishError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("publish to %s failed: %s: %v", e.Destination, e.Message, e.Cause)
	}
	return fmt.Sprintf("publish to %s failed: %s", e.Destination, e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}
