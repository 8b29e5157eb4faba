package rewriting

import "fmt"

// APICallError represents a failed completion call. It is never retried.
type APICallError struct {
	Section string
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	prefix := "API call failed"
	if e.Section != "" {
		prefix = fmt.Sprintf("API call failed for section %q", e.Section)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
