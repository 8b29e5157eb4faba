package compiler

import "fmt"

// WorkspaceError reports a filesystem problem around compilation: creating the
// scoped workspace or moving the artifact out of it. A document that simply
// fails to compile is not an error; see Result.Succeeded.
type WorkspaceError struct {
	Message string
	Cause   error
}

func (e *WorkspaceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compile workspace error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("compile workspace error: %s", e.Message)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Cause
}
