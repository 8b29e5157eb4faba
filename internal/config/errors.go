package config

import "fmt"

// MissingCredentialError reports a required credential that is not set.
type MissingCredentialError struct {
	Variable string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is not set; add it to the environment or a .env file", e.Variable)
}
