// Package api implements the infrastructure API façade: request body
// validation, dispatch to the infrastructure service, and translation
// of its responses into the wire shapes HTTP clients expect.
package api

import "fmt"

// BadRequestError is returned when a request body is missing a required
// field. Its message format matches the original service's validation
// error exactly, quotes included, so client-visible behavior doesn't
// change across the rewrite.
type BadRequestError struct {
	Field string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("'%s' is a required field but was not found in the request data body", e.Field)
}

func newBadRequestError(field string) error {
	return &BadRequestError{Field: field}
}
