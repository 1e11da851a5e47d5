// errors.go - Error taxonomy for the login endpoint and its HTTP mapping

package handlers // Declares the package name

import ( // Import required packages
	"errors"   // For errors.As classification
	"fmt"      // Error messages
	"net/http" // HTTP status codes
)

// Public messages, returned verbatim in the "message" field.
const (
	MsgEmailRequired = "Email is required."
	MsgLoginSuccess  = "Login successful!"
	MsgEmailNotFound = "Email not found."
	MsgServerError   = "Server error."
)

// ErrValidation indicates the request body is missing a required field
type ErrValidation struct {
	Field string // Name of the missing field
	Err   error  // Decode or check failure, logged only
}

func (e *ErrValidation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation error: %s is required: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("validation error: %s is required", e.Field)
}

func (e *ErrValidation) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates no user matched the email
type ErrNotFound struct {
	Email string // The address that was looked up
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.Email)
}

// ErrInfrastructure wraps a database connectivity or query failure.
// Its detail is logged, never sent to the client.
type ErrInfrastructure struct {
	Op  string // What was being attempted
	Err error  // Driver or connection error
}

func (e *ErrInfrastructure) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrInfrastructure) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var notFound *ErrNotFound
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the fixed client-facing message for an error
func Message(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return MsgEmailRequired
	case http.StatusNotFound:
		return MsgEmailNotFound
	default:
		return MsgServerError
	}
}
