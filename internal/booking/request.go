package booking

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrMissingName is returned when the contact name is empty.
	ErrMissingName = errors.New("booking: name is required")

	// ErrInvalidEmail is returned when the email is empty or malformed.
	ErrInvalidEmail = errors.New("booking: a valid email is required")

	// ErrIncompleteSelection is returned when date or time is missing.
	ErrIncompleteSelection = errors.New("booking: date and time must be chosen first")
)

// Good enough for a booking form: something@something.tld. Real
// verification happens when the backend sends the confirmation mail.
var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Request is the composed booking sent to the backend. Reference is a
// client-generated id so the backend can deduplicate retried requests.
type Request struct {
	Reference string `json:"reference"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message,omitempty"`
}

// Validate checks the request locally, before any backend call.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if !emailShape.MatchString(strings.TrimSpace(r.Email)) {
		return ErrInvalidEmail
	}
	if r.Date == "" || r.Time == "" {
		return ErrIncompleteSelection
	}
	return nil
}

// IsValidationError reports whether err is one of the local validation
// failures, as opposed to a backend or in-flight rejection.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingName) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrIncompleteSelection)
}
