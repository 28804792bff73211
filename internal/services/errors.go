package services

import (
	"errors"
	"strings"
)

var (
	// ErrBadCredentials means the email/password pair did not match.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrResolveForbidden means the configured resolve policy denies the
	// caller.
	ErrResolveForbidden = errors.New("caller may not resolve this grievance")
)

// ValidationError carries every offending field of a request, not just
// the first one found.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
