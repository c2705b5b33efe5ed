package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrCampaignClosed  = errors.New("campaign is not accepting investments")
	ErrImmutableRecord = errors.New("completed investment is immutable")
)

// ValidationError reports malformed or out-of-range input. It is always
// recoverable: the caller fixes the named field and resubmits.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err into a ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AuthorizationError reports an identity-level refusal: insufficient KYC tier
// or access to another user's records. Not retryable without an out-of-band
// state change.
type AuthorizationError struct {
	Reason       string
	RequiredTier KYCTier
}

func (e *AuthorizationError) Error() string { return e.Reason }

// AsAuthorization unwraps err into an AuthorizationError when possible.
func AsAuthorization(err error) (*AuthorizationError, bool) {
	var ae *AuthorizationError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ExternalError wraps a failure from an external collaborator (payment
// gateway, persistence). The caller may retry the same step.
type ExternalError struct {
	Service string
	Err     error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }
