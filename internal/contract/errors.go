package contract

import (
	"errors"
	"fmt"
)

// Dispatch failures. Every failure is terminal for the request.
var (
	// ErrInvalidRequest is returned when the request carries no routing field.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned when the requested endpoint has no contract.
	ErrNotFound = errors.New("endpoint not found")

	// ErrAccessDenied is returned when the caller does not satisfy the
	// endpoint's required access level.
	ErrAccessDenied = errors.New("access denied")

	// ErrLookupFailed wraps failures of external collaborators consulted by a
	// rule (uniqueness lookups, challenge lookups). It is an internal error and
	// is never reported as a validation failure.
	ErrLookupFailed = errors.New("rule lookup failed")
)

// Code identifies the reason a rule rejected a value.
type Code string

// Validation codes produced by the evaluator.
const (
	CodeEmptyField           Code = "empty_field"
	CodeAtLeastOneRequired   Code = "at_least_one_field_required"
	CodeInvalidInt           Code = "invalid_int"
	CodeInvalidDate          Code = "invalid_date"
	CodeExceedsCharacters    Code = "exceeds_characters"
	CodeBelowCharacters      Code = "below_characters"
	CodeInUse                Code = "in_use"
	CodeInvalidEmail         Code = "invalid_email"
	CodeInvalidURL           Code = "invalid_url"
	CodeWeakPassword         Code = "weak_password"
	CodeInvalidCharacters    Code = "invalid_characters"
	CodeNoMatch              Code = "no_match"
	CodeNotInList            Code = "not_in_list"
	CodeInvalidCaptcha       Code = "invalid_captcha"
	CodeExceedsMaxFileSize   Code = "exceeds_max_file_size"
	CodeInvalidFileExtension Code = "invalid_file_extension"
)

// ValidationError reports the single rule violation surfaced for a request.
type ValidationError struct {
	Field string
	Code  Code
	// Detail carries the rule argument that explains the failure: the
	// character threshold for length rules, the store field for uniqueness.
	Detail string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.ErrorCode())
}

// ErrorCode renders the flat code clients receive, folding the detail in the
// way the site has always reported it: "below_characters_6", "email_in_use".
func (e *ValidationError) ErrorCode() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	switch e.Code {
	case CodeInUse:
		return e.Detail + "_" + string(e.Code)
	case CodeExceedsCharacters, CodeBelowCharacters:
		return string(e.Code) + "_" + e.Detail
	default:
		return string(e.Code)
	}
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func fail(field string, code Code) *ValidationError {
	return &ValidationError{Field: field, Code: code}
}

func failWith(field string, code Code, detail string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Detail: detail}
}
