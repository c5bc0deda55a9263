package api

import (
	"errors"
	"net/http"

	"github.com/gryp17/Tablaturi-bg-API/internal/api/middleware"
	"github.com/gryp17/Tablaturi-bg-API/internal/api/shared"
	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/mail"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// Error codes reported to clients besides the validation codes.
const (
	CodeInvalidRequest        = "invalid_request"
	CodeNotFound              = "not_found"
	CodeAccessDenied          = "access_denied"
	CodeDBError               = "db_error"
	CodeEmailError            = "email_error"
	CodeInvalidLogin          = "invalid_login"
	CodeEmailAlreadyActivated = "email_already_activated"
	CodeEmailNotFound         = "email_not_found"
	CodeInvalidOrExpiredToken = "invalid_or_expired_token"
)

// ErrorCodes is the catalogue served by misc/getErrorCodes. The front end
// keys its messages by these names. Length and uniqueness codes are
// prefixes or suffixes completed with the threshold or the field name.
var ErrorCodes = map[string]string{
	"INVALID_REQUEST":             CodeInvalidRequest,
	"NOT_FOUND":                   CodeNotFound,
	"ACCESS_DENIED":               CodeAccessDenied,
	"DB_ERROR":                    CodeDBError,
	"EMAIL_ERROR":                 CodeEmailError,
	"INVALID_LOGIN":               CodeInvalidLogin,
	"EMAIL_ALREADY_ACTIVATED":     CodeEmailAlreadyActivated,
	"EMAIL_NOT_FOUND":             CodeEmailNotFound,
	"INVALID_OR_EXPIRED_TOKEN":    CodeInvalidOrExpiredToken,
	"TOO_MANY_REQUESTS":           middleware.CodeTooManyRequests,
	"EMPTY_FIELD":                 string(contract.CodeEmptyField),
	"AT_LEAST_ONE_FIELD_REQUIRED": string(contract.CodeAtLeastOneRequired),
	"INVALID_INT":                 string(contract.CodeInvalidInt),
	"INVALID_DATE":                string(contract.CodeInvalidDate),
	"EXCEEDS_CHARACTERS_":         string(contract.CodeExceedsCharacters) + "_",
	"BELOW_CHARACTERS_":           string(contract.CodeBelowCharacters) + "_",
	"_IN_USE":                     "_" + string(contract.CodeInUse),
	"INVALID_EMAIL":               string(contract.CodeInvalidEmail),
	"INVALID_URL":                 string(contract.CodeInvalidURL),
	"WEAK_PASSWORD":               string(contract.CodeWeakPassword),
	"INVALID_CHARACTERS":          string(contract.CodeInvalidCharacters),
	"NO_MATCH":                    string(contract.CodeNoMatch),
	"NOT_IN_LIST":                 string(contract.CodeNotInList),
	"INVALID_CAPTCHA":             string(contract.CodeInvalidCaptcha),
	"EXCEEDS_MAX_FILE_SIZE":       string(contract.CodeExceedsMaxFileSize),
	"INVALID_FILE_EXTENSION":      string(contract.CodeInvalidFileExtension),
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	if _, ok := contract.AsValidationError(err); ok {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, contract.ErrAccessDenied):
		return http.StatusForbidden

	case errors.Is(err, contract.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, storage.ErrUnknownArea):
		return http.StatusNotFound

	case errors.Is(err, contract.ErrInvalidRequest),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrInvalidLogin),
		errors.Is(err, service.ErrAlreadyActivated),
		errors.Is(err, service.ErrEmailNotFound),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// errorPayload returns what the client sees under "error": a bare code, or a
// shared.FieldError when the failure belongs to one form field.
func errorPayload(err error) any {
	if verr, ok := contract.AsValidationError(err); ok {
		return shared.FieldError{Field: verr.Field, ErrorCode: verr.ErrorCode()}
	}

	switch {
	case errors.Is(err, service.ErrInvalidLogin):
		return shared.FieldError{Field: "password", ErrorCode: CodeInvalidLogin}
	case errors.Is(err, service.ErrAlreadyActivated):
		return shared.FieldError{Field: "email", ErrorCode: CodeEmailAlreadyActivated}
	case errors.Is(err, service.ErrEmailNotFound):
		return shared.FieldError{Field: "email", ErrorCode: CodeEmailNotFound}
	case errors.Is(err, service.ErrInvalidToken):
		return shared.FieldError{Field: "hash", ErrorCode: CodeInvalidOrExpiredToken}
	case errors.Is(err, store.ErrEmailExists):
		return shared.FieldError{Field: "email", ErrorCode: "email_" + string(contract.CodeInUse)}
	case errors.Is(err, store.ErrUsernameExists):
		return shared.FieldError{Field: "username", ErrorCode: "username_" + string(contract.CodeInUse)}

	case errors.Is(err, contract.ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, contract.ErrInvalidRequest),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrDuplicate):
		return CodeInvalidRequest
	case MapErrorToStatusCode(err) == http.StatusNotFound:
		return CodeNotFound
	case errors.Is(err, service.ErrMailFailed),
		errors.Is(err, mail.ErrSendFailed):
		return CodeEmailError
	default:
		return CodeDBError
	}
}
