package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST     ErrCode = "REQUEST_FAILED"
	BAD_REQUEST        ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED  ErrCode = "VALIDATION_FAILED"
	UNAUTHENTICATED    ErrCode = "UNAUTHENTICATED"
	FORBIDDEN          ErrCode = "FORBIDDEN"
	NOT_FOUND          ErrCode = "NOT_FOUND"
	CONFLICT           ErrCode = "CONFLICT"
	INVALID_STATE      ErrCode = "INVALID_STATE"
	SLOT_NOT_AVAILABLE ErrCode = "SLOT_NOT_AVAILABLE"
	INVALID_TIME       ErrCode = "INVALID_TIME"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("actor is not allowed to perform this action")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrSlotNotAvailable = errors.New("slot is not available")
	ErrInvalidTime      = errors.New("proposed time must be in the future")
)

// ValidationErr carries a client-facing reason and matches ErrValidation.
type ValidationErr struct {
	Msg string
}

func (e *ValidationErr) Error() string {
	return e.Msg
}

func (e *ValidationErr) Is(target error) bool {
	return target == ErrValidation
}

func Validation(format string, args ...any) error {
	return &ValidationErr{Msg: fmt.Sprintf(format, args...)}
}

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// FromError maps a service error to an HTTP status and error code.
// Unknown errors are treated as infrastructure failures.
func FromError(err error) (int, ErrCode) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, NOT_FOUND
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden, FORBIDDEN
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict, INVALID_STATE
	case errors.Is(err, ErrSlotNotAvailable):
		return http.StatusConflict, SLOT_NOT_AVAILABLE
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, CONFLICT
	case errors.Is(err, ErrInvalidTime):
		return http.StatusUnprocessableEntity, INVALID_TIME
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, VALIDATION_FAILED
	default:
		return http.StatusInternalServerError, FAILED_REQUEST
	}
}

// Message returns the client-facing message for a mapped error. Internal
// errors get the fallback so storage details never leak.
func Message(err error, fallback string) string {
	status, _ := FromError(err)
	if status == http.StatusInternalServerError {
		return fallback
	}
	var verr *ValidationErr
	if errors.As(err, &verr) {
		return verr.Msg
	}
	for _, known := range []error{ErrNotFound, ErrUnauthorized, ErrInvalidState, ErrSlotNotAvailable, ErrConflict, ErrInvalidTime} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is required", err.Field()))
		case "min":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at least %s", err.Field(), err.Param()))
		case "max":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be one of [%s]", err.Field(), err.Param()))
		case "datetime":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must match layout %s", err.Field(), err.Param()))
		default:
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is invalid", err.Field()))
		}
	}

	return Error(string(VALIDATION_FAILED), strings.Join(errMsg, ", "))
}
