package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. The HTTP layer maps kinds to status codes.
type Kind string

const (
	KindValidation         Kind = "VALIDATION"
	KindConflict           Kind = "CONFLICT"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInternal           Kind = "INTERNAL"
)

// Machine-readable codes carried next to the kind.
const (
	CodeInvalidInput          = "INVALID_INPUT"
	CodeEmptyLayout           = "EMPTY_LAYOUT"
	CodeInvalidLayout         = "INVALID_LAYOUT"
	CodeDuplicateSeatPosition = "DUPLICATE_SEAT_POSITION"
	CodeInvalidScheme         = "INVALID_NUMBERING_SCHEME"
	CodeSeatsUnavailable      = "SEATS_UNAVAILABLE"
	CodeInventoryInUse        = "INVENTORY_IN_USE"
	CodeHoldExpired           = "HOLD_EXPIRED"
	CodeNoActiveHold          = "NO_ACTIVE_HOLD"
	CodePromoInvalid          = "PROMO_INVALID"
	CodePromoExhausted        = "PROMO_EXHAUSTED"
	CodeWrongEvent            = "WRONG_EVENT"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeNotFound              = "NOT_FOUND"
	CodeInternal              = "INTERNAL_ERROR"
)

// Error is the error type returned by services.
type Error struct {
	Kind    Kind                   `json:"kind"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithField attaches a detail to the error and returns it.
func (e *Error) WithField(key string, value interface{}) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithCause records the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, format string, args ...interface{}) *Error {
	return New(KindValidation, code, fmt.Sprintf(format, args...))
}

func Conflict(code, format string, args ...interface{}) *Error {
	return New(KindConflict, code, fmt.Sprintf(format, args...))
}

func PreconditionFailed(code, format string, args ...interface{}) *Error {
	return New(KindPreconditionFailed, code, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, CodeNotFound, fmt.Sprintf(format, args...))
}

func Unauthorized(code, format string, args ...interface{}) *Error {
	return New(KindUnauthorized, code, fmt.Sprintf(format, args...))
}

// Internal wraps an unexpected failure.
func Internal(err error, format string, args ...interface{}) *Error {
	return New(KindInternal, CodeInternal, fmt.Sprintf(format, args...)).WithCause(err)
}

// UnavailableSeat names one seat that blocked a reservation.
type UnavailableSeat struct {
	SeatID string `json:"seat_id"`
	Reason string `json:"reason"`
}

// SeatsUnavailable builds the conflict returned when a reservation cannot take every seat.
func SeatsUnavailable(seats []UnavailableSeat) *Error {
	return Conflict(CodeSeatsUnavailable, "%d seat(s) are no longer available", len(seats)).
		WithField("unavailable_seats", seats)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err; unknown errors are internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsNotFound(err error) bool           { return IsKind(err, KindNotFound) }
func IsConflict(err error) bool           { return IsKind(err, KindConflict) }
func IsValidation(err error) bool         { return IsKind(err, KindValidation) }
func IsPreconditionFailed(err error) bool { return IsKind(err, KindPreconditionFailed) }

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// UnavailableSeatsOf extracts the seat list from a reservation conflict.
func UnavailableSeatsOf(err error) []UnavailableSeat {
	appErr, ok := As(err)
	if !ok || appErr.Fields == nil {
		return nil
	}
	seats, _ := appErr.Fields["unavailable_seats"].([]UnavailableSeat)
	return seats
}
