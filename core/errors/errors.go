package errors

import "fmt"

type ErrorCode string

const (
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrForbidden          ErrorCode = "PERMISSION_DENIED"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"

	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	ErrCreateFailed ErrorCode = "CREATE_FAILED"
	ErrGetFailed    ErrorCode = "GET_FAILED"
	ErrUpdateFailed ErrorCode = "UPDATE_FAILED"
	ErrDeleteFailed ErrorCode = "DELETE_FAILED"

	// Scheduling
	ErrInvalidRecurrenceRule ErrorCode = "INVALID_RECURRENCE_RULE"
	ErrInvalidWindow         ErrorCode = "INVALID_WINDOW"
	ErrInvalidSlotSize       ErrorCode = "INVALID_SLOT_SIZE"
	ErrInvalidVisibility     ErrorCode = "INVALID_VISIBILITY"
	ErrQueryTooLarge         ErrorCode = "QUERY_TOO_LARGE"
)

// ErrPermissionDenied is the scheduling name for ErrForbidden.
const ErrPermissionDenied = ErrForbidden

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether err is an *AppError carrying code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	ae, ok := err.(*AppError)
	return ok && ae != nil && ae.Code == code
}
