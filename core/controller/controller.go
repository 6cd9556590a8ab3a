package controller

import (
	"net/http"
	"time"

	"calendar-service/core/errors"
	"calendar-service/core/logger"

	"github.com/labstack/echo/v4"
)

// Response types
type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Status    string           `json:"status"`
		Code      errors.ErrorCode `json:"code"`
		Message   string           `json:"message"`
		Details   any              `json:"details,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}
)

type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	SuccessResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func NewSuccessResponse(httpStatusCode int, data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Status:    httpStatusCode,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func newErrorBody(appErrCode errors.ErrorCode, message string, details ...any) *ErrorResponse {
	body := &ErrorResponse{
		Status:    "error",
		Code:      appErrCode,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 {
		body.Details = details[0]
	}
	return body
}

// NewErrorResponse builds an echo error whose message is the error envelope.
// HTTPErrorHandler writes it unchanged.
func NewErrorResponse(httpStatusCode int, appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return echo.NewHTTPError(httpStatusCode, newErrorBody(appErrCode, message, details...))
}

// StatusFor maps an application error code to its HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData,
		errors.ErrInvalidRecurrenceRule, errors.ErrInvalidWindow,
		errors.ErrInvalidSlotSize, errors.ErrInvalidVisibility:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat, errors.ErrMissingAuthorizationHeader:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrAlreadyExists:
		return http.StatusConflict
	case errors.ErrQueryTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusBadRequest, appErrCode, message, details...)
}

func (h *responseHandler) Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusUnauthorized, appErrCode, message, details...)
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, data, message))
}

func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "internal server error"

	if ae, ok := err.(*errors.AppError); ok && ae != nil {
		appCode = ae.Code
		httpStatus = StatusFor(appCode)
		if ae.Message != "" && httpStatus != http.StatusInternalServerError {
			msg = ae.Message
		}
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.Error("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"error", err,
		)
	} else {
		logger.Warn("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"message", msg,
		)
	}
	return c.JSON(httpStatus, newErrorBody(appCode, msg))
}

// HTTPErrorHandler renders every echo error with the same envelope as
// ErrorResponse.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var body *ErrorResponse
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch m := he.Message.(type) {
		case *ErrorResponse:
			body = m
		case string:
			body = newErrorBody(codeForStatus(status), m)
		default:
			body = newErrorBody(codeForStatus(status), http.StatusText(status))
		}
	} else {
		logger.Error("HTTPErrorHandler:Unhandled", err)
		body = newErrorBody(errors.ErrInternalServer, "internal server error")
	}

	if err := c.JSON(status, body); err != nil {
		logger.Error("HTTPErrorHandler:Write", err)
	}
}

func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return errors.ErrInvalidInput
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case http.StatusForbidden:
		return errors.ErrForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errors.ErrNotFound
	case http.StatusRequestEntityTooLarge:
		return errors.ErrQueryTooLarge
	default:
		return errors.ErrInternalServer
	}
}
