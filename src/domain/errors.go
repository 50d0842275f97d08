package domain

import (
	"errors"
	"net/http"
)

// ErrorCode pairs a stable error name with the HTTP status it maps to.
type ErrorCode struct {
	Name       string
	StatusCode int
}

var (
	// configuration
	ErrorCodeConfigMissing = ErrorCode{Name: "CONFIG_MISSING", StatusCode: http.StatusInternalServerError}
	ErrorCodeConfigInvalid = ErrorCode{Name: "CONFIG_INVALID", StatusCode: http.StatusInternalServerError}

	// pipeline
	ErrorCodePreconditionFailed = ErrorCode{Name: "PRECONDITION_FAILED", StatusCode: http.StatusPreconditionFailed}
	ErrorCodeRemoteProcess      = ErrorCode{Name: "REMOTE_PROCESS_ERROR", StatusCode: http.StatusBadGateway}

	// http surface
	ErrorCodeParameterInvalid     = ErrorCode{Name: "PARAMETER_INVALID", StatusCode: http.StatusBadRequest}
	ErrorCodeResourceNotFound     = ErrorCode{Name: "RESOURCE_NOT_FOUND", StatusCode: http.StatusNotFound}
	ErrorCodeAuthPermissionDenied = ErrorCode{Name: "AUTH_PERMISSION_DENIED", StatusCode: http.StatusForbidden}
	ErrorCodeAuthNotAuthenticated = ErrorCode{Name: "AUTH_NOT_AUTHENTICATED", StatusCode: http.StatusUnauthorized}
	ErrorCodeInternalProcess      = ErrorCode{Name: "INTERNAL_PROCESS", StatusCode: http.StatusInternalServerError}
	ErrorCodeServiceUnavailable   = ErrorCode{Name: "SERVICE_UNAVAILABLE", StatusCode: http.StatusServiceUnavailable}
)

// DomainError is the error type that crosses package boundaries. The zero value reports an
// unknown internal error, so callers may use it without checking errors.As.
type DomainError struct {
	code      ErrorCode
	err       error
	clientMsg string
	detail    map[string]interface{}
}

type ErrorOption func(*DomainError)

// WithMsg sets the message shown to API clients and CLI users.
func WithMsg(msg string) ErrorOption {
	return func(e *DomainError) { e.clientMsg = msg }
}

func WithDetail(detail map[string]interface{}) ErrorOption {
	return func(e *DomainError) { e.detail = detail }
}

func NewError(code ErrorCode, err error, opts ...ErrorOption) error {
	e := DomainError{code: code, err: err}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e DomainError) Error() string {
	switch {
	case e.err != nil && e.clientMsg != "":
		return e.Name() + ": " + e.clientMsg + ": " + e.err.Error()
	case e.err != nil:
		return e.Name() + ": " + e.err.Error()
	case e.clientMsg != "":
		return e.Name() + ": " + e.clientMsg
	default:
		return e.Name()
	}
}

func (e DomainError) Unwrap() error {
	return e.err
}

func (e DomainError) Name() string {
	if e.code.Name == "" {
		return "UNKNOWN_ERROR"
	}
	return e.code.Name
}

func (e DomainError) HTTPStatus() int {
	if e.code.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.code.StatusCode
}

func (e DomainError) ClientMsg() string {
	return e.clientMsg
}

func (e DomainError) Detail() map[string]interface{} {
	return e.detail
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.code.Name == code.Name
}
