// Package errcode provides layered error codes shared by every module of the service.
// Code layout: MMBBBB (MM = module code, BBBB = business code)
package errcode

import (
	"fmt"
	"net/http"
)

// LayeredError is an error carrying a module-scoped code, an i18n message key,
// an HTTP status and an optional cause.
type LayeredError struct {
	module     string
	code       int
	msgKey     string
	msg        string
	httpStatus int
	data       map[string]interface{}
	cause      error
}

// New creates a layered error. httpStatus defaults to 200 when omitted.
func New(moduleCode, businessCode int, module, msgKey, msg string, httpStatus ...int) *LayeredError {
	status := http.StatusOK
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		msgKey:     msgKey,
		msg:        msg,
		httpStatus: status,
		data:       make(map[string]interface{}),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the full MMBBBB code
func (e *LayeredError) Code() int {
	return e.code
}

// Module returns the owning module name
func (e *LayeredError) Module() string {
	return e.module
}

// MsgKey returns the i18n message key
func (e *LayeredError) MsgKey() string {
	return e.msgKey
}

// Message returns the message without the cause
func (e *LayeredError) Message() string {
	return e.msg
}

// HTTPStatus returns the status the HTTP layer should answer with
func (e *LayeredError) HTTPStatus() int {
	return e.httpStatus
}

// Data returns the attached context data
func (e *LayeredError) Data() map[string]interface{} {
	return e.data
}

// Cause returns the wrapped error
func (e *LayeredError) Cause() error {
	return e.cause
}

// Unwrap supports errors.Is / errors.As on the cause chain
func (e *LayeredError) Unwrap() error {
	return e.cause
}

// Is matches another LayeredError by code, so a wrapped instance still
// satisfies errors.Is against its sentinel.
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

// WithMsg returns a copy with a replaced message
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf returns a copy with a formatted message
func (e *LayeredError) WithMsgf(format string, args ...interface{}) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData returns a copy with one extra context value
func (e *LayeredError) WithData(key string, value interface{}) *LayeredError {
	clone := *e
	clone.data = make(map[string]interface{}, len(e.data)+1)
	for k, v := range e.data {
		clone.data[k] = v
	}
	clone.data[key] = value
	return &clone
}

// Wrap returns a copy carrying cause. A nil cause returns the receiver.
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Wrapf wraps cause and replaces the message
func (e *LayeredError) Wrapf(cause error, format string, args ...interface{}) *LayeredError {
	clone := e.WithMsgf(format, args...)
	clone.cause = cause
	return clone
}

// String renders the error for debug logs, cause included
func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}",
			e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}", e.code, e.module, e.msg)
}
