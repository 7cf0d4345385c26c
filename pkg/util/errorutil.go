package util

import (
	"errors"
	"fmt"
)

// Error codes covering every failure the client surfaces.
const (
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeTransport        = "TRANSPORT"
	CodeServerRejected   = "SERVER_REJECTED"
	CodeNotFound         = "NOT_FOUND"
	CodeDecode           = "DECODE"
)

// ClientError standardizes failures crossing package boundaries. HTTPStatus is
// zero when the failure happened before or without an HTTP response.
type ClientError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError constructs a ClientError.
func NewClientError(code, message string, status int, err error) *ClientError {
	return &ClientError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func NewNotAuthenticated(message string) error {
	if message == "" {
		message = "not authenticated"
	}
	return NewClientError(CodeNotAuthenticated, message, 0, nil)
}

func NewTransportError(message string, err error) error {
	return NewClientError(CodeTransport, message, 0, err)
}

func NewServerRejected(message string, status int) error {
	return NewClientError(CodeServerRejected, message, status, nil)
}

func NewNotFound(resource, id string) error {
	return NewClientError(CodeNotFound, fmt.Sprintf("%s %q not found", resource, id), 0, nil)
}

func NewDecodeError(message string, err error) error {
	return NewClientError(CodeDecode, message, 0, err)
}

// ToClientError converts generic errors to ClientError, wrapping unknown
// failures as transport errors.
func ToClientError(err error) *ClientError {
	if err == nil {
		return nil
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}
	return &ClientError{Code: CodeTransport, Message: err.Error(), Err: err}
}

// CodeOf returns the error code, or empty string for nil/foreign errors.
func CodeOf(err error) string {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code
	}
	return ""
}
