package gateway

import (
	"errors"
	"fmt"
)

// TransportError means the API could not be reached or the exchange broke off.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: api unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError is a 4xx response carrying the server's message.
type ValidationError struct {
	Op      string
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request rejected (%d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NotFoundError means the referenced id no longer exists.
type NotFoundError struct {
	Op      string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: not found", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// UnexpectedError covers server faults and undecodable responses.
type UnexpectedError struct {
	Op     string
	Status int
	Err    error
}

func (e *UnexpectedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected response (%d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Message returns the text suitable for showing next to a form or in a notice.
func Message(err error) string {
	var (
		ve *ValidationError
		nf *NotFoundError
		te *TransportError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve) && ve.Message != "":
		return ve.Message
	case errors.As(err, &nf):
		if nf.Message != "" {
			return nf.Message
		}
		return "record not found"
	case errors.As(err, &te):
		return "connection error: please ensure the API server is running"
	}
	return "unexpected error, please try again"
}

// outcome labels a result for metrics.
func outcome(err error) string {
	var (
		ve *ValidationError
		nf *NotFoundError
		te *TransportError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &te):
		return "transport"
	}
	return "unexpected"
}
