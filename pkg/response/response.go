package response

import (
	"errors"
	"fmt"
	"net/http"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes rendered by the payment callback listener.
type ErrCode string

var (
	FAILED_REQUEST ErrCode = "REQUEST_FAILED"
	BAD_REQUEST    ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND      ErrCode = "NOT_FOUND"
	CONFLICT       ErrCode = "CONFLICT"
	UNAUTHORIZED   ErrCode = "UNAUTHORIZED"
	VALIDATION     ErrCode = "VALIDATION_FAILED"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("scheduling conflict")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// ErrorBody is the error payload the Garage backend returns on 4xx/5xx.
type ErrorBody struct {
	Message string `json:"message"`
}

// StatusError carries a non-2xx backend response. Unwrap maps well-known
// statuses onto the sentinel errors above so call sites can use errors.Is
// without losing the status and message.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthenticated
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrBadRequest
	}
	return nil
}
