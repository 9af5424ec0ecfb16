package services

import "net/http"

// Error kinds surfaced to the HTTP layer alongside the status code.
const (
	KindInvalidInput = "invalid_input"
	KindNotFound     = "not_found"
	KindInvalidState = "invalid_state"
	KindConflict     = "conflict"
	KindInternal     = "internal_error"
)

// ServiceError carries the HTTP status and machine-readable kind for an
// engine failure, so controllers map it straight onto the response.
type ServiceError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func invalidInput(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Kind: KindInvalidInput, Message: msg}
}

func notFound(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Kind: KindNotFound, Message: msg}
}

func invalidState(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Kind: KindInvalidState, Message: msg}
}

func internal(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Kind: KindInternal, Message: msg}
}
