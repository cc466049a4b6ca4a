package apperrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeUserNotRegistered ErrorType = "user_not_registered"
	ErrorTypeTokenUnavailable  ErrorType = "token_unavailable"
	ErrorTypeFetchDegraded     ErrorType = "fetch_degraded"
	ErrorTypeDelivery          ErrorType = "delivery"
	ErrorTypeDatabase          ErrorType = "database"
	ErrorTypeInternal          ErrorType = "internal"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Code     string
	Message  string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)

	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  fmt.Sprintf("%s:%d", file, line),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)

	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   fmt.Sprintf("%s:%d", file, line),
		Context:  make(map[string]interface{}),
	}
}

// Predefined errors for the report pipeline. Callers compare with
// errors.Is so wrapped causes stay attached.
var (
	ErrUserNotRegistered = New(ErrorTypeUserNotRegistered, "USER_NOT_REGISTERED", "user not registered for the configured identity")
	ErrTokenUnavailable  = New(ErrorTypeTokenUnavailable, "TOKEN_UNAVAILABLE", "no usable access token for user")
)

// NewDatabaseError wraps a storage failure
func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, "DB_ERROR", "database operation failed")
}

// NewFetchError wraps a metric collection failure with the API that caused it
func NewFetchError(err error, api string) *AppError {
	return Wrap(err, ErrorTypeFetchDegraded, "FETCH_FAILED", fmt.Sprintf("%s fetch failed", api)).
		WithContext("api", api)
}

// NewDeliveryError wraps an outbound message failure
func NewDeliveryError(err error) *AppError {
	return Wrap(err, ErrorTypeDelivery, "DELIVERY_FAILED", "report delivery failed")
}
