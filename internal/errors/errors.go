// Package errors provides custom error types for the geminichat client.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNoAPIKey         = errors.New("no API key configured")
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
	ErrInvalidResponse  = errors.New("invalid response format")
	ErrNoContent        = errors.New("no content in response")
	ErrRequestInFlight  = errors.New("a request is already in progress")
	ErrAllModelsFailed  = errors.New("all models failed")
	ErrEditActive       = errors.New("another message is being edited")
	ErrInvalidEditIndex = errors.New("edit index out of range")
	ErrNotUserMessage   = errors.New("only user messages can be edited")
)

// APIError represents a non-200 answer from the API
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Status     string // e.g. RESOURCE_EXHAUSTED, PERMISSION_DENIED
	Reason     string // e.g. API_KEY_INVALID
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Status != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Status)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, msg)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, msg)
}

// Is matches ErrAuthFailed for rejected keys
func (e *APIError) Is(target error) bool {
	if target == ErrAuthFailed {
		return e.isAuth()
	}
	_, ok := target.(*APIError)
	return ok
}

func (e *APIError) isAuth() bool {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return true
	}
	return e.Reason == "API_KEY_INVALID" || e.Status == "UNAUTHENTICATED"
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates an APIError that keeps the raw response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NetworkError wraps transport failures
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Err: err}
}

// NewNetworkErrorWithEndpoint creates a NetworkError carrying the endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// EmptyResponseError is returned when a model answers without text
type EmptyResponseError struct {
	Model        string
	FinishReason string
}

func (e *EmptyResponseError) Error() string {
	if e.FinishReason != "" {
		return fmt.Sprintf("model %s returned no text (finish reason: %s)", e.Model, e.FinishReason)
	}
	return fmt.Sprintf("model %s returned no text", e.Model)
}

// Is matches ErrNoContent
func (e *EmptyResponseError) Is(target error) bool {
	return target == ErrNoContent
}

// NewEmptyResponseError creates a new EmptyResponseError
func NewEmptyResponseError(model, finishReason string) *EmptyResponseError {
	return &EmptyResponseError{Model: model, FinishReason: finishReason}
}

// IsAuthError reports whether the API rejected the credentials
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsRateLimitError reports whether the API answered with a quota error
func IsRateLimitError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}

// IsNetworkError reports whether the failure happened in the transport
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether the request timed out
func IsTimeoutError(err error) bool {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "deadline exceeded")
}

// GetHTTPStatus extracts the HTTP status from an APIError, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint from structured errors
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody extracts the raw body kept on an APIError
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}
