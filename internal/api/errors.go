package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ConfigurationError is returned when a required setting is absent. No call
// to GitHub is made.
type ConfigurationError struct {
	Missing string
}

// Error implements the error interface.
func (e ConfigurationError) Error() string {
	return "Server Configuration Error: " + e.Missing + " missing"
}

// ValidationError is returned when the request lacks a required field.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// PayloadTooLargeError is returned when the request body exceeds Limit bytes.
type PayloadTooLargeError struct {
	Limit int64
}

// Error implements the error interface.
func (e PayloadTooLargeError) Error() string {
	return "Request body too large"
}

// NotFoundError is returned when GitHub has no file at Path.
type NotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	return "File not found"
}

// UpstreamError is GitHub refusing a write. StatusCode is relayed unchanged.
type UpstreamError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

// Error implements the error interface.
func (e UpstreamError) Error() string {
	return e.Message
}

// UnsupportedMethodError is returned for anything but GET, POST and PUT.
type UnsupportedMethodError struct {
	Method string
}

// Error implements the error interface.
func (e UnsupportedMethodError) Error() string {
	return "Method not allowed"
}

// newUpstreamError takes GitHub's "message" when it is a non-empty string.
func newUpstreamError(status int, body json.RawMessage) UpstreamError {
	msg := "GitHub API Error"
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		if m := stringField(fields, "message"); m != "" {
			msg = m
		}
	}
	return UpstreamError{StatusCode: status, Message: msg, Details: body}
}

// errorResponse maps err onto the status and body sent to the caller.
func errorResponse(err error) (int, ErrorResponse) {
	var (
		cfgErr    ConfigurationError
		valErr    ValidationError
		sizeErr   PayloadTooLargeError
		nfErr     NotFoundError
		upErr     UpstreamError
		methodErr UnsupportedMethodError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, ErrorResponse{Error: cfgErr.Error()}
	case errors.As(err, &valErr):
		return http.StatusBadRequest, ErrorResponse{Error: valErr.Error()}
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: sizeErr.Error()}
	case errors.As(err, &nfErr):
		return http.StatusNotFound, ErrorResponse{Error: nfErr.Error()}
	case errors.As(err, &upErr):
		return upErr.StatusCode, ErrorResponse{Error: upErr.Message, Details: upErr.Details}
	case errors.As(err, &methodErr):
		return http.StatusMethodNotAllowed, ErrorResponse{Error: methodErr.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
	}
}
