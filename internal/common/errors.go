package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes, one per failure family.
const (
	CodeConfig    = "CONFIG_ERROR"
	CodeTransport = "TRANSPORT_ERROR"
	CodeParse     = "PARSE_ERROR"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	ErrUnsupported = errors.New("unsupported version/database")
	ErrMissingURL  = errors.New("no source url configured")
	ErrUnavailable = errors.New("source unavailable")
	ErrNoEntries   = errors.New("no journals found")
	ErrAmbiguous   = errors.New("ambiguous journal name")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError reports a rejected request for database id and year.
func ConfigError(database string, year int, cause error) *AppError {
	return NewAppError(CodeConfig, fmt.Sprintf("database %q version %d", database, year), cause)
}

// TransportError reports a download, file or decryption failure for a source location.
func TransportError(database string, year int, source string, cause error) *AppError {
	return NewAppError(CodeTransport, fmt.Sprintf("database %q version %d from %q", database, year, source), cause)
}

// ParseError reports a structural failure for a whole document.
func ParseError(database string, year int, source string, cause error) *AppError {
	return NewAppError(CodeParse, fmt.Sprintf("database %q version %d from %q", database, year, source), cause)
}

// IsConfigError reports whether err was raised before any I/O took place.
func IsConfigError(err error) bool {
	var app *AppError
	return errors.As(err, &app) && app.Code == CodeConfig
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func NotFoundErrorf(format string, args ...interface{}) error {
	return NotFoundError(fmt.Sprintf(format, args...))
}

