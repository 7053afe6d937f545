package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypePermission  ErrorType = "permission"
	ErrorTypeRecognition ErrorType = "recognition"
	ErrorTypeBackend     ErrorType = "backend"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeNotFound    ErrorType = "not_found"
)

const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidFileType  = "INVALID_FILE_TYPE"
	CodeEmptyInput       = "EMPTY_INPUT"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeRecognition      = "RECOGNITION_ERROR"
	CodeBackendFault     = "BACKEND_FAULT"
	CodeAnalysisFailed   = "ANALYSIS_FAILED"
	CodeNotFound         = "NOT_FOUND"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
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
	return false
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

func caller() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf("%s:%d", file, line)
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  caller(),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   caller(),
		Context:  make(map[string]interface{}),
	}
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation:
		h.logger.WarnContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypePermission:
		h.logger.WarnContext(ctx, "Permission error", err.LogFields()...)
	case ErrorTypeNotFound:
		h.logger.InfoContext(ctx, "Not found", err.LogFields()...)
	case ErrorTypeRecognition, ErrorTypeBackend, ErrorTypeInternal:
		h.logger.ErrorContext(ctx, "Action failed", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Predefined errors, matched with errors.Is.
var (
	ErrInvalidInput     = New(ErrorTypeValidation, CodeInvalidInput, "Invalid input provided")
	ErrInvalidFileType  = New(ErrorTypeValidation, CodeInvalidFileType, "Invalid file type")
	ErrEmptyInput       = New(ErrorTypeValidation, CodeEmptyInput, "No input to analyze")
	ErrPermissionDenied = New(ErrorTypePermission, CodePermissionDenied, "Permission denied")
	ErrUnauthenticated  = New(ErrorTypePermission, CodeUnauthenticated, "Sign in required")
	ErrRecognition      = New(ErrorTypeRecognition, CodeRecognition, "Speech recognition failed")
	ErrBackendFault     = New(ErrorTypeBackend, CodeBackendFault, "Backend operation failed")
	ErrAnalysisFailed   = New(ErrorTypeInternal, CodeAnalysisFailed, "Analysis failed")
	ErrNotFound         = New(ErrorTypeNotFound, CodeNotFound, "Not found")
)

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, CodeInvalidInput, message)
}

func NewInvalidFileTypeError(mediaType string) *AppError {
	return New(ErrorTypeValidation, CodeInvalidFileType, "Please select an image file").
		WithContext("media_type", mediaType)
}

func NewEmptyInputError(message string) *AppError {
	return New(ErrorTypeValidation, CodeEmptyInput, message)
}

func NewPermissionDeniedError(err error, capability string) *AppError {
	return Wrap(err, ErrorTypePermission, CodePermissionDenied, fmt.Sprintf("%s access denied", capability)).
		WithContext("capability", capability)
}

func NewUnauthenticatedError() *AppError {
	return New(ErrorTypePermission, CodeUnauthenticated, "Sign in required")
}

func NewRecognitionError(err error) *AppError {
	return Wrap(err, ErrorTypeRecognition, CodeRecognition, "Speech recognition failed")
}

func NewBackendError(err error, operation string) *AppError {
	return Wrap(err, ErrorTypeBackend, CodeBackendFault, fmt.Sprintf("%s failed", operation)).
		WithContext("operation", operation)
}

func NewAnalysisFailedError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, CodeAnalysisFailed, "Analysis failed")
}

func NewNotFoundError(what string) *AppError {
	return New(ErrorTypeNotFound, CodeNotFound, fmt.Sprintf("%s not found", what))
}

// Notification is the transient, user-visible message produced for a failed action.
type Notification struct {
	Title       string
	Description string
}

func (n Notification) String() string {
	return n.Title + ": " + n.Description
}

// UserMessage converts any error into the notification shown to the user.
func UserMessage(err error) Notification {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return Notification{Title: "Something went wrong", Description: "Please try again later"}
	}

	switch appErr.Code {
	case CodeInvalidFileType:
		return Notification{Title: "Invalid file type", Description: "Please select an image file"}
	case CodeEmptyInput:
		return Notification{Title: "No speech detected", Description: "Please record your symptoms first"}
	case CodeInvalidInput:
		return Notification{Title: "Invalid input", Description: appErr.Message}
	case CodePermissionDenied:
		return Notification{Title: "Microphone access denied", Description: "Please allow microphone access to use voice input"}
	case CodeUnauthenticated:
		return Notification{Title: "Sign in required", Description: "Please sign in to continue"}
	case CodeRecognition:
		return Notification{Title: "Speech recognition error", Description: "Please try again"}
	case CodeBackendFault:
		return Notification{Title: "Request failed", Description: appErr.Message}
	case CodeNotFound:
		return Notification{Title: "Not found", Description: appErr.Message}
	default:
		return Notification{Title: "Analysis failed", Description: "Please try again later"}
	}
}
