package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified pointflow error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error, such as the
	// descriptor index or the document line that raised it.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a new AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// --- Common Error Constructors ---

// DocumentSyntax creates a new AppError for a malformed pipeline document.
func DocumentSyntax(reason string) *AppError {
	return &AppError{Code: ErrCodeDocumentSyntax, Message: reason}
}

// DriverResolution creates a new AppError for a stage whose driver could not be resolved.
func DriverResolution(reason string) *AppError {
	return &AppError{Code: ErrCodeDriverResolution, Message: reason}
}

// UnknownDriver creates a new AppError for a driver name the registry does not know.
func UnknownDriver(name string) *AppError {
	return &AppError{
		Code: ErrCodeDriverResolution, Message: fmt.Sprintf("unknown driver %q", name),
		Details: map[string]any{"driver": name},
	}
}

// DuplicateTag creates a new AppError for a tag defined more than once.
func DuplicateTag(tag string) *AppError {
	return &AppError{
		Code: ErrCodeTag, Message: fmt.Sprintf("duplicate tag %q", tag),
		Details: map[string]any{"tag": tag},
	}
}

// UndefinedTag creates a new AppError for a reference to a tag not defined earlier.
func UndefinedTag(tag string) *AppError {
	return &AppError{
		Code: ErrCodeTag, Message: fmt.Sprintf("input references undefined tag %q", tag),
		Details: map[string]any{"tag": tag},
	}
}

// Cardinality creates a new AppError for a wrong number of types or inputs.
func Cardinality(reason string) *AppError {
	return &AppError{Code: ErrCodeCardinality, Message: reason}
}

// Structural creates a new AppError for a graph that violates structural rules.
func Structural(reason string) *AppError {
	return &AppError{Code: ErrCodeStructural, Message: reason}
}

// InvalidOption creates a new AppError for an option that cannot be used.
func InvalidOption(name, reason string) *AppError {
	details := make(map[string]any)
	if name != "" {
		details["option"] = name
	}
	return &AppError{
		Code: ErrCodeInvalidOption, Message: fmt.Sprintf("invalid option: %s", reason),
		Details: details,
	}
}

// PluginLoad creates a new AppError for a plugin that could not be loaded.
func PluginLoad(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePluginLoad, Message: fmt.Sprintf("unable to load plugin %s", path),
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// StageFailed creates a new AppError for a stage that failed while running.
func StageFailed(stage string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStageFailed, Message: fmt.Sprintf("stage %s failed", stage),
		Details: map[string]any{"stage": stage}, Cause: cause,
	}
}

// Storage creates a new AppError for a failed storage operation.
func Storage(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("storage operation %s failed", operation),
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// --- Inspection ---

// HasCode reports whether err, or any error it wraps or joins, is an
// AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	found := false
	walk(err, func(e *AppError) bool {
		if e.Code == code {
			found = true
			return false
		}
		return true
	})
	return found
}

// CodeOf returns the code of the first AppError found in err, or "" if none.
func CodeOf(err error) ErrorCode {
	var code ErrorCode
	walk(err, func(e *AppError) bool {
		code = e.Code
		return false
	})
	return code
}

// All returns every AppError found in err in depth-first order.
func All(err error) []*AppError {
	var out []*AppError
	walk(err, func(e *AppError) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Join combines issues into a single error. The first issue stays first so
// errors.As and CodeOf surface it.
func Join(issues ...error) error {
	return stderrors.Join(issues...)
}

// As is errors.As from the standard library.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Is is errors.Is from the standard library.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func walk(err error, fn func(*AppError) bool) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*AppError); ok {
		if !fn(e) {
			return false
		}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if !walk(inner, fn) {
				return false
			}
		}
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), fn)
	}
	return true
}
