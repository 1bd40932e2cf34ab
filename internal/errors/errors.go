package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"xlmongo/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. The code is inherited from
// an AppError cause, derived from a domain sentinel, or INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    codeOf(err),
		Message: message,
		Cause:   err,
	}
}

// WrapAs wraps err like Wrap but uses code when nothing more specific can
// be derived from err
func WrapAs(err error, code, message string) error {
	if err == nil {
		return nil
	}
	derived := codeOf(err)
	if derived == CodeInternalError {
		derived = code
	}
	return &AppError{Code: derived, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr == err {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:  code,
		Cause: err,
	}
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain,
// otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

func codeOf(err error) string {
	var appErr *AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr.Code
	case core.IsMissingColumnError(err):
		return CodeMissingColumn
	case core.IsPivotSpecError(err):
		return CodeInvalidPivotSpec
	case stderrors.Is(err, core.ErrUnsupportedFile), stderrors.Is(err, core.ErrSheetNotFound):
		return CodeInvalidInput
	}
	return CodeInternalError
}

// HTTPStatus maps an error code to the status an API response should carry
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput, CodeInvalidPivotSpec, CodeMissingColumn:
		return http.StatusBadRequest
	case CodeDatabaseError:
		return http.StatusBadGateway
	case CodeBusy:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeSpreadsheetError = "SPREADSHEET_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidPivotSpec = "INVALID_PIVOT_SPEC"
	CodeMissingColumn    = "MISSING_COLUMN"
	CodeBusy             = "BUSY"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func SpreadsheetError(message string, cause error) *AppError {
	return &AppError{Code: CodeSpreadsheetError, Message: message, Cause: cause}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InvalidPivotSpec(cause error) *AppError {
	return &AppError{Code: CodeInvalidPivotSpec, Message: "invalid pivot spec", Cause: cause}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
