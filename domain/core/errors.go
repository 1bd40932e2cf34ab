package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Pivot errors
	ErrMissingColumn      = errors.New("missing required column")
	ErrInvalidPivotSpec   = errors.New("invalid pivot specification")
	ErrUnknownAggregator  = fmt.Errorf("%w: unknown aggregator", ErrInvalidPivotSpec)
	ErrEmptyPivotSelector = fmt.Errorf("%w: empty column list", ErrInvalidPivotSpec)

	// Workbook errors
	ErrUnsupportedFile = errors.New("unsupported spreadsheet file")
	ErrSheetNotFound   = errors.New("sheet not found")
)

// NewMissingColumnError reports the first column a pivot needed but the table lacks
func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, column)
}

// NewSheetNotFoundError reports a sheet requested by name that the workbook lacks
func NewSheetNotFoundError(sheet, path string) error {
	return fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, path)
}

// IsMissingColumnError reports whether err is the recoverable pivot failure
func IsMissingColumnError(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsPivotSpecError reports whether err came from pivot spec validation
func IsPivotSpecError(err error) bool {
	return errors.Is(err, ErrInvalidPivotSpec)
}
