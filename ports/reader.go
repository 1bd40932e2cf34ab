package ports

import (
	"context"

	"xlmongo/domain/pivot"
	"xlmongo/domain/tabular"
)

// WorkbookReader reads spreadsheet files into sheets of documents.
// An empty sheet name selects every sheet.
type WorkbookReader interface {
	ReadSheets(ctx context.Context, path, sheet string) ([]tabular.Sheet, error)
}

// WorkbookWriter writes the validated table and its pivot to one workbook
type WorkbookWriter interface {
	WriteExport(ctx context.Context, path string, validated tabular.Table, result *pivot.Result) error
	// SheetNames returns the validated and pivot sheet names, in that order
	SheetNames() []string
}
