package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"xlmongo/domain/pivot"
	"xlmongo/domain/tabular"
	"xlmongo/internal/logging"
)

// ExportWriter writes the validated table and its pivot into one workbook
type ExportWriter struct {
	config WriterConfig
	logger *zap.Logger
}

// NewExportWriter creates a writer with the given sheet layout
func NewExportWriter(config WriterConfig, logger *zap.Logger) *ExportWriter {
	defaults := DefaultWriterConfig()
	if config.ValidatedSheet == "" {
		config.ValidatedSheet = defaults.ValidatedSheet
	}
	if config.PivotSheet == "" {
		config.PivotSheet = defaults.PivotSheet
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWriter{config: config, logger: logger}
}

// Config returns the effective sheet layout
func (w *ExportWriter) Config() WriterConfig {
	return w.config
}

// SheetNames returns the validated and pivot sheet names
func (w *ExportWriter) SheetNames() []string {
	return []string{w.config.ValidatedSheet, w.config.PivotSheet}
}

// WriteExport saves a workbook at path with the validated table on the first
// sheet and the pivot on the second. A nil or empty pivot yields an empty sheet.
func (w *ExportWriter) WriteExport(ctx context.Context, path string, validated tabular.Table, result *pivot.Result) error {
	logger := logging.FromContext(ctx, w.logger)

	f := excelize.NewFile()
	defer f.Close()

	validatedIdx, err := f.NewSheet(w.config.ValidatedSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", w.config.ValidatedSheet, err)
	}
	if _, err := f.NewSheet(w.config.PivotSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", w.config.PivotSheet, err)
	}
	f.SetActiveSheet(validatedIdx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle := 0
	if w.config.BoldHeaders {
		headerStyle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
	}

	if err := w.writeTable(f, validated, headerStyle); err != nil {
		return err
	}
	if err := w.writePivot(f, result, headerStyle); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	logger.Debug("workbook written",
		zap.String("path", path),
		zap.Strings("sheets", w.SheetNames()),
	)
	return nil
}

// writeTable writes a header row and one row per table row, without an
// index column
func (w *ExportWriter) writeTable(f *excelize.File, table tabular.Table, headerStyle int) error {
	sheet := w.config.ValidatedSheet

	header := make([]interface{}, len(table.Columns))
	for i, name := range table.ColumnNames() {
		header[i] = name
	}
	if err := setRow(f, sheet, 1, header, headerStyle); err != nil {
		return err
	}

	for r := 0; r < table.RowCount(); r++ {
		values := table.Row(r)
		row := make([]interface{}, len(values))
		for c, v := range values {
			row[c] = v.Interface()
		}
		if err := setRow(f, sheet, r+2, row, 0); err != nil {
			return err
		}
	}
	return nil
}

// writePivot lays the pivot out with one header row per column level
// (aggregator, value column, column keys). The index names head the leading
// label columns on the last header row.
func (w *ExportWriter) writePivot(f *excelize.File, result *pivot.Result, headerStyle int) error {
	if result.IsEmpty() {
		return nil
	}
	sheet := w.config.PivotSheet

	depth := len(result.ColumnFields)
	levels := 2 + depth
	indexWidth := len(result.Index)

	for level := 0; level < levels; level++ {
		row := make([]interface{}, indexWidth+len(result.Columns))
		if level == levels-1 {
			for i, name := range result.Index {
				row[i] = name
			}
		}
		for c, key := range result.Columns {
			row[indexWidth+c] = key.Levels(depth)[level]
		}
		if err := setRow(f, sheet, level+1, row, headerStyle); err != nil {
			return err
		}
	}

	for r, pr := range result.Rows {
		row := make([]interface{}, indexWidth+len(pr.Cells))
		for i, k := range pr.Keys {
			row[i] = k.Interface()
		}
		for c, cell := range pr.Cells {
			row[indexWidth+c] = cell
		}
		style := 0
		if pr.IsTotal {
			style = headerStyle
		}
		if err := setRow(f, sheet, levels+r+1, row, style); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowIdx int, values []interface{}, style int) error {
	if len(values) == 0 {
		return nil
	}
	start, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowIdx, sheet, err)
	}
	if style != 0 {
		end, err := excelize.CoordinatesToCellName(len(values), rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, start, end, style); err != nil {
			return fmt.Errorf("failed to style row %d of %s: %w", rowIdx, sheet, err)
		}
	}
	return nil
}
