package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"xlmongo/domain/core"
	"xlmongo/domain/tabular"
	"xlmongo/internal/logging"
)

// DataReader handles reading Excel and CSV files into sheets of documents.
// Cells keep their native types; blank cells are read as "".
type DataReader struct {
	logger *zap.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(logger *zap.Logger) *DataReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataReader{logger: logger}
}

// ReadSheets reads the named sheet, or every sheet when sheet is "". A CSV
// file is a single sheet named after the file.
func (r *DataReader) ReadSheets(ctx context.Context, path, sheet string) ([]tabular.Sheet, error) {
	logger := logging.FromContext(ctx, r.logger)

	fileType, err := DetectFileType(path)
	if err != nil {
		return nil, err
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(string(fileType)), path)
	}

	logger.Debug("reading workbook", zap.String("path", path), zap.String("type", string(fileType)))

	switch fileType {
	case FileTypeCSV:
		return r.readCSV(path, sheet)
	default:
		return r.readExcel(ctx, logger, path, sheet)
	}
}

// readExcel reads one or all sheets of an xlsx workbook
func (r *DataReader) readExcel(ctx context.Context, logger *zap.Logger, path, sheet string) ([]tabular.Sheet, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if sheet != "" {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
			return nil, core.NewSheetNotFoundError(sheet, path)
		}
		names = []string{sheet}
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	cells := &cellDecoder{file: f, date1904: date1904, dateStyles: make(map[int]bool)}
	sheets := make([]tabular.Sheet, 0, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		s, err := buildSheet(name, rows, func(row, col int, raw string) (interface{}, error) {
			return cells.decode(name, row, col, raw)
		})
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, s)

		logger.Debug("sheet read",
			zap.String("sheet", name),
			zap.Int("columns", len(s.Headers)),
			zap.Int("rows", len(s.Documents)),
		)
	}

	logger.Debug("workbook read", zap.String("path", path), zap.Duration("elapsed", time.Since(startTime)))
	return sheets, nil
}

// readCSV reads a CSV file as a single sheet of text cells
func (r *DataReader) readCSV(path, sheet string) ([]tabular.Sheet, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if sheet != "" && sheet != name {
		return nil, core.NewSheetNotFoundError(sheet, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	s, err := buildSheet(name, rows, func(_, _ int, raw string) (interface{}, error) {
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return []tabular.Sheet{s}, nil
}

// buildSheet turns raw rows into documents keyed by the normalised header
// row. Rows with no content at all are skipped.
func buildSheet(name string, rows [][]string, decode func(row, col int, raw string) (interface{}, error)) (tabular.Sheet, error) {
	s := tabular.Sheet{Name: name}
	if len(rows) == 0 {
		return s, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	s.Headers = headerNames(rows[0], width)

	for r := 1; r < len(rows); r++ {
		row := rows[r]
		if isBlankRow(row) {
			continue
		}

		doc := make(tabular.Document, width)
		for c := 0; c < width; c++ {
			var value interface{} = ""
			if c < len(row) && row[c] != "" {
				v, err := decode(r, c, row[c])
				if err != nil {
					return s, err
				}
				value = v
			}
			doc[c] = tabular.Field{Key: s.Headers[c], Value: value}
		}
		s.Documents = append(s.Documents, doc)
	}

	return s, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cellDecoder recovers native cell values from raw xlsx cell text
type cellDecoder struct {
	file       *excelize.File
	date1904   bool
	dateStyles map[int]bool
}

// decode returns int64 for integral numbers, float64 otherwise, bool for
// boolean cells, time.Time for date-formatted numbers and string for the rest
func (d *cellDecoder) decode(sheet string, row, col int, raw string) (interface{}, error) {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return nil, err
	}

	cellType, err := d.file.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to read cell %s!%s: %w", sheet, cell, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return raw, nil
	case excelize.CellTypeDate:
		if t, err := time.Parse("2006-01-02T15:04:05.999999999", strings.TrimSuffix(raw, "Z")); err == nil {
			return t, nil
		}
		return raw, nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// formula cells with text results
		return raw, nil
	}

	if d.isDateCell(sheet, cell) {
		if t, err := excelize.ExcelDateToTime(n, d.date1904); err == nil {
			return t, nil
		}
	}

	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return int64(n), nil
	}
	return n, nil
}

func (d *cellDecoder) isDateCell(sheet, cell string) bool {
	styleID, err := d.file.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := d.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := d.file.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	d.dateStyles[styleID] = isDate
	return isDate
}

// isDateNumFmt reports whether a number format renders dates or times.
// Built-in ids 14-22 and 45-47 are the date/time formats.
func isDateNumFmt(id int, custom *string) bool {
	if (id >= 14 && id <= 22) || (id >= 45 && id <= 47) {
		return true
	}
	if custom == nil {
		return false
	}

	// drop quoted literals, escapes and [colour]/[locale] sections
	var sb strings.Builder
	inQuote, inBracket := false, false
	runes := []rune(*custom)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '\\':
			i++
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		default:
			sb.WriteRune(ch)
		}
	}

	format := strings.ToLower(sb.String())
	if format == "general" {
		return false
	}
	return strings.ContainsAny(format, "ydhs") || (strings.Contains(format, "m") && !strings.ContainsAny(format, "0#"))
}
