package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"xlmongo/domain/core"
	"xlmongo/domain/datareadiness/profiling"
	"xlmongo/domain/pivot"
	"xlmongo/domain/tabular"
	"xlmongo/internal/errors"
	"xlmongo/internal/logging"
	"xlmongo/ports"
)

// ExportService reads a collection, validates every column against its
// detected type, cross-tabulates the result and writes both to a workbook
type ExportService struct {
	stores   ports.StoreFactory
	profiler ports.TableProfiler
	pivots   ports.PivotBuilder
	writer   ports.WorkbookWriter
	logger   *zap.Logger
}

// ExportRequest defines the inputs of one export run
type ExportRequest struct {
	Database   string
	Collection string
	Output     string
	Spec       pivot.Spec
}

// ExportReport summarises a finished export run
type ExportReport struct {
	RunID      core.RunID                `json:"run_id"`
	Database   string                    `json:"database"`
	Collection string                    `json:"collection"`
	Output     string                    `json:"output"`
	Sheets     []string                  `json:"sheets"`
	Rows       int                       `json:"rows"`
	Columns    int                       `json:"columns"`
	Profiles   []profiling.ColumnProfile `json:"profiles"`
	PivotRows  int                       `json:"pivot_rows"`
	// PivotWarning is set when the pivot could not be built and an empty
	// pivot sheet was written instead
	PivotWarning string         `json:"pivot_warning,omitempty"`
	StartedAt    core.Timestamp `json:"started_at"`
	Duration     time.Duration  `json:"duration"`
}

// NewExportService creates an export service
func NewExportService(stores ports.StoreFactory, profiler ports.TableProfiler, pivots ports.PivotBuilder, writer ports.WorkbookWriter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		stores:   stores,
		profiler: profiler,
		pivots:   pivots,
		writer:   writer,
		logger:   logger,
	}
}

// Export runs the export flow. A pivot column missing from the data is the
// only recovered failure: the validated sheet is still written next to an
// empty pivot sheet.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportReport, error) {
	spec, err := req.Spec.Normalize()
	if err == nil {
		err = spec.Validate()
	}
	if err != nil {
		return nil, errors.InvalidPivotSpec(err)
	}
	if req.Output == "" {
		return nil, errors.InvalidInput("export output path is required")
	}

	runID := core.NewRunID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx, s.logger)
	report := &ExportReport{
		RunID:      runID,
		Database:   req.Database,
		Collection: req.Collection,
		Output:     req.Output,
		StartedAt:  core.Now(),
	}

	// Step 1: Read every document into a table
	docs, err := s.stores.Collection(req.Database, req.Collection).FindDocuments(ctx)
	if err != nil {
		return nil, errors.WrapAs(err, errors.CodeDatabaseError, "failed to read documents")
	}
	table := tabular.NewTableFromDocuments(docs)
	report.Rows = table.RowCount()
	report.Columns = len(table.Columns)
	logger.Info("documents loaded",
		zap.String("database", req.Database),
		zap.String("collection", req.Collection),
		zap.Int("rows", report.Rows),
		zap.Int("columns", report.Columns),
	)

	// Step 2: Detect and coerce every column
	validated, profiles, err := s.profiler.ProfileTable(ctx, table)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate columns")
	}
	report.Profiles = profiles.Profiles

	// Step 3: Cross-tabulate, falling back to an empty pivot
	result, err := s.pivots.Build(validated, spec)
	switch {
	case err == nil:
		report.PivotRows = len(result.Rows)
	case core.IsMissingColumnError(err):
		logger.Warn("pivot skipped", zap.Error(err))
		report.PivotWarning = err.Error()
		result = pivot.EmptyResult()
	default:
		return nil, errors.Wrap(err, "failed to build pivot")
	}

	// Step 4: Write both sheets
	if err := s.writer.WriteExport(ctx, req.Output, validated, result); err != nil {
		return nil, errors.WrapAs(err, errors.CodeSpreadsheetError, "failed to write workbook")
	}
	report.Sheets = s.writer.SheetNames()
	report.Duration = report.StartedAt.Since()

	logger.Info("export written",
		zap.String("output", req.Output),
		zap.Strings("sheets", report.Sheets),
		zap.Int("pivot_rows", report.PivotRows),
		zap.Duration("elapsed", report.Duration),
	)
	return report, nil
}
