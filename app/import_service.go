package app

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"xlmongo/domain/core"
	"xlmongo/internal/errors"
	"xlmongo/internal/logging"
	"xlmongo/ports"
)

// ImportService copies spreadsheet rows into a collection as documents,
// without transforming values
type ImportService struct {
	stores ports.StoreFactory
	reader ports.WorkbookReader
	logger *zap.Logger
}

// ImportRequest defines the inputs of one import run
type ImportRequest struct {
	Paths      []string
	Sheet      string // empty imports every sheet
	Database   string
	Collection string
}

// SheetReport describes what happened to one sheet
type SheetReport struct {
	File    string `json:"file"`
	Sheet   string `json:"sheet"`
	Rows    int    `json:"rows"`
	Skipped bool   `json:"skipped,omitempty"`
}

// ImportReport summarises a finished import run
type ImportReport struct {
	RunID      core.RunID     `json:"run_id"`
	Database   string         `json:"database"`
	Collection string         `json:"collection"`
	Sheets     []SheetReport  `json:"sheets"`
	Inserted   int            `json:"inserted"`
	StartedAt  core.Timestamp `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
}

// NewImportService creates an import service
func NewImportService(stores ports.StoreFactory, reader ports.WorkbookReader, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{stores: stores, reader: reader, logger: logger}
}

// Import reads each file in order and inserts every non-empty sheet with one
// batch insert. Sheets without data rows are skipped. The first failure
// aborts the run; sheets inserted before it stay inserted.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportReport, error) {
	if len(req.Paths) == 0 {
		return nil, errors.InvalidInput("at least one spreadsheet file is required")
	}

	runID := core.NewRunID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx, s.logger)
	store := s.stores.Collection(req.Database, req.Collection)

	report := &ImportReport{
		RunID:      runID,
		Database:   req.Database,
		Collection: req.Collection,
		StartedAt:  core.Now(),
	}

	for _, path := range req.Paths {
		sheets, err := s.reader.ReadSheets(ctx, path, req.Sheet)
		if err != nil {
			return report, errors.WrapAs(err, errors.CodeSpreadsheetError, "failed to read "+filepath.Base(path))
		}

		for _, sheet := range sheets {
			if len(sheet.Documents) == 0 {
				logger.Debug("sheet skipped", zap.String("file", path), zap.String("sheet", sheet.Name))
				report.Sheets = append(report.Sheets, SheetReport{File: path, Sheet: sheet.Name, Skipped: true})
				continue
			}

			inserted, err := store.InsertDocuments(ctx, sheet.Documents)
			if err != nil {
				return report, errors.WrapAs(err, errors.CodeDatabaseError, "failed to insert sheet "+sheet.Name)
			}
			report.Inserted += inserted
			report.Sheets = append(report.Sheets, SheetReport{File: path, Sheet: sheet.Name, Rows: inserted})

			logger.Info("sheet imported",
				zap.String("file", path),
				zap.String("sheet", sheet.Name),
				zap.Int("rows", inserted),
			)
		}
	}

	report.Duration = report.StartedAt.Since()
	logger.Info("import finished",
		zap.String("database", req.Database),
		zap.String("collection", req.Collection),
		zap.Int("inserted", report.Inserted),
		zap.Duration("elapsed", report.Duration),
	)
	return report, nil
}
