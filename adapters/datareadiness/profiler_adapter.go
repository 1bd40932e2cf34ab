package datareadiness

import (
	"context"
	"time"

	"go.uber.org/zap"

	"xlmongo/adapters/datareadiness/coercer"
	"xlmongo/domain/datareadiness/profiling"
	"xlmongo/domain/tabular"
	"xlmongo/internal/logging"
)

// ProfilerAdapter implements ports.TableProfiler: it detects each column's
// type and coerces the column into it
type ProfilerAdapter struct {
	coercer *coercer.TypeCoercer
	logger  *zap.Logger
}

// NewProfilerAdapter creates a new profiler adapter. A nil coercer uses the
// default coercion config.
func NewProfilerAdapter(typeCoercer *coercer.TypeCoercer, logger *zap.Logger) *ProfilerAdapter {
	if typeCoercer == nil {
		typeCoercer = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfilerAdapter{coercer: typeCoercer, logger: logger}
}

// ProfileTable returns a validated copy of table in which every column holds
// only values of its detected type, plus one profile per column. Each column
// is detected exactly once; the input table is not modified.
func (p *ProfilerAdapter) ProfileTable(ctx context.Context, table tabular.Table) (tabular.Table, profiling.ProfilingResult, error) {
	start := time.Now()
	logger := logging.FromContext(ctx, p.logger)

	validated := tabular.Table{Columns: make([]tabular.Column, 0, len(table.Columns))}
	profiles := make([]profiling.ColumnProfile, 0, len(table.Columns))

	for _, col := range table.Columns {
		if err := ctx.Err(); err != nil {
			return tabular.Table{}, profiling.ProfilingResult{}, err
		}

		columnType, tally := p.coercer.DetectColumnType(col.Values)
		coerced, filled := p.coercer.CoerceColumn(col, columnType)

		logger.Info("column type detected",
			zap.String("column", col.Name),
			zap.String("type", string(columnType)),
			zap.Int("numeric", tally.Numeric),
			zap.Int("temporal", tally.Temporal),
			zap.Int("textual", tally.Textual),
			zap.Int("empty", tally.Empty),
			zap.Int("filled", filled),
		)

		validated.Columns = append(validated.Columns, coerced)
		profiles = append(profiles, profiling.ColumnProfile{
			Name:   col.Name,
			Type:   columnType,
			Tally:  tally,
			Filled: filled,
		})
	}

	return validated, profiling.ProfilingResult{
		Profiles:   profiles,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
