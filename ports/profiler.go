package ports

import (
	"context"

	"xlmongo/domain/datareadiness/profiling"
	"xlmongo/domain/tabular"
)

// TableProfiler detects every column's type and coerces the column into it
type TableProfiler interface {
	ProfileTable(ctx context.Context, table tabular.Table) (tabular.Table, profiling.ProfilingResult, error)
}
