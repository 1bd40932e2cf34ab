// Package crosstab computes grouped cross-tabulations over a validated table.
package crosstab

import (
	"sort"
	"strings"

	"xlmongo/domain/core"
	"xlmongo/domain/pivot"
	"xlmongo/domain/tabular"
)

// DefaultMissingLabel replaces empty grouping keys
const DefaultMissingLabel = "sin datos"

// Builder implements ports.PivotBuilder
type Builder struct {
	missingLabel string
}

// NewBuilder creates a builder that labels empty grouping keys with
// missingLabel ("" selects the default)
func NewBuilder(missingLabel string) *Builder {
	if missingLabel == "" {
		missingLabel = DefaultMissingLabel
	}
	return &Builder{missingLabel: missingLabel}
}

// group is one distinct key combination and the rows carrying it
type group struct {
	keys []tabular.Value
	rows []int
}

// Build groups the table by spec.Index and computes every aggregator over
// every value column, followed by a "Total General" row aggregated over all
// rows. When spec.Columns is set, each (aggregator, value) pair is spread over
// the observed column-key combinations plus a "Total General" column.
//
// A column named by the spec but absent from the table yields an error that
// wraps core.ErrMissingColumn and names the first such column.
func (b *Builder) Build(table tabular.Table, spec pivot.Spec) (*pivot.Result, error) {
	spec, err := spec.Normalize()
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	for _, name := range spec.RequiredColumns() {
		if table.ColumnIndex(name) < 0 {
			return nil, core.NewMissingColumnError(name)
		}
	}

	rowCount := table.RowCount()
	indexKeys := b.keyColumns(table, spec.Index)
	rowGroups := groupRows(indexKeys, rowCount)

	var colGroups []*group
	if len(spec.Columns) > 0 {
		colGroups = groupRows(b.keyColumns(table, spec.Columns), rowCount)
	}

	valueCols := make([][]tabular.Value, len(spec.Values))
	for i, name := range spec.Values {
		col, _ := table.Column(name)
		valueCols[i] = col.Values
	}

	result := &pivot.Result{
		Index:        append([]string(nil), spec.Index...),
		ColumnFields: append([]string(nil), spec.Columns...),
		Columns:      columnKeys(spec, colGroups),
	}

	// membership of each row in a column group, by column-group position
	rowColGroup := make([]int, rowCount)
	for ci, cg := range colGroups {
		for _, r := range cg.rows {
			rowColGroup[r] = ci
		}
	}

	allRows := make([]int, rowCount)
	for i := range allRows {
		allRows[i] = i
	}

	for _, g := range rowGroups {
		result.Rows = append(result.Rows, pivot.Row{
			Keys:  g.keys,
			Cells: computeCells(spec, valueCols, g.rows, colGroups, rowColGroup),
		})
	}

	totalKeys := make([]tabular.Value, len(spec.Index))
	totalKeys[0] = tabular.NewStringValue(pivot.TotalLabel)
	for i := 1; i < len(totalKeys); i++ {
		totalKeys[i] = tabular.NewStringValue("")
	}
	result.Rows = append(result.Rows, pivot.Row{
		Keys:    totalKeys,
		Cells:   computeCells(spec, valueCols, allRows, colGroups, rowColGroup),
		IsTotal: true,
	})

	return result, nil
}

// keyColumns extracts the grouping columns, replacing cells that render as
// "" with the missing label
func (b *Builder) keyColumns(table tabular.Table, names []string) [][]tabular.Value {
	cols := make([][]tabular.Value, len(names))
	for i, name := range names {
		col, _ := table.Column(name)
		values := make([]tabular.Value, len(col.Values))
		for r, v := range col.Values {
			if v.Text() == "" {
				v = tabular.NewStringValue(b.missingLabel)
			}
			values[r] = v
		}
		cols[i] = values
	}
	return cols
}

// groupRows partitions row numbers by their composite key and returns the
// groups sorted ascending, key column by key column
func groupRows(keyCols [][]tabular.Value, rowCount int) []*group {
	byKey := make(map[string]*group)
	var groups []*group

	for r := 0; r < rowCount; r++ {
		keys := make([]tabular.Value, len(keyCols))
		var sb strings.Builder
		for i, col := range keyCols {
			keys[i] = col[r]
			sb.WriteString(string(col[r].Kind))
			sb.WriteByte(0)
			sb.WriteString(col[r].Text())
			sb.WriteByte(0x1f)
		}
		id := sb.String()

		g, ok := byKey[id]
		if !ok {
			g = &group{keys: keys}
			byKey[id] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return compareKeys(groups[i].keys, groups[j].keys) < 0
	})
	return groups
}

func compareKeys(a, b []tabular.Value) int {
	for i := range a {
		if c := tabular.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// columnKeys lays out result columns: aggregator, then value column, then
// each column-key combination followed by the total column
func columnKeys(spec pivot.Spec, colGroups []*group) []pivot.ColumnKey {
	var keys []pivot.ColumnKey
	for _, agg := range spec.Aggregators {
		for _, value := range spec.Values {
			if len(spec.Columns) == 0 {
				keys = append(keys, pivot.ColumnKey{Aggregator: agg, Value: value})
				continue
			}
			for _, cg := range colGroups {
				keys = append(keys, pivot.ColumnKey{Aggregator: agg, Value: value, Keys: cg.keys})
			}
			keys = append(keys, pivot.ColumnKey{Aggregator: agg, Value: value, IsTotal: true})
		}
	}
	return keys
}

// computeCells evaluates one result row in the same order columnKeys lays
// the columns out
func computeCells(spec pivot.Spec, valueCols [][]tabular.Value, rows []int, colGroups []*group, rowColGroup []int) []float64 {
	var cells []float64
	for _, agg := range spec.Aggregators {
		for vi := range spec.Values {
			values := valueCols[vi]
			if len(colGroups) == 0 {
				cells = append(cells, aggregate(agg, pick(values, rows)))
				continue
			}

			split := make([][]tabular.Value, len(colGroups))
			for _, r := range rows {
				ci := rowColGroup[r]
				split[ci] = append(split[ci], values[r])
			}
			for ci := range colGroups {
				// no contributing rows aggregates to 0 as well
				cells = append(cells, aggregate(agg, split[ci]))
			}
			cells = append(cells, aggregate(agg, pick(values, rows)))
		}
	}
	return cells
}

func pick(values []tabular.Value, rows []int) []tabular.Value {
	out := make([]tabular.Value, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}
