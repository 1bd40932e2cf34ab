package pivot

import (
	"fmt"
	"strings"

	"xlmongo/domain/core"
	"xlmongo/domain/tabular"
)

// TotalLabel names the synthetic grand-total row and column
const TotalLabel = "Total General"

// Aggregator names a function applied to the cells of one group
type Aggregator string

const (
	AggCount   Aggregator = "count"
	AggSum     Aggregator = "sum"
	AggMean    Aggregator = "mean"
	AggMin     Aggregator = "min"
	AggMax     Aggregator = "max"
	AggMedian  Aggregator = "median"
	AggStd     Aggregator = "std"
	AggVar     Aggregator = "var"
	AggFirst   Aggregator = "first"
	AggLast    Aggregator = "last"
	AggNUnique Aggregator = "nunique"
)

// Aggregators lists every supported aggregator
var Aggregators = []Aggregator{
	AggCount, AggSum, AggMean, AggMin, AggMax, AggMedian, AggStd, AggVar, AggFirst, AggLast, AggNUnique,
}

var aggregatorAliases = map[string]Aggregator{
	"avg":     AggMean,
	"average": AggMean,
	"len":     AggCount,
	"size":    AggCount,
}

// ParseAggregator parses an aggregator name, case-insensitively
func ParseAggregator(s string) (Aggregator, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := aggregatorAliases[name]; ok {
		return alias, nil
	}
	for _, agg := range Aggregators {
		if string(agg) == name {
			return agg, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownAggregator, s)
}

// ParseAggregators parses a list of aggregator names
func ParseAggregators(names []string) ([]Aggregator, error) {
	aggs := make([]Aggregator, 0, len(names))
	for _, n := range names {
		agg, err := ParseAggregator(n)
		if err != nil {
			return nil, err
		}
		aggs = append(aggs, agg)
	}
	return aggs, nil
}

// Spec configures a cross-tabulation
type Spec struct {
	Index       []string     `json:"index" yaml:"index"`
	Values      []string     `json:"values" yaml:"values"`
	Aggregators []Aggregator `json:"aggregators" yaml:"aggregators"`
	// Columns optionally spreads groups across column keys, adding a
	// grand-total column next to the grand-total row.
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// Validate checks that the spec names at least one index, value and
// aggregator, and that every aggregator is known
func (s Spec) Validate() error {
	if len(s.Index) == 0 {
		return fmt.Errorf("%w: index", core.ErrEmptyPivotSelector)
	}
	if len(s.Values) == 0 {
		return fmt.Errorf("%w: values", core.ErrEmptyPivotSelector)
	}
	if len(s.Aggregators) == 0 {
		return fmt.Errorf("%w: aggregators", core.ErrEmptyPivotSelector)
	}
	for _, agg := range s.Aggregators {
		if _, err := ParseAggregator(string(agg)); err != nil {
			return err
		}
	}
	return nil
}

// Normalize resolves aggregator aliases to their canonical names
func (s Spec) Normalize() (Spec, error) {
	names := make([]string, len(s.Aggregators))
	for i, a := range s.Aggregators {
		names[i] = string(a)
	}
	aggs, err := ParseAggregators(names)
	if err != nil {
		return s, err
	}
	s.Aggregators = aggs
	return s, nil
}

// RequiredColumns lists the columns the table must contain: index columns
// first, then value columns, then column keys
func (s Spec) RequiredColumns() []string {
	cols := make([]string, 0, len(s.Index)+len(s.Values)+len(s.Columns))
	cols = append(cols, s.Index...)
	cols = append(cols, s.Values...)
	cols = append(cols, s.Columns...)
	return cols
}

// ColumnKey identifies one result column
type ColumnKey struct {
	Aggregator Aggregator `json:"aggregator"`
	Value      string     `json:"value"`
	// Keys holds the column-key combination; nil when the spec has no Columns.
	Keys    []tabular.Value `json:"-"`
	IsTotal bool            `json:"is_total,omitempty"`
}

// Levels renders the header levels of the column: aggregator, value column,
// then one level per column key
func (k ColumnKey) Levels(depth int) []string {
	levels := []string{string(k.Aggregator), k.Value}
	for i := 0; i < depth; i++ {
		switch {
		case k.IsTotal && i == 0:
			levels = append(levels, TotalLabel)
		case k.IsTotal:
			levels = append(levels, "")
		case i < len(k.Keys):
			levels = append(levels, k.Keys[i].Text())
		default:
			levels = append(levels, "")
		}
	}
	return levels
}

// Label flattens the header levels into one string
func (k ColumnKey) Label() string {
	parts := []string{}
	for _, l := range k.Levels(len(k.Keys)) {
		if l != "" {
			parts = append(parts, l)
		}
	}
	if k.IsTotal && len(k.Keys) == 0 {
		parts = append(parts, TotalLabel)
	}
	return strings.Join(parts, "_")
}

// Row is one result row: the composite index key and one cell per column
type Row struct {
	Keys    []tabular.Value `json:"keys"`
	Cells   []float64       `json:"cells"`
	IsTotal bool            `json:"is_total,omitempty"`
}

// Result is a cross-tabulation with a trailing grand-total row
type Result struct {
	Index        []string    `json:"index"`
	ColumnFields []string    `json:"column_fields,omitempty"`
	Columns      []ColumnKey `json:"columns"`
	Rows         []Row       `json:"rows"`
}

// EmptyResult is what an export writes when the pivot cannot be built
func EmptyResult() *Result {
	return &Result{}
}

// IsEmpty reports whether the result has no rows
func (r *Result) IsEmpty() bool {
	return r == nil || len(r.Rows) == 0
}

// GroupCount returns the number of rows excluding the grand total
func (r *Result) GroupCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, row := range r.Rows {
		if !row.IsTotal {
			n++
		}
	}
	return n
}

// Total returns the grand-total row
func (r *Result) Total() (Row, bool) {
	if r == nil {
		return Row{}, false
	}
	for _, row := range r.Rows {
		if row.IsTotal {
			return row, true
		}
	}
	return Row{}, false
}

// Lookup finds the cell for the row whose rendered keys equal keys and the
// column with the given aggregator and value column (first match)
func (r *Result) Lookup(keys []string, agg Aggregator, value string) (float64, bool) {
	col := -1
	for i, c := range r.Columns {
		if c.Aggregator == agg && c.Value == value {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, row := range r.Rows {
		if len(row.Keys) != len(keys) {
			continue
		}
		match := true
		for i, k := range row.Keys {
			if k.Text() != keys[i] {
				match = false
				break
			}
		}
		if match {
			return row.Cells[col], true
		}
	}
	return 0, false
}
