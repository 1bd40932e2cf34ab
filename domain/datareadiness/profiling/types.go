package profiling

import (
	"fmt"
)

// FieldClass is the provisional class a single value parses as
type FieldClass string

const (
	ClassEmpty    FieldClass = "empty"
	ClassNumeric  FieldClass = "numeric"
	ClassTemporal FieldClass = "temporal"
	ClassTextual  FieldClass = "textual"
)

// ColumnType is the semantic type assigned once per column for a whole export
type ColumnType string

const (
	TypeNumeric  ColumnType = "numeric"
	TypeTemporal ColumnType = "temporal"
	TypeTextual  ColumnType = "textual"
)

// DetectionOrder is the order in which column types are checked against the
// majority threshold. The first type to reach it wins.
var DetectionOrder = []ColumnType{TypeNumeric, TypeTemporal, TypeTextual}

// ParseColumnType parses a column type label
func ParseColumnType(s string) (ColumnType, error) {
	switch ColumnType(s) {
	case TypeNumeric, TypeTemporal, TypeTextual:
		return ColumnType(s), nil
	}
	return "", fmt.Errorf("unknown column type %q", s)
}

// TypeTally counts how the values of a column classified. Empty values count
// toward Total but toward none of the three type counters.
type TypeTally struct {
	Total    int `json:"total"`
	Empty    int `json:"empty"`
	Numeric  int `json:"numeric"`
	Temporal int `json:"temporal"`
	Textual  int `json:"textual"`
}

// Add records one classified value
func (t *TypeTally) Add(class FieldClass) {
	t.Total++
	switch class {
	case ClassEmpty:
		t.Empty++
	case ClassNumeric:
		t.Numeric++
	case ClassTemporal:
		t.Temporal++
	case ClassTextual:
		t.Textual++
	}
}

// Count returns the tally for a column type
func (t TypeTally) Count(ct ColumnType) int {
	switch ct {
	case TypeNumeric:
		return t.Numeric
	case TypeTemporal:
		return t.Temporal
	case TypeTextual:
		return t.Textual
	}
	return 0
}

// Ratio returns Count(ct)/Total, or 0 for an empty column
func (t TypeTally) Ratio(ct ColumnType) float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Count(ct)) / float64(t.Total)
}

// ColumnProfile describes the detection and coercion outcome for one column
type ColumnProfile struct {
	Name  string     `json:"name"`
	Type  ColumnType `json:"type"`
	Tally TypeTally  `json:"tally"`
	// Filled counts values replaced by the type's fill policy
	// (0 for numeric, "" for temporal, the missing-text sentinel for textual).
	Filled int `json:"filled"`
}

// MissingRate is the share of values that were empty before coercion
func (p ColumnProfile) MissingRate() float64 {
	if p.Tally.Total == 0 {
		return 0
	}
	return float64(p.Tally.Empty) / float64(p.Tally.Total)
}

// ProfilingResult contains the outcome of profiling every column of a table
type ProfilingResult struct {
	Profiles   []ColumnProfile `json:"profiles"`
	DurationMs int64           `json:"duration_ms"`
}

// Profile returns the profile for the named column
func (r ProfilingResult) Profile(name string) (ColumnProfile, bool) {
	for _, p := range r.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ColumnProfile{}, false
}
