package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"xlmongo/domain/datareadiness/profiling"
	"xlmongo/domain/tabular"
)

// TypeCoercer classifies raw values, detects each column's dominant type
// and rewrites columns into that type's canonical representation
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the detection threshold and fill policy
type CoercionConfig struct {
	MajorityThreshold float64  `json:"majority_threshold"` // share of a column a type needs to win
	MissingText       string   `json:"missing_text"`       // what empty textual cells become
	MissingMarkers    []string `json:"missing_markers"`    // renderings of missing values treated as empty text
	TimestampLayouts  []string `json:"timestamp_layouts"`  // calendar formats tried in order
}

// DefaultTimestampLayouts are the calendar formats recognised in text cells
var DefaultTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2 15:04:05",
	"2006/1/2",
	"2006-01",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2/1/2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.ANSIC,
}

// DefaultCoercionConfig returns the export defaults: a 70% majority and
// "sin datos" for empty text
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		MajorityThreshold: 0.7,
		MissingText:       "sin datos",
		MissingMarkers:    []string{"nan", "NaT", "None"},
		TimestampLayouts:  DefaultTimestampLayouts,
	}
}

// NewTypeCoercer creates a coercer with the given config. Zero fields fall
// back to the defaults.
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	defaults := DefaultCoercionConfig()
	if config.MajorityThreshold <= 0 || config.MajorityThreshold > 1 {
		config.MajorityThreshold = defaults.MajorityThreshold
	}
	if config.MissingText == "" {
		config.MissingText = defaults.MissingText
	}
	if config.MissingMarkers == nil {
		config.MissingMarkers = defaults.MissingMarkers
	}
	if len(config.TimestampLayouts) == 0 {
		config.TimestampLayouts = defaults.TimestampLayouts
	}
	return &TypeCoercer{config: config}
}

// Config returns the effective configuration
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

// Classify decides what a single value parses as. Numeric is tried before
// temporal so numeric strings are never read as dates.
func (c *TypeCoercer) Classify(v tabular.Value) profiling.FieldClass {
	switch v.Kind {
	case tabular.KindEmpty:
		return profiling.ClassEmpty
	case tabular.KindNumber:
		return profiling.ClassNumeric
	case tabular.KindTimestamp:
		return profiling.ClassTemporal
	}

	if v.Str == "" {
		return profiling.ClassEmpty
	}
	if _, ok := c.tryParseNumeric(v.Str); ok {
		return profiling.ClassNumeric
	}
	if _, ok := c.tryParseTimestamp(v.Str); ok {
		return profiling.ClassTemporal
	}
	return profiling.ClassTextual
}

// DetectColumnType tallies the classes of every value and returns the first
// type, in DetectionOrder, whose share of the column reaches the threshold.
// Empty values stay in the denominator, so sparse columns fall back to textual.
func (c *TypeCoercer) DetectColumnType(values []tabular.Value) (profiling.ColumnType, profiling.TypeTally) {
	var tally profiling.TypeTally
	for _, v := range values {
		tally.Add(c.Classify(v))
	}

	if tally.Total == 0 {
		return profiling.TypeTextual, tally
	}

	for _, ct := range profiling.DetectionOrder {
		if tally.Ratio(ct) >= c.config.MajorityThreshold {
			return ct, tally
		}
	}

	return profiling.TypeTextual, tally
}

// CoerceColumn rewrites every value into the canonical representation of ct.
// It returns the new column and how many values the fill policy replaced.
func (c *TypeCoercer) CoerceColumn(col tabular.Column, ct profiling.ColumnType) (tabular.Column, int) {
	out := tabular.Column{Name: col.Name, Values: make([]tabular.Value, len(col.Values))}
	filled := 0

	for i, v := range col.Values {
		var ok bool
		switch ct {
		case profiling.TypeNumeric:
			out.Values[i], ok = c.coerceNumeric(v)
		case profiling.TypeTemporal:
			out.Values[i], ok = c.coerceTimestamp(v)
		default:
			out.Values[i], ok = c.coerceText(v)
		}
		if !ok {
			filled++
		}
	}

	return out, filled
}

// coerceNumeric fills anything that is not a finite number with 0. NaN and
// the infinities count as numeric during detection but are filled here.
func (c *TypeCoercer) coerceNumeric(v tabular.Value) (tabular.Value, bool) {
	switch v.Kind {
	case tabular.KindNumber:
		if isFinite(v.Num) {
			return v, true
		}
	case tabular.KindText:
		if n, ok := c.tryParseNumeric(v.Str); ok && isFinite(n) {
			return tabular.NewNumericValue(n), true
		}
	}
	return tabular.NewNumericValue(0), false
}

func isFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// coerceTimestamp fills anything that is not a calendar timestamp with ""
func (c *TypeCoercer) coerceTimestamp(v tabular.Value) (tabular.Value, bool) {
	switch v.Kind {
	case tabular.KindTimestamp:
		return v, true
	case tabular.KindText:
		if t, ok := c.tryParseTimestamp(v.Str); ok {
			return tabular.NewTimestampValue(t), true
		}
	}
	return tabular.NewStringValue(""), false
}

// coerceText renders the value, collapses missing-value renderings to "" and
// then "" to the missing-text sentinel. The order of the two steps matters.
func (c *TypeCoercer) coerceText(v tabular.Value) (tabular.Value, bool) {
	s := v.Text()
	for _, marker := range c.config.MissingMarkers {
		if s == marker {
			s = ""
			break
		}
	}
	if s == "" {
		return tabular.NewStringValue(c.config.MissingText), false
	}
	return tabular.NewStringValue(s), true
}

// tryParseNumeric accepts what a standard decimal float parser accepts:
// integers, decimals, signs, exponents and the nan/inf spellings
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// hexadecimal floats are valid Go syntax but not decimal numbers
	unsigned := strings.TrimLeft(cleanVal, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return 0, false
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// tryParseTimestamp attempts every configured layout in order
func (c *TypeCoercer) tryParseTimestamp(strVal string) (time.Time, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return time.Time{}, false
	}

	for _, layout := range c.config.TimestampLayouts {
		if t, err := time.Parse(layout, cleanVal); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
