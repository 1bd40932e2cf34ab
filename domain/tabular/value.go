package tabular

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the storage tag a value receives when it enters the system.
// It is provisional: column-level type detection may coerce it later.
type Kind string

const (
	KindEmpty     Kind = "empty"
	KindNumber    Kind = "number"
	KindTimestamp Kind = "timestamp"
	KindText      Kind = "text"
)

// TimestampLayout is how timestamps render when a column ends up textual
const TimestampLayout = "2006-01-02 15:04:05"

// Value represents one spreadsheet cell or document field as a tagged variant
type Value struct {
	Kind Kind
	Num  float64
	Time time.Time
	Str  string
}

// NewNumericValue creates a number value
func NewNumericValue(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Kind: KindTimestamp, Time: t}
}

// NewStringValue creates a text value. The empty string is kept as text;
// use FromRaw when the empty-means-missing rule should apply.
func NewStringValue(s string) Value {
	return Value{Kind: KindText, Str: s}
}

// NewMissingValue creates an empty value
func NewMissingValue() Value {
	return Value{Kind: KindEmpty}
}

// FromRaw tags a loosely typed field value. This is the single place where
// "is this missing" is decided: nil, NaN and "" all become KindEmpty.
func FromRaw(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return NewMissingValue()
	case Value:
		return v
	case string:
		if v == "" {
			return NewMissingValue()
		}
		return NewStringValue(v)
	case float64:
		if math.IsNaN(v) {
			return NewMissingValue()
		}
		return NewNumericValue(v)
	case float32:
		if math.IsNaN(float64(v)) {
			return NewMissingValue()
		}
		return NewNumericValue(float64(v))
	case int:
		return NewNumericValue(float64(v))
	case int8:
		return NewNumericValue(float64(v))
	case int16:
		return NewNumericValue(float64(v))
	case int32:
		return NewNumericValue(float64(v))
	case int64:
		return NewNumericValue(float64(v))
	case uint:
		return NewNumericValue(float64(v))
	case uint8:
		return NewNumericValue(float64(v))
	case uint16:
		return NewNumericValue(float64(v))
	case uint32:
		return NewNumericValue(float64(v))
	case uint64:
		return NewNumericValue(float64(v))
	case bool:
		if v {
			return NewNumericValue(1)
		}
		return NewNumericValue(0)
	case time.Time:
		if v.IsZero() {
			return NewMissingValue()
		}
		return NewTimestampValue(v)
	case *time.Time:
		if v == nil {
			return NewMissingValue()
		}
		return FromRaw(*v)
	case fmt.Stringer:
		return FromRaw(v.String())
	default:
		return FromRaw(fmt.Sprintf("%v", v))
	}
}

// IsEmpty returns true for missing values
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// IsNumeric returns true if the value holds a number
func (v Value) IsNumeric() bool {
	return v.Kind == KindNumber
}

// IsTimestamp returns true if the value holds a timestamp
func (v Value) IsTimestamp() bool {
	return v.Kind == KindTimestamp
}

// IsString returns true if the value holds text, including the empty string
func (v Value) IsString() bool {
	return v.Kind == KindText
}

// AsFloat64 returns the numeric value as float64, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	if v.Kind == KindNumber {
		return v.Num
	}
	return 0.0
}

// Text renders the value the way it appears in a textual column
func (v Value) Text() string {
	switch v.Kind {
	case KindNumber:
		return FormatNumber(v.Num)
	case KindTimestamp:
		return v.Time.Format(TimestampLayout)
	case KindText:
		return v.Str
	}
	return ""
}

// String returns a debugging representation of the value
func (v Value) String() string {
	if v.Kind == KindEmpty {
		return "<missing>"
	}
	return v.Text()
}

// Interface returns the Go value a spreadsheet writer should store
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindTimestamp:
		return v.Time
	case KindText:
		return v.Str
	}
	return nil
}

// FormatNumber renders a float in its shortest exact decimal form
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Compare orders two values: numbers numerically, timestamps chronologically,
// text lexicographically. Mixed kinds order Empty < Number < Timestamp < Text.
func Compare(a, b Value) int {
	if a.Kind != b.Kind {
		return kindRank(a.Kind) - kindRank(b.Kind)
	}
	switch a.Kind {
	case KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	case KindTimestamp:
		return a.Time.Compare(b.Time)
	case KindText:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		}
	}
	return 0
}

func kindRank(k Kind) int {
	switch k {
	case KindEmpty:
		return 0
	case KindNumber:
		return 1
	case KindTimestamp:
		return 2
	}
	return 3
}
