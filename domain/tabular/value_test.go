package tabular

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromRaw(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  interface{}
		kind Kind
	}{
		{"nil is empty", nil, KindEmpty},
		{"empty string is empty", "", KindEmpty},
		{"NaN is empty", math.NaN(), KindEmpty},
		{"zero time is empty", time.Time{}, KindEmpty},
		{"blank-looking text stays text", " ", KindText},
		{"int64 is number", int64(42), KindNumber},
		{"int32 is number", int32(7), KindNumber},
		{"float is number", 3.5, KindNumber},
		{"bool is number", true, KindNumber},
		{"time is timestamp", ts, KindTimestamp},
		{"string is text", "MXN", KindText},
		{"numeric string stays text until classified", "12.5", KindText},
		{"slice renders as text", []int{1, 2}, KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, FromRaw(tt.raw).Kind)
		})
	}

	assert.Equal(t, 1.0, FromRaw(true).Num)
	assert.Equal(t, 0.0, FromRaw(false).Num)
}

func TestValueText(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "12", NewNumericValue(12).Text())
	assert.Equal(t, "12.25", NewNumericValue(12.25).Text())
	assert.Equal(t, "-0.5", NewNumericValue(-0.5).Text())
	assert.Equal(t, "2024-03-01 10:30:00", NewTimestampValue(ts).Text())
	assert.Equal(t, "abc", NewStringValue("abc").Text())
	assert.Equal(t, "", NewMissingValue().Text())
	assert.Equal(t, "<missing>", NewMissingValue().String())
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		n    float64
		want string
	}{
		{"integral float has no fraction", 100.0, "100"},
		{"large values stay in fixed notation", 1e20, "100000000000000000000"},
		{"fraction", 0.125, "0.125"},
		{"negative", -2.5, "-2.5"},
		{"not a number", math.NaN(), "nan"},
		{"negative infinity", math.Inf(-1), "-inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.n))
		})
	}
}

func TestCompare(t *testing.T) {
	early := NewTimestampValue(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	late := NewTimestampValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Negative(t, Compare(NewNumericValue(2), NewNumericValue(10)))
	assert.Positive(t, Compare(late, early))
	assert.Negative(t, Compare(NewStringValue("EUR"), NewStringValue("MXN")))
	assert.Zero(t, Compare(NewStringValue("MXN"), NewStringValue("MXN")))
	assert.Negative(t, Compare(NewNumericValue(99), NewStringValue("1")))
	assert.Negative(t, Compare(NewMissingValue(), NewNumericValue(0)))
}
