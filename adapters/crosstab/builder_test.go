package crosstab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlmongo/domain/core"
	"xlmongo/domain/pivot"
	"xlmongo/domain/tabular"
)

func column(name string, raw ...interface{}) tabular.Column {
	values := make([]tabular.Value, len(raw))
	for i, r := range raw {
		values[i] = tabular.FromRaw(r)
	}
	return tabular.Column{Name: name, Values: values}
}

func TestBuildSumByGroup(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("A", "x", "x", "y"),
		column("B", 1.0, 2.0, 3.0),
	}}

	result, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"A"},
		Values:      []string{"B"},
		Aggregators: []pivot.Aggregator{pivot.AggSum},
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, 2, result.GroupCount())

	x, ok := result.Lookup([]string{"x"}, pivot.AggSum, "B")
	require.True(t, ok)
	assert.Equal(t, 3.0, x)

	y, _ := result.Lookup([]string{"y"}, pivot.AggSum, "B")
	assert.Equal(t, 3.0, y)

	total, ok := result.Total()
	require.True(t, ok)
	assert.Equal(t, pivot.TotalLabel, total.Keys[0].Text())
	assert.Equal(t, []float64{6}, total.Cells)

	// total row comes last
	assert.True(t, result.Rows[len(result.Rows)-1].IsTotal)
}

func TestBuildMissingColumn(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("A", "x"),
		column("B", 1.0),
	}}

	tests := []struct {
		name    string
		spec    pivot.Spec
		missing string
	}{
		{
			name:    "missing index column",
			spec:    pivot.Spec{Index: []string{"Z"}, Values: []string{"Y"}, Aggregators: []pivot.Aggregator{pivot.AggSum}},
			missing: "Z",
		},
		{
			name:    "missing value column",
			spec:    pivot.Spec{Index: []string{"A"}, Values: []string{"Y"}, Aggregators: []pivot.Aggregator{pivot.AggCount}},
			missing: "Y",
		},
		{
			name:    "missing column key",
			spec:    pivot.Spec{Index: []string{"A"}, Values: []string{"B"}, Aggregators: []pivot.Aggregator{pivot.AggCount}, Columns: []string{"C"}},
			missing: "C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder("").Build(table, tt.spec)
			require.Error(t, err)
			assert.True(t, core.IsMissingColumnError(err))
			assert.Equal(t, "missing required column: "+tt.missing, err.Error())
		})
	}
}

func TestBuildRejectsInvalidSpec(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{column("A", "x"), column("B", 1.0)}}

	_, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"A"},
		Values:      []string{"B"},
		Aggregators: []pivot.Aggregator{"mode"},
	})
	require.Error(t, err)
	assert.True(t, core.IsPivotSpecError(err))
	assert.False(t, core.IsMissingColumnError(err))

	_, err = NewBuilder("").Build(table, pivot.Spec{Values: []string{"B"}, Aggregators: []pivot.Aggregator{pivot.AggSum}})
	assert.ErrorIs(t, err, core.ErrEmptyPivotSelector)
}

func TestBuildEmptyKeysBecomeMissingLabel(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("Metodo", "PUE", "", nil, "PPD"),
		column("Importe", 10.0, 5.0, 1.0, 2.0),
	}}

	result, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"Metodo"},
		Values:      []string{"Importe"},
		Aggregators: []pivot.Aggregator{pivot.AggCount, pivot.AggSum},
	})
	require.NoError(t, err)

	labels := []string{}
	for _, row := range result.Rows {
		labels = append(labels, row.Keys[0].Text())
	}
	assert.Equal(t, []string{"PPD", "PUE", "sin datos", pivot.TotalLabel}, labels)

	count, _ := result.Lookup([]string{"sin datos"}, pivot.AggCount, "Importe")
	assert.Equal(t, 2.0, count)
	sum, _ := result.Lookup([]string{"sin datos"}, pivot.AggSum, "Importe")
	assert.Equal(t, 6.0, sum)

	assert.Equal(t, "count_Importe", result.Columns[0].Label())
	assert.Equal(t, "sum_Importe", result.Columns[1].Label())
}

func TestBuildCustomMissingLabel(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("Metodo", ""),
		column("Importe", 1.0),
	}}

	result, err := NewBuilder("N/D").Build(table, pivot.Spec{
		Index:       []string{"Metodo"},
		Values:      []string{"Importe"},
		Aggregators: []pivot.Aggregator{pivot.AggSum},
	})
	require.NoError(t, err)
	assert.Equal(t, "N/D", result.Rows[0].Keys[0].Text())
}

func TestBuildCompositeKeySorting(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("Metodo", "PUE", "PPD", "PUE", "PUE"),
		column("Folio", 10.0, 2.0, 9.0, 10.0),
		column("Importe", 1.0, 2.0, 3.0, 4.0),
	}}

	result, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"Metodo", "Folio"},
		Values:      []string{"Importe"},
		Aggregators: []pivot.Aggregator{pivot.AggSum},
	})
	require.NoError(t, err)

	var got [][]string
	for _, row := range result.Rows {
		got = append(got, []string{row.Keys[0].Text(), row.Keys[1].Text()})
	}
	assert.Equal(t, [][]string{
		{"PPD", "2"},
		{"PUE", "9"},
		{"PUE", "10"},
		{pivot.TotalLabel, ""},
	}, got)

	sum, _ := result.Lookup([]string{"PUE", "10"}, pivot.AggSum, "Importe")
	assert.Equal(t, 5.0, sum)
}

func TestBuildAggregators(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("G", "a", "a", "a", "a", "b"),
		column("V", 4.0, 2.0, 4.0, 6.0, 7.0),
	}}

	tests := []struct {
		agg   pivot.Aggregator
		a     float64
		b     float64
		total float64
	}{
		{pivot.AggCount, 4, 1, 5},
		{pivot.AggSum, 16, 7, 23},
		{pivot.AggMean, 4, 7, 4.6},
		{pivot.AggMin, 2, 7, 2},
		{pivot.AggMax, 6, 7, 7},
		{pivot.AggMedian, 4, 7, 4},
		{pivot.AggVar, 8.0 / 3.0, 0, 3.8},
		{pivot.AggFirst, 4, 7, 4},
		{pivot.AggLast, 6, 7, 7},
		{pivot.AggNUnique, 3, 1, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.agg), func(t *testing.T) {
			result, err := NewBuilder("").Build(table, pivot.Spec{
				Index:       []string{"G"},
				Values:      []string{"V"},
				Aggregators: []pivot.Aggregator{tt.agg},
			})
			require.NoError(t, err)

			a, _ := result.Lookup([]string{"a"}, tt.agg, "V")
			b, _ := result.Lookup([]string{"b"}, tt.agg, "V")
			total, _ := result.Total()

			assert.InDelta(t, tt.a, a, 1e-9)
			assert.InDelta(t, tt.b, b, 1e-9)
			assert.InDelta(t, tt.total, total.Cells[0], 1e-9)
		})
	}
}

func TestBuildStdOfSingleValueIsZero(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("G", "a", "a", "b"),
		column("V", 1.0, 3.0, 5.0),
	}}

	result, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"G"},
		Values:      []string{"V"},
		Aggregators: []pivot.Aggregator{"std"},
	})
	require.NoError(t, err)

	a, _ := result.Lookup([]string{"a"}, pivot.AggStd, "V")
	b, _ := result.Lookup([]string{"b"}, pivot.AggStd, "V")
	assert.InDelta(t, 1.4142135623730951, a, 1e-9)
	assert.Equal(t, 0.0, b)
}

func TestBuildAliasesNormalized(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{column("G", "a", "a"), column("V", 1.0, 3.0)}}

	result, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"G"},
		Values:      []string{"V"},
		Aggregators: []pivot.Aggregator{"avg", "SIZE"},
	})
	require.NoError(t, err)

	require.Len(t, result.Columns, 2)
	assert.Equal(t, pivot.AggMean, result.Columns[0].Aggregator)
	assert.Equal(t, pivot.AggCount, result.Columns[1].Aggregator)
	assert.Equal(t, []float64{2, 2}, result.Rows[0].Cells)
}

func TestBuildTextValuesWithNumericAggregator(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("G", "a", "a"),
		column("Moneda", "MXN", "USD"),
	}}

	result, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"G"},
		Values:      []string{"Moneda"},
		Aggregators: []pivot.Aggregator{pivot.AggCount, pivot.AggSum, pivot.AggMean},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0, 0}, result.Rows[0].Cells)
}

func TestBuildWithColumnKeys(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		column("Metodo", "PUE", "PUE", "PPD"),
		column("Moneda", "MXN", "USD", "MXN"),
		column("Importe", 10.0, 20.0, 5.0),
	}}

	result, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"Metodo"},
		Values:      []string{"Importe"},
		Aggregators: []pivot.Aggregator{pivot.AggSum},
		Columns:     []string{"Moneda"},
	})
	require.NoError(t, err)

	labels := []string{}
	for _, c := range result.Columns {
		labels = append(labels, c.Label())
	}
	assert.Equal(t, []string{"sum_Importe_MXN", "sum_Importe_USD", "sum_Importe_Total General"}, labels)
	assert.Equal(t, []string{"Moneda"}, result.ColumnFields)

	require.Len(t, result.Rows, 3)
	// PPD has no USD rows: filled with 0
	assert.Equal(t, []float64{5, 0, 5}, result.Rows[0].Cells)
	assert.Equal(t, []float64{10, 20, 30}, result.Rows[1].Cells)
	assert.Equal(t, []float64{15, 20, 35}, result.Rows[2].Cells)
	assert.True(t, result.Rows[2].IsTotal)
}

func TestBuildEmptyTableWithColumns(t *testing.T) {
	table := tabular.Table{Columns: []tabular.Column{
		{Name: "A"},
		{Name: "B"},
	}}

	result, err := NewBuilder("").Build(table, pivot.Spec{
		Index:       []string{"A"},
		Values:      []string{"B"},
		Aggregators: []pivot.Aggregator{pivot.AggSum, pivot.AggCount},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.GroupCount())

	total, ok := result.Total()
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0}, total.Cells)
}
