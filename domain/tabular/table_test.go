package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableFromDocuments(t *testing.T) {
	docs := []Document{
		{{Key: "Folio", Value: int64(1)}, {Key: "Moneda", Value: "MXN"}},
		{{Key: "Folio", Value: int64(2)}, {Key: "Total", Value: 10.5}},
		{{Key: "Moneda", Value: ""}, {Key: "Folio", Value: int64(3)}},
	}

	table := NewTableFromDocuments(docs)

	require.Equal(t, []string{"Folio", "Moneda", "Total"}, table.ColumnNames())
	require.Equal(t, 3, table.RowCount())
	for _, col := range table.Columns {
		assert.Equal(t, 3, col.Len(), "column %s", col.Name)
	}

	moneda, ok := table.Column("Moneda")
	require.True(t, ok)
	assert.Equal(t, KindText, moneda.Values[0].Kind)
	assert.Equal(t, KindEmpty, moneda.Values[1].Kind, "missing key becomes empty")
	assert.Equal(t, KindEmpty, moneda.Values[2].Kind, "empty string becomes empty")

	total, _ := table.Column("Total")
	assert.True(t, total.Values[0].IsEmpty())
	assert.Equal(t, 10.5, total.Values[1].AsFloat64())
	assert.True(t, total.Values[2].IsEmpty())

	row := table.Row(2)
	assert.Equal(t, 3.0, row[0].AsFloat64())
}

func TestNewTableFromDocumentsEmpty(t *testing.T) {
	table := NewTableFromDocuments(nil)
	assert.Equal(t, 0, table.RowCount())
	assert.Empty(t, table.ColumnNames())
	assert.Equal(t, -1, table.ColumnIndex("x"))
}

func TestDocumentGet(t *testing.T) {
	doc := Document{{Key: "a", Value: 1}, {Key: "b", Value: "x"}}
	v, ok := doc.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = doc.Get("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, doc.Keys())
}
