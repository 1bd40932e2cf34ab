package tabular

// Column is a named, ordered sequence of values
type Column struct {
	Name   string
	Values []Value
}

// Len returns the number of values in the column
func (c Column) Len() int {
	return len(c.Values)
}

// Table is an ordered set of equally long columns
type Table struct {
	Columns []Column
}

// NewTableFromDocuments builds a table whose columns are the union of document
// keys in first-seen order. Documents lacking a key contribute an empty value.
func NewTableFromDocuments(docs []Document) Table {
	index := make(map[string]int)
	var columns []Column

	for row, doc := range docs {
		for _, f := range doc {
			idx, ok := index[f.Key]
			if !ok {
				idx = len(columns)
				index[f.Key] = idx
				values := make([]Value, row, len(docs))
				for i := range values {
					values[i] = NewMissingValue()
				}
				columns = append(columns, Column{Name: f.Key, Values: values})
			}
			col := &columns[idx]
			if len(col.Values) > row {
				// duplicated key inside one document: last one wins
				col.Values[row] = FromRaw(f.Value)
				continue
			}
			col.Values = append(col.Values, FromRaw(f.Value))
		}
		for i := range columns {
			if len(columns[i].Values) == row {
				columns[i].Values = append(columns[i].Values, NewMissingValue())
			}
		}
	}

	return Table{Columns: columns}
}

// RowCount returns the number of rows
func (t Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns the column names in order
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column
func (t Table) Column(name string) (Column, bool) {
	if idx := t.ColumnIndex(name); idx >= 0 {
		return t.Columns[idx], true
	}
	return Column{}, false
}

// Row returns the values of row i across all columns
func (t Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for c, col := range t.Columns {
		row[c] = col.Values[i]
	}
	return row
}
