package app

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"xlmongo/adapters/crosstab"
	"xlmongo/adapters/datareadiness"
	"xlmongo/domain/datareadiness/profiling"
	"xlmongo/domain/pivot"
	"xlmongo/domain/tabular"
	"xlmongo/internal/errors"
	"xlmongo/internal/testkit"
)

// Mock implementations for testing
type MockWorkbookWriter struct {
	mock.Mock
}

func (m *MockWorkbookWriter) WriteExport(ctx context.Context, path string, validated tabular.Table, result *pivot.Result) error {
	args := m.Called(ctx, path, validated, result)
	return args.Error(0)
}

func (m *MockWorkbookWriter) SheetNames() []string {
	return []string{"Datos_Validados", "Tabla_Dinamica"}
}

func newExportService(factory *testkit.MemoryStoreFactory, writer *MockWorkbookWriter) *ExportService {
	return NewExportService(
		factory,
		datareadiness.NewProfilerAdapter(nil, nil),
		crosstab.NewBuilder(""),
		writer,
		nil,
	)
}

func invoiceSpec() pivot.Spec {
	return pivot.Spec{
		Index:       []string{testkit.FieldMetodoPago, testkit.FieldMoneda},
		Values:      []string{testkit.FieldSubtotal},
		Aggregators: []pivot.Aggregator{pivot.AggCount, pivot.AggSum},
	}
}

func TestExportWritesValidatedTableAndPivot(t *testing.T) {
	factory := testkit.NewMemoryStoreFactory()
	docs := testkit.NewInvoiceGenerator(testkit.DefaultInvoiceConfig()).GenerateDocuments()
	_, err := factory.Store("exel3", "tablas_exel").InsertDocuments(context.Background(), docs)
	require.NoError(t, err)

	writer := &MockWorkbookWriter{}
	var written tabular.Table
	var pivotResult *pivot.Result
	writer.On("WriteExport", mock.Anything, "out.xlsx", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			written = args.Get(2).(tabular.Table)
			pivotResult = args.Get(3).(*pivot.Result)
		}).
		Return(nil)

	report, err := newExportService(factory, writer).Export(context.Background(), ExportRequest{
		Database:   "exel3",
		Collection: "tablas_exel",
		Output:     "out.xlsx",
		Spec:       invoiceSpec(),
	})
	require.NoError(t, err)
	writer.AssertExpectations(t)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, len(docs), report.Rows)
	assert.Equal(t, 6, report.Columns)
	assert.Empty(t, report.PivotWarning)
	assert.Equal(t, []string{"Datos_Validados", "Tabla_Dinamica"}, report.Sheets)

	types := map[string]profiling.ColumnType{}
	for _, p := range report.Profiles {
		types[p.Name] = p.Type
	}
	assert.Equal(t, profiling.TypeNumeric, types[testkit.FieldSubtotal])
	assert.Equal(t, profiling.TypeTemporal, types[testkit.FieldFecha])
	assert.Equal(t, profiling.TypeTextual, types[testkit.FieldMoneda])

	// every subtotal is a number after validation
	subtotal, ok := written.Column(testkit.FieldSubtotal)
	require.True(t, ok)
	var sum float64
	for _, v := range subtotal.Values {
		require.True(t, v.IsNumeric())
		sum += v.Num
	}

	require.False(t, pivotResult.IsEmpty())
	assert.Equal(t, report.PivotRows, len(pivotResult.Rows))
	total, ok := pivotResult.Total()
	require.True(t, ok)
	assert.Equal(t, float64(len(docs)), total.Cells[0])
	assert.InDelta(t, sum, total.Cells[1], 1e-6)
}

func TestExportFallsBackToEmptyPivotOnMissingColumn(t *testing.T) {
	factory := testkit.NewMemoryStoreFactory()
	_, err := factory.Store("db", "c").InsertDocuments(context.Background(), []tabular.Document{
		{{Key: "A", Value: "x"}, {Key: "B", Value: 1.0}},
	})
	require.NoError(t, err)

	writer := &MockWorkbookWriter{}
	writer.On("WriteExport", mock.Anything, "out.xlsx", mock.Anything, pivot.EmptyResult()).Return(nil)

	report, err := newExportService(factory, writer).Export(context.Background(), ExportRequest{
		Database:   "db",
		Collection: "c",
		Output:     "out.xlsx",
		Spec:       pivot.Spec{Index: []string{"Z"}, Values: []string{"B"}, Aggregators: []pivot.Aggregator{pivot.AggSum}},
	})
	require.NoError(t, err)
	writer.AssertExpectations(t)

	assert.Equal(t, "missing required column: Z", report.PivotWarning)
	assert.Equal(t, 0, report.PivotRows)
	assert.Equal(t, 1, report.Rows)
}

func TestExportEmptyCollection(t *testing.T) {
	writer := &MockWorkbookWriter{}
	writer.On("WriteExport", mock.Anything, "out.xlsx", mock.Anything, pivot.EmptyResult()).Return(nil)

	report, err := newExportService(testkit.NewMemoryStoreFactory(), writer).Export(context.Background(), ExportRequest{
		Output: "out.xlsx",
		Spec:   invoiceSpec(),
	})
	require.NoError(t, err)
	writer.AssertExpectations(t)

	assert.Equal(t, 0, report.Rows)
	assert.NotEmpty(t, report.PivotWarning)
}

func TestExportRejectsInvalidSpec(t *testing.T) {
	writer := &MockWorkbookWriter{}
	service := newExportService(testkit.NewMemoryStoreFactory(), writer)

	_, err := service.Export(context.Background(), ExportRequest{
		Output: "out.xlsx",
		Spec:   pivot.Spec{Index: []string{"A"}, Values: []string{"B"}, Aggregators: []pivot.Aggregator{"mode"}},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidPivotSpec, errors.GetCode(err))

	_, err = service.Export(context.Background(), ExportRequest{Spec: invoiceSpec()})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	writer.AssertNotCalled(t, "WriteExport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExportPropagatesFailures(t *testing.T) {
	t.Run("store failure", func(t *testing.T) {
		factory := testkit.NewMemoryStoreFactory()
		factory.Store("db", "c").FindErr = stderrors.New("connection refused")
		writer := &MockWorkbookWriter{}

		_, err := newExportService(factory, writer).Export(context.Background(), ExportRequest{
			Database: "db", Collection: "c", Output: "out.xlsx", Spec: invoiceSpec(),
		})
		require.Error(t, err)
		assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
		writer.AssertNotCalled(t, "WriteExport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("writer failure", func(t *testing.T) {
		writer := &MockWorkbookWriter{}
		writer.On("WriteExport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(stderrors.New("permission denied"))

		_, err := newExportService(testkit.NewMemoryStoreFactory(), writer).Export(context.Background(), ExportRequest{
			Output: "out.xlsx", Spec: invoiceSpec(),
		})
		require.Error(t, err)
		assert.Equal(t, errors.CodeSpreadsheetError, errors.GetCode(err))
	})
}
