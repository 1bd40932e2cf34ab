package excel

// Sheet names of an export workbook
const (
	ValidatedSheet = "Datos_Validados"
	PivotSheet     = "Tabla_Dinamica"
)

// WriterConfig holds the export workbook layout
type WriterConfig struct {
	ValidatedSheet string `json:"validated_sheet"`
	PivotSheet     string `json:"pivot_sheet"`
	BoldHeaders    bool   `json:"bold_headers"`
}

// DefaultWriterConfig returns the standard two-sheet layout
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		ValidatedSheet: ValidatedSheet,
		PivotSheet:     PivotSheet,
		BoldHeaders:    true,
	}
}
