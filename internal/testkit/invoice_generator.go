package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"xlmongo/domain/tabular"
)

// Field names of generated invoice documents
const (
	FieldFolio      = "Comprobante Folio"
	FieldFecha      = "Comprobante Fecha"
	FieldMetodoPago = "Comprobante Metodo Pago"
	FieldMoneda     = "Comprobante Moneda"
	FieldSubtotal   = "Comprobante Subtotal Descuento Mxn"
	FieldEmisor     = "Emisor Nombre"
)

// InvoiceGeneratorConfig configures the invoice document generator
type InvoiceGeneratorConfig struct {
	Count     int       `json:"count"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	// share of documents with an empty payment method or currency
	MissingRate float64 `json:"missing_rate"`
	// share of amounts stored as text instead of numbers
	TextAmountRate float64 `json:"text_amount_rate"`
	Seed           int64   `json:"seed"`
}

// DefaultInvoiceConfig returns sensible defaults for invoice generation
func DefaultInvoiceConfig() InvoiceGeneratorConfig {
	return InvoiceGeneratorConfig{
		Count:          200,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		MissingRate:    0.05,
		TextAmountRate: 0.1,
		Seed:           42,
	}
}

// InvoiceGenerator generates deterministic invoice documents shaped like
// the ones the export flow expects
type InvoiceGenerator struct {
	config InvoiceGeneratorConfig
	rng    *rand.Rand
}

// NewInvoiceGenerator creates a new invoice generator
func NewInvoiceGenerator(config InvoiceGeneratorConfig) *InvoiceGenerator {
	return &InvoiceGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	paymentMethods = []string{"PUE", "PPD"}
	currencies     = []string{"MXN", "MXN", "MXN", "USD"}
	issuers        = []string{"Constructora del Norte", "Materiales Rivera", "Grupo Acero", "Cementos del Bajio"}
)

// GenerateDocuments returns Count invoices in folio order
func (g *InvoiceGenerator) GenerateDocuments() []tabular.Document {
	docs := make([]tabular.Document, 0, g.config.Count)
	for i := 0; i < g.config.Count; i++ {
		docs = append(docs, g.invoice(i))
	}
	return docs
}

func (g *InvoiceGenerator) invoice(i int) tabular.Document {
	method := paymentMethods[g.rng.Intn(len(paymentMethods))]
	if g.rng.Float64() < g.config.MissingRate {
		method = ""
	}
	currency := currencies[g.rng.Intn(len(currencies))]
	if g.rng.Float64() < g.config.MissingRate {
		currency = ""
	}

	amount := math.Round((500+g.rng.ExpFloat64()*4500)*100) / 100
	var subtotal interface{} = amount
	if g.rng.Float64() < g.config.TextAmountRate {
		subtotal = fmt.Sprintf("%.2f", amount)
	}

	return tabular.Document{
		{Key: FieldFolio, Value: fmt.Sprintf("F-%05d", i+1)},
		{Key: FieldFecha, Value: g.randomTimeInRange(g.config.StartDate, g.config.EndDate)},
		{Key: FieldMetodoPago, Value: method},
		{Key: FieldMoneda, Value: currency},
		{Key: FieldSubtotal, Value: subtotal},
		{Key: FieldEmisor, Value: issuers[g.rng.Intn(len(issuers))]},
	}
}

// randomTimeInRange generates a random time between start and end, at
// whole-second resolution
func (g *InvoiceGenerator) randomTimeInRange(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	delta := end.Unix() - start.Unix()
	return time.Unix(start.Unix()+g.rng.Int63n(delta), 0).UTC()
}
