// Package report defines the invoice data returned by the upstream data API
// and the aggregates derived from it for document generation.
package report

// Invoice is a single purchase invoice row as returned by the data API.
// Dates are ISO strings (YYYY-MM-DD) end to end; nothing in the export
// pipeline needs calendar arithmetic on individual rows.
type Invoice struct {
	ID     string  `json:"id,omitempty"`
	Date   string  `json:"date"`
	Number string  `json:"number"`
	Vendor string  `json:"vendor"`
	NIT    string  `json:"nit"`
	Total  float64 `json:"total"`
}

// Summary holds the pre-aggregated totals the data API computes server-side.
type Summary struct {
	InvoiceCount int     `json:"invoiceCount"`
	TotalAmount  float64 `json:"totalAmount"`
}

// Filters echoes back the filter criteria the data API applied.
type Filters struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Vendor    string `json:"vendor,omitempty"`
	NIT       string `json:"nit,omitempty"`
}

// Data is the full JSON payload for a PDF export.
type Data struct {
	Invoices []Invoice `json:"invoices"`
	Summary  Summary   `json:"summary"`
	Filters  Filters   `json:"filters"`
}

// Empty reports whether there is nothing at all to render.
func (d *Data) Empty() bool {
	return len(d.Invoices) == 0 && d.Summary.InvoiceCount == 0 && d.Summary.TotalAmount == 0
}
