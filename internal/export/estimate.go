package export

import "math"

// Per-invoice artifact cost heuristics. Advisory only; the estimate is
// shown to the user before export and never blocks anything.
const (
	csvBytesPerInvoice = 500
	pdfBytesPerInvoice = 2000
	invoicesPerDay     = 2
)

// SizeEstimate is the advisory payload size for a request.
// CompressedBytes is zero when compression would not be recommended at
// the estimated raw size.
type SizeEstimate struct {
	RawBytes        int64 `json:"rawBytes"`
	CompressedBytes int64 `json:"compressedBytes,omitempty"`
}

// EstimateSize derives the advisory size for a request from the date
// range alone; it involves no network and is recomputed whenever the
// filters or format change.
func EstimateSize(r Request) SizeEstimate {
	invoices := int64(r.Days()) * invoicesPerDay
	if invoices < 1 {
		invoices = 1
	}
	perInvoice := int64(csvBytesPerInvoice)
	if r.Format == FormatPDF {
		perInvoice = pdfBytesPerInvoice
	}

	est := SizeEstimate{RawBytes: invoices * perInvoice}
	if ShouldCompress(est.RawBytes, r.Format) {
		est.CompressedBytes = int64(math.Round(float64(est.RawBytes) * EstimateRatio(r.Format)))
	}
	return est
}
