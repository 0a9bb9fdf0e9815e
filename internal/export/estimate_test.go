package export

import "testing"

func TestEstimateJanuaryRange(t *testing.T) {
	req := Request{StartDate: "2024-01-01", EndDate: "2024-01-31", Format: FormatCSV}
	est := EstimateSize(req)
	// 31 days inclusive, 2 invoices/day, 500 bytes each.
	if est.RawBytes != 31*2*500 {
		t.Errorf("RawBytes = %d, want %d", est.RawBytes, 31*2*500)
	}
	if est.CompressedBytes != 0 {
		t.Errorf("small CSV estimate should not recommend compression, got %d", est.CompressedBytes)
	}
}

func TestEstimatePDFAtLeastCSV(t *testing.T) {
	ranges := []struct{ start, end string }{
		{"2024-01-01", "2024-01-01"},
		{"2024-01-01", "2024-01-31"},
		{"2023-01-01", "2024-12-31"},
	}
	for _, r := range ranges {
		csv := EstimateSize(Request{StartDate: r.start, EndDate: r.end, Format: FormatCSV})
		pdf := EstimateSize(Request{StartDate: r.start, EndDate: r.end, Format: FormatPDF})
		if csv.RawBytes < 0 || pdf.RawBytes < 0 {
			t.Errorf("%s..%s: negative estimate", r.start, r.end)
		}
		if pdf.RawBytes < csv.RawBytes {
			t.Errorf("%s..%s: pdf %d < csv %d", r.start, r.end, pdf.RawBytes, csv.RawBytes)
		}
	}
}

func TestEstimateSingleDayFloor(t *testing.T) {
	// Same-day range still estimates at least one invoice.
	req := Request{StartDate: "2024-06-15", EndDate: "2024-06-15", Format: FormatCSV}
	if est := EstimateSize(req); est.RawBytes < csvBytesPerInvoice {
		t.Errorf("RawBytes = %d, want at least %d", est.RawBytes, csvBytesPerInvoice)
	}
}

func TestEstimateLargeCSVRecommendsCompression(t *testing.T) {
	// ~3 years of data: 1095 days * 2 * 500 > 1 MiB.
	req := Request{StartDate: "2021-01-01", EndDate: "2023-12-31", Format: FormatCSV}
	est := EstimateSize(req)
	if est.RawBytes <= csvCompressThreshold {
		t.Fatalf("test range too small: %d", est.RawBytes)
	}
	if est.CompressedBytes == 0 {
		t.Fatal("expected a compressed estimate")
	}
	want := int64(float64(est.RawBytes) * 0.3)
	if diff := est.CompressedBytes - want; diff < -1 || diff > 1 {
		t.Errorf("CompressedBytes = %d, want ~%d", est.CompressedBytes, want)
	}
}
