package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/davargas/facturex/internal/chart"
	"github.com/davargas/facturex/internal/report"
)

func testAssembler() *Assembler {
	return NewAssembler(&chart.Rasterizer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func multiVendorData() *report.Data {
	return &report.Data{
		Invoices: []report.Invoice{
			{Date: "2024-01-05", Number: "F-001", Vendor: "Alfa SRL", NIT: "102030", Total: 113},
			{Date: "2024-01-20", Number: "F-002", Vendor: "Beta SA", NIT: "405060", Total: 226},
			{Date: "2024-02-03", Number: "F-003", Vendor: "Gamma Ltda", NIT: "708090", Total: 339},
			{Date: "2024-02-15", Number: "F-004", Vendor: "Alfa SRL", NIT: "102030", Total: 56.50},
		},
		Summary: report.Summary{InvoiceCount: 4, TotalAmount: 734.50},
		Filters: report.Filters{StartDate: "2024-01-01", EndDate: "2024-02-29"},
	}
}

func readBack(t *testing.T, raw []byte) (*pdf.Reader, string) {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("output is not a readable PDF: %v", err)
	}
	textReader, err := r.GetPlainText()
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, textReader); err != nil {
		t.Fatalf("read text: %v", err)
	}
	return r, sb.String()
}

func TestAssembleSummaryVariant(t *testing.T) {
	res, err := testAssembler().Assemble(context.Background(), multiVendorData(), Options{
		Variant:    VariantSummary,
		IncludeTax: true,
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if len(res.Charts) != 2 || res.Charts[0] != "vendors" || res.Charts[1] != "monthly" {
		t.Errorf("Charts = %v, want [vendors monthly]", res.Charts)
	}
	// Summary content plus a forced page break before the detail table.
	if res.Pages < 2 {
		t.Errorf("Pages = %d, want at least 2", res.Pages)
	}

	r, text := readBack(t, res.PDF)
	if r.NumPage() != res.Pages {
		t.Errorf("reader sees %d pages, result says %d", r.NumPage(), res.Pages)
	}
	for _, want := range []string{"Reporte", "Resumen", "Detalle"} {
		if !strings.Contains(text, want) {
			t.Errorf("document text missing %q", want)
		}
	}
}

func TestAssembleDetailVariantSkipsVendorChart(t *testing.T) {
	res, err := testAssembler().Assemble(context.Background(), multiVendorData(), Options{
		Variant: VariantDetail,
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	// Many distinct vendors, but the detail variant never includes the
	// vendor-distribution chart.
	if len(res.Charts) != 1 || res.Charts[0] != "monthly" {
		t.Errorf("Charts = %v, want [monthly]", res.Charts)
	}
}

func TestAssembleSingleVendorOmitsVendorChart(t *testing.T) {
	data := multiVendorData()
	for i := range data.Invoices {
		data.Invoices[i].Vendor = "Alfa SRL"
	}
	res, err := testAssembler().Assemble(context.Background(), data, Options{Variant: VariantSummary})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	for _, c := range res.Charts {
		if c == "vendors" {
			t.Error("single-vendor dataset must not include the vendor chart")
		}
	}
}

func TestAssembleSingleMonthOmitsTrendChart(t *testing.T) {
	data := multiVendorData()
	for i := range data.Invoices {
		data.Invoices[i].Date = "2024-01-10"
	}
	res, err := testAssembler().Assemble(context.Background(), data, Options{Variant: VariantSummary})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	for _, c := range res.Charts {
		if c == "monthly" {
			t.Error("single-month dataset must not include the trend chart")
		}
	}
}

func TestAssembleNoRowsButSummaryStillBuilds(t *testing.T) {
	data := &report.Data{
		Summary: report.Summary{InvoiceCount: 12, TotalAmount: 1356},
		Filters: report.Filters{StartDate: "2024-01-01", EndDate: "2024-01-31"},
	}
	res, err := testAssembler().Assemble(context.Background(), data, Options{Variant: VariantSummary})
	if err != nil {
		t.Fatalf("summary-only data must still build: %v", err)
	}
	if len(res.Charts) != 0 {
		t.Errorf("no rows means no charts, got %v", res.Charts)
	}
	_, text := readBack(t, res.PDF)
	if !strings.Contains(text, "Resumen") {
		t.Error("document should contain the summary section")
	}
}

func TestAssembleSkipsFailedChartRenders(t *testing.T) {
	// A canceled context makes every chart render fail. The document must
	// still build, just without the charts.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := testAssembler().Assemble(ctx, multiVendorData(), Options{Variant: VariantSummary})
	if err != nil {
		t.Fatalf("chart failures must not fail the document: %v", err)
	}
	if len(res.Charts) != 0 {
		t.Errorf("Charts = %v, want none after render failures", res.Charts)
	}
	_, text := readBack(t, res.PDF)
	for _, want := range []string{"Resumen", "Detalle"} {
		if !strings.Contains(text, want) {
			t.Errorf("document text missing %q", want)
		}
	}
}

func TestAssembleCompletelyEmptyFails(t *testing.T) {
	_, err := testAssembler().Assemble(context.Background(), &report.Data{}, Options{Variant: VariantSummary})
	var berr *BuildError
	if !errors.As(err, &berr) {
		t.Fatalf("expected BuildError, got %v", err)
	}
}

func TestAssembleManyRowsPaginates(t *testing.T) {
	data := multiVendorData()
	base := data.Invoices
	for len(data.Invoices) < 120 {
		data.Invoices = append(data.Invoices, base...)
	}
	data.Summary.InvoiceCount = len(data.Invoices)

	res, err := testAssembler().Assemble(context.Background(), data, Options{Variant: VariantDetail, IncludeTax: true})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if res.Pages < 3 {
		t.Errorf("120 detail rows should span several pages, got %d", res.Pages)
	}
}
