// Package document assembles invoice report data into paginated PDF
// documents: summary tables, embedded chart images, detail listings, and
// a running page footer.
package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/davargas/facturex/internal/chart"
	"github.com/davargas/facturex/internal/report"
)

// Variant selects which document layout to assemble.
type Variant string

const (
	// VariantSummary is the report layout: summary table, vendor and
	// monthly charts, then the detail listing on a fresh page.
	VariantSummary Variant = "summary"
	// VariantDetail is the invoice-listing layout: monthly chart, then
	// an unconditional full row dump.
	VariantDetail Variant = "detail"
)

// Options controls one assembly run.
type Options struct {
	Variant    Variant
	Title      string
	IncludeTax bool

	// Chart raster size in pixels. Zero values take the defaults.
	ChartWidth  int
	ChartHeight int
}

const (
	defaultChartWidth  = 900
	defaultChartHeight = 450

	// Placement size of an embedded chart on the page, in millimeters.
	chartPlaceWidthMM  = 170.0
	chartPlaceHeightMM = 85.0

	topVendorCount = 5
)

// BuildError means there was nothing at all to render. Missing optional
// sections degrade silently instead.
type BuildError struct {
	Reason string
}

func (e *BuildError) Error() string { return "build document: " + e.Reason }

// Result is a finished document plus what went into it.
type Result struct {
	PDF    []byte
	Pages  int
	Charts []string
}

// Assembler builds PDF documents from report data. Chart renders are
// issued strictly sequentially; the rasterizer surface is shared.
type Assembler struct {
	charts *chart.Rasterizer
	log    *slog.Logger
}

func NewAssembler(r *chart.Rasterizer, log *slog.Logger) *Assembler {
	return &Assembler{charts: r, log: log}
}

// Assemble builds the document for data under opts. A failed chart render
// is logged and skipped; the document is only abandoned when there are no
// rows and no summary figures at all.
func (a *Assembler) Assemble(ctx context.Context, data *report.Data, opts Options) (*Result, error) {
	if data == nil || data.Empty() {
		return nil, &BuildError{Reason: "no rows and no summary data"}
	}
	if opts.Title == "" {
		opts.Title = "Reporte de Facturas"
	}
	if opts.ChartWidth <= 0 {
		opts.ChartWidth = defaultChartWidth
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = defaultChartHeight
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(opts.Title, true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d de {nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	b := &builder{pdf: pdf, tr: tr, opts: opts}
	b.title()
	b.metadata(data.Filters)

	var rendered []string
	switch opts.Variant {
	case VariantDetail:
		rendered = a.embedCharts(ctx, b, data, []chartSpec{monthlyTrendSpec(data)})
		b.detailTable(data.Invoices)
	default:
		b.summaryTable(data.Summary)
		rendered = a.embedCharts(ctx, b, data, []chartSpec{
			vendorDistributionSpec(data),
			monthlyTrendSpec(data),
		})
		pdf.AddPage()
		b.detailTable(data.Invoices)
	}

	if err := pdf.Error(); err != nil {
		return nil, &BuildError{Reason: err.Error()}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &BuildError{Reason: err.Error()}
	}
	return &Result{PDF: buf.Bytes(), Pages: pdf.PageCount(), Charts: rendered}, nil
}

// chartSpec is one chart the variant would like to include. A nil series
// means the data does not support the chart and it is silently omitted.
type chartSpec struct {
	name   string
	title  string
	kind   chart.Kind
	series *chart.Series
}

func vendorDistributionSpec(data *report.Data) chartSpec {
	spec := chartSpec{name: "vendors", title: "Distribución por Proveedor (Top 5)", kind: chart.KindPie}
	if report.DistinctVendors(data.Invoices) < 2 {
		return spec
	}
	top := report.TopVendors(data.Invoices, topVendorCount)
	s := &chart.Series{Datasets: []chart.Dataset{{Label: "Total"}}}
	for _, vt := range top {
		s.Labels = append(s.Labels, vt.Vendor)
		s.Datasets[0].Values = append(s.Datasets[0].Values, vt.Total)
	}
	spec.series = s
	return spec
}

func monthlyTrendSpec(data *report.Data) chartSpec {
	spec := chartSpec{name: "monthly", title: "Tendencia Mensual", kind: chart.KindLine}
	if report.DistinctMonths(data.Invoices) < 2 {
		return spec
	}
	months := report.MonthlyTotals(data.Invoices)
	s := &chart.Series{Datasets: []chart.Dataset{{Label: "Total"}}}
	for _, mt := range months {
		s.Labels = append(s.Labels, mt.Month)
		s.Datasets[0].Values = append(s.Datasets[0].Values, mt.Total)
	}
	spec.series = s
	return spec
}

// embedCharts renders and places each applicable chart in order. Render
// failures are logged and skipped; charts never fail the document.
func (a *Assembler) embedCharts(ctx context.Context, b *builder, data *report.Data, specs []chartSpec) []string {
	var rendered []string
	for _, spec := range specs {
		if spec.series == nil {
			continue
		}
		img, err := a.charts.Render(ctx, *spec.series, spec.kind, spec.title, b.opts.ChartWidth, b.opts.ChartHeight)
		if err != nil {
			if a.log != nil {
				a.log.Warn("chart render failed, skipping", "chart", spec.name, "error", err)
			}
			continue
		}
		b.image(spec.name, img.PNG)
		rendered = append(rendered, spec.name)
	}
	return rendered
}

// builder holds the gofpdf cursor-level drawing helpers.
type builder struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	opts Options
}

func (b *builder) title() {
	b.pdf.SetFont("Helvetica", "B", 16)
	b.pdf.CellFormat(0, 10, b.tr(b.opts.Title), "", 1, "C", false, 0, "")
	b.pdf.Ln(2)
}

func (b *builder) metadata(f report.Filters) {
	b.pdf.SetFont("Helvetica", "", 10)
	b.pdf.CellFormat(0, 6, b.tr(fmt.Sprintf("Período: %s a %s", f.StartDate, f.EndDate)), "", 1, "L", false, 0, "")
	if f.Vendor != "" {
		b.pdf.CellFormat(0, 6, b.tr("Proveedor: "+f.Vendor), "", 1, "L", false, 0, "")
	}
	if f.NIT != "" {
		b.pdf.CellFormat(0, 6, "NIT: "+f.NIT, "", 1, "L", false, 0, "")
	}
	b.pdf.CellFormat(0, 6, "Generado: "+time.Now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	b.pdf.Ln(4)
}

func (b *builder) summaryTable(s report.Summary) {
	b.pdf.SetFont("Helvetica", "B", 12)
	b.pdf.CellFormat(0, 8, "Resumen", "", 1, "L", false, 0, "")
	b.pdf.SetFont("Helvetica", "", 10)

	row := func(label, value string) {
		b.pdf.CellFormat(70, 7, b.tr(label), "1", 0, "L", false, 0, "")
		b.pdf.CellFormat(50, 7, value, "1", 1, "R", false, 0, "")
	}
	row("Cantidad de facturas", fmt.Sprintf("%d", s.InvoiceCount))
	row("Importe total", fmt.Sprintf("%.2f", s.TotalAmount))
	if b.opts.IncludeTax {
		row("Importe neto", fmt.Sprintf("%.2f", report.TaxableBase(s.TotalAmount)))
		row("IVA (13%)", fmt.Sprintf("%.2f", report.TaxAmount(s.TotalAmount)))
	}
	b.pdf.Ln(6)
}

func (b *builder) image(name string, png []byte) {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	b.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))

	_, pageH := b.pdf.GetPageSize()
	_, _, _, bottom := b.pdf.GetMargins()
	if b.pdf.GetY()+chartPlaceHeightMM > pageH-bottom-15 {
		b.pdf.AddPage()
	}
	b.pdf.ImageOptions(name, (210-chartPlaceWidthMM)/2, b.pdf.GetY(), chartPlaceWidthMM, chartPlaceHeightMM, true, opts, 0, "")
	b.pdf.Ln(4)
}

// detailColumn weights are relative; actual widths are normalized against
// the usable page width so the proportions hold with or without the tax
// columns.
type detailColumn struct {
	header string
	weight float64
	align  string
	value  func(report.Invoice) string
}

func (b *builder) detailColumns() []detailColumn {
	cols := []detailColumn{
		{"Fecha", 16, "L", func(i report.Invoice) string { return i.Date }},
		{"Número", 18, "L", func(i report.Invoice) string { return i.Number }},
		{"Proveedor", 34, "L", func(i report.Invoice) string { return i.Vendor }},
		{"NIT", 16, "L", func(i report.Invoice) string { return i.NIT }},
	}
	if b.opts.IncludeTax {
		cols = append(cols,
			detailColumn{"Neto", 14, "R", func(i report.Invoice) string { return fmt.Sprintf("%.2f", report.TaxableBase(i.Total)) }},
			detailColumn{"IVA", 14, "R", func(i report.Invoice) string { return fmt.Sprintf("%.2f", report.TaxAmount(i.Total)) }},
		)
	}
	cols = append(cols, detailColumn{"Total", 16, "R", func(i report.Invoice) string { return fmt.Sprintf("%.2f", i.Total) }})
	return cols
}

func (b *builder) detailTable(invoices []report.Invoice) {
	cols := b.detailColumns()
	var totalWeight float64
	for _, c := range cols {
		totalWeight += c.weight
	}
	pageW, _ := b.pdf.GetPageSize()
	left, _, right, _ := b.pdf.GetMargins()
	usable := pageW - left - right
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = c.weight / totalWeight * usable
	}

	b.pdf.SetFont("Helvetica", "B", 12)
	b.pdf.CellFormat(0, 8, "Detalle de Facturas", "", 1, "L", false, 0, "")

	b.pdf.SetFont("Helvetica", "B", 9)
	b.pdf.SetFillColor(230, 230, 230)
	for i, c := range cols {
		b.pdf.CellFormat(widths[i], 7, b.tr(c.header), "1", 0, "C", true, 0, "")
	}
	b.pdf.Ln(-1)

	b.pdf.SetFont("Helvetica", "", 9)
	for _, inv := range invoices {
		for i, c := range cols {
			b.pdf.CellFormat(widths[i], 6, b.tr(c.value(inv)), "1", 0, c.align, false, 0, "")
		}
		b.pdf.Ln(-1)
	}
}
