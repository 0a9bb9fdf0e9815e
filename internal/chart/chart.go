// Package chart rasterizes labeled data series into PNG images for
// embedding into generated documents. Rendering happens off any visible
// surface; callers get back raw PNG bytes sized exactly width x height.
package chart

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Kind selects the chart shape.
type Kind string

const (
	KindBar  Kind = "bar"
	KindLine Kind = "line"
	KindPie  Kind = "pie"
)

// Dataset is one named sequence of values aligned with the series labels.
type Dataset struct {
	Label  string
	Values []float64
}

// Series is the input to a render: category labels plus one or more
// datasets. Every dataset must have exactly one value per label.
type Series struct {
	Labels   []string
	Datasets []Dataset
}

// Rendered is a finished raster, consumed once by the document assembler.
type Rendered struct {
	PNG    []byte
	Width  int
	Height int
}

// RenderError reports a chart that could not be rasterized. Callers are
// expected to skip the chart and continue; charts are enhancements, not
// required document content.
type RenderError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render %s chart: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("render %s chart: %s", e.Kind, e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }

// palette is the fixed categorical palette; slices and series cycle
// through it by index when there are more categories than colors.
var palette = []drawing.Color{
	{R: 0x36, G: 0xa2, B: 0xeb, A: 255},
	{R: 0xff, G: 0x63, B: 0x84, A: 255},
	{R: 0x4b, G: 0xc0, B: 0xc0, A: 255},
	{R: 0xff, G: 0x9f, B: 0x40, A: 255},
	{R: 0x96, G: 0x66, B: 0xff, A: 255},
	{R: 0xff, G: 0xcd, B: 0x56, A: 255},
	{R: 0xc9, G: 0xcb, B: 0xcf, A: 255},
	{R: 0x2e, G: 0xcc, B: 0x71, A: 255},
	{R: 0xe7, G: 0x4c, B: 0x3c, A: 255},
	{R: 0x34, G: 0x49, B: 0x5e, A: 255},
}

// PaletteColor returns the palette entry for index i, cycling past the end.
func PaletteColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// minSliceLabelShare is the fraction of the pie total below which a slice
// is drawn without a label, to avoid label clutter.
const minSliceLabelShare = 0.05

// Rasterizer renders Series values into PNG images. The zero value is
// ready to use. Renders on one Rasterizer must be issued sequentially;
// the drawing surface is not safe for concurrent use.
type Rasterizer struct{}

// Render rasterizes the series as the given kind. It is a suspension
// point: the context is honored around the draw-and-capture step.
func (r *Rasterizer) Render(ctx context.Context, s Series, kind Kind, title string, width, height int) (*Rendered, error) {
	if err := validate(s, kind); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Kind: kind, Reason: "canceled", Err: err}
	}

	var buf bytes.Buffer
	var err error
	switch kind {
	case KindBar:
		err = renderBar(s, title, width, height, &buf)
	case KindLine:
		err = renderLine(s, title, width, height, &buf)
	case KindPie:
		err = renderPie(s, title, width, height, &buf)
	default:
		return nil, &RenderError{Kind: kind, Reason: "unknown chart kind"}
	}
	if err != nil {
		return nil, &RenderError{Kind: kind, Reason: "draw failed", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Kind: kind, Reason: "canceled", Err: err}
	}
	return &Rendered{PNG: buf.Bytes(), Width: width, Height: height}, nil
}

func validate(s Series, kind Kind) error {
	if len(s.Labels) == 0 || len(s.Datasets) == 0 {
		return &RenderError{Kind: kind, Reason: "empty dataset"}
	}
	// Only line charts draw more than one dataset; rejecting the others
	// beats silently dropping data.
	if kind != KindLine && len(s.Datasets) > 1 {
		return &RenderError{
			Kind:   kind,
			Reason: fmt.Sprintf("%s charts support a single dataset, got %d", kind, len(s.Datasets)),
		}
	}
	for _, ds := range s.Datasets {
		if len(ds.Values) != len(s.Labels) {
			return &RenderError{
				Kind:   kind,
				Reason: fmt.Sprintf("dataset %q has %d values for %d labels", ds.Label, len(ds.Values), len(s.Labels)),
			}
		}
	}
	return nil
}

func renderBar(s Series, title string, width, height int, buf *bytes.Buffer) error {
	ds := s.Datasets[0]
	bars := make([]chart.Value, len(s.Labels))
	for i, label := range s.Labels {
		bars[i] = chart.Value{
			Value: ds.Values[i],
			Label: label,
			Style: chart.Style{
				FillColor:   PaletteColor(i),
				StrokeColor: PaletteColor(i),
			},
		}
	}
	graph := chart.BarChart{
		Title:  title,
		Width:  width,
		Height: height,
		Bars:   bars,
		XAxis:  chart.Style{},
		YAxis: chart.YAxis{
			Style: chart.Style{},
		},
	}
	return graph.Render(chart.PNG, buf)
}

func renderLine(s Series, title string, width, height int, buf *bytes.Buffer) error {
	xs := make([]float64, len(s.Labels))
	ticks := make([]chart.Tick, len(s.Labels))
	for i, label := range s.Labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	series := make([]chart.Series, 0, len(s.Datasets))
	for i, ds := range s.Datasets {
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ds.Values,
			Style: chart.Style{
				StrokeColor: PaletteColor(i),
				StrokeWidth: 2.0,
			},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		Series: series,
	}
	if len(s.Datasets) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph.Render(chart.PNG, buf)
}

func renderPie(s Series, title string, width, height int, buf *bytes.Buffer) error {
	ds := s.Datasets[0]
	var total float64
	for _, v := range ds.Values {
		total += v
	}

	values := make([]chart.Value, len(s.Labels))
	for i, label := range s.Labels {
		v := ds.Values[i]
		text := ""
		if total > 0 && v/total >= minSliceLabelShare {
			text = fmt.Sprintf("%s (%.0f%%)", label, v/total*100)
		}
		values[i] = chart.Value{
			Value: v,
			Label: text,
			Style: chart.Style{
				FillColor:   PaletteColor(i),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1.0,
			},
		}
	}
	graph := chart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return graph.Render(chart.PNG, buf)
}
