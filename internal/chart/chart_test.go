package chart

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
)

func sampleSeries() Series {
	return Series{
		Labels: []string{"Ene", "Feb", "Mar"},
		Datasets: []Dataset{
			{Label: "Total", Values: []float64{120, 340, 215}},
		},
	}
}

func TestRenderProducesExactSizePNG(t *testing.T) {
	r := &Rasterizer{}
	for _, kind := range []Kind{KindBar, KindLine, KindPie} {
		img, err := r.Render(context.Background(), sampleSeries(), kind, "Prueba", 400, 300)
		if err != nil {
			t.Fatalf("%s: render failed: %v", kind, err)
		}
		decoded, err := png.Decode(bytes.NewReader(img.PNG))
		if err != nil {
			t.Fatalf("%s: output is not valid PNG: %v", kind, err)
		}
		bounds := decoded.Bounds()
		if bounds.Dx() != 400 || bounds.Dy() != 300 {
			t.Errorf("%s: got %dx%d, want 400x300", kind, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestRenderEmptyDataset(t *testing.T) {
	r := &Rasterizer{}
	_, err := r.Render(context.Background(), Series{}, KindBar, "", 100, 100)
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
}

func TestRenderMismatchedValueCount(t *testing.T) {
	r := &Rasterizer{}
	s := Series{
		Labels:   []string{"a", "b"},
		Datasets: []Dataset{{Label: "x", Values: []float64{1}}},
	}
	var rerr *RenderError
	if _, err := r.Render(context.Background(), s, KindLine, "", 100, 100); !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError for mismatched lengths, got %v", err)
	}
}

func TestRenderMultiDatasetOnlyForLines(t *testing.T) {
	s := Series{
		Labels: []string{"Ene", "Feb"},
		Datasets: []Dataset{
			{Label: "2023", Values: []float64{100, 200}},
			{Label: "2024", Values: []float64{150, 250}},
		},
	}
	r := &Rasterizer{}
	for _, kind := range []Kind{KindBar, KindPie} {
		var rerr *RenderError
		if _, err := r.Render(context.Background(), s, kind, "", 200, 150); !errors.As(err, &rerr) {
			t.Errorf("%s: expected RenderError for multiple datasets, got %v", kind, err)
		}
	}
	// Line charts draw every dataset, with a legend.
	if _, err := r.Render(context.Background(), s, KindLine, "", 400, 300); err != nil {
		t.Errorf("line: multi-dataset render failed: %v", err)
	}
}

func TestRenderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Rasterizer{}
	_, err := r.Render(ctx, sampleSeries(), KindPie, "", 100, 100)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestPaletteCycles(t *testing.T) {
	if PaletteColor(0) != PaletteColor(10) {
		t.Error("palette should cycle with period 10")
	}
	if PaletteColor(3) == PaletteColor(4) {
		t.Error("adjacent palette entries should differ")
	}
}

func TestPieSmallSliceGetsNoLabel(t *testing.T) {
	// One slice at 2% of the total. The render must still succeed; the
	// tiny slice is simply drawn without its label.
	s := Series{
		Labels:   []string{"Grande", "Chico"},
		Datasets: []Dataset{{Label: "Total", Values: []float64{98, 2}}},
	}
	r := &Rasterizer{}
	if _, err := r.Render(context.Background(), s, KindPie, "", 200, 200); err != nil {
		t.Fatalf("render failed: %v", err)
	}
}
