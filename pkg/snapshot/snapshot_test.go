package snapshot

import (
	"image/color"
	"testing"

	"github.com/go-drift/spatial/pkg/geometry"
	"github.com/go-drift/spatial/pkg/hittest"
)

type stubWidget struct {
	label string
	rect  geometry.Rect
	z     int
}

func (w *stubWidget) HitRect() geometry.Rect { return w.rect }
func (w *stubWidget) ZIndex() int            { return w.z }
func (w *stubWidget) Label() string          { return w.label }

func TestRenderSizesCanvasFromBounds(t *testing.T) {
	widgets := []hittest.Widget{
		&stubWidget{label: "a", rect: geometry.RectFromLTWH(0, 0, 100, 50)},
		&stubWidget{label: "b", rect: geometry.RectFromLTWH(150, 100, 50, 50), z: 1},
	}

	opts := DefaultOptions()
	img := Render(widgets, opts)

	// Union bounds are 200x150 plus 8px padding on each side.
	if got := img.Bounds().Dx(); got != 216 {
		t.Errorf("width = %d, want 216", got)
	}
	if got := img.Bounds().Dy(); got != 166 {
		t.Errorf("height = %d, want 166", got)
	}
}

func TestRenderDrawsOutlines(t *testing.T) {
	widgets := []hittest.Widget{
		&stubWidget{label: "a", rect: geometry.RectFromLTWH(0, 0, 20, 20)},
	}

	opts := DefaultOptions()
	opts.DrawLabels = false
	img := Render(widgets, opts)

	// The rect's top-left corner maps to (padding, padding) and must be
	// painted with a palette color, not the background.
	corner := img.RGBAAt(opts.Padding, opts.Padding)
	if corner == (color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}) || corner.A == 0 {
		t.Errorf("outline corner not drawn, got %+v", corner)
	}

	// A pixel well inside the rect stays background.
	inside := img.RGBAAt(opts.Padding+10, opts.Padding+10)
	if inside != (color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}) {
		t.Errorf("interior should be background, got %+v", inside)
	}
}

func TestRenderEmptySet(t *testing.T) {
	img := Render(nil, DefaultOptions())
	if img.Bounds().Dx() < 1 || img.Bounds().Dy() < 1 {
		t.Errorf("empty render produced %v", img.Bounds())
	}
}

func TestRenderZeroSizeWidget(t *testing.T) {
	widgets := []hittest.Widget{
		&stubWidget{label: "dot", rect: geometry.RectFromLTWH(10, 10, 0, 0)},
	}
	opts := DefaultOptions()
	opts.DrawLabels = false

	img := Render(widgets, opts)
	px := img.RGBAAt(opts.Padding, opts.Padding)
	if px.A == 0 {
		t.Errorf("zero-size widget marker not drawn, got %+v", px)
	}
}
