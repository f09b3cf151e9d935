// Package snapshot renders an indexed widget set into an image for visual
// debugging: one outlined rectangle per widget, labeled with its z-index
// (or its scene id when the handle provides one). The hitbench tool writes
// these as PNG files.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/spatial/pkg/geometry"
	"github.com/go-drift/spatial/pkg/hittest"
)

// Labeler is implemented by widget handles that carry a human-readable
// name; scene widgets do. Handles without one are labeled by z-index.
type Labeler interface {
	Label() string
}

// Options controls snapshot rendering.
type Options struct {
	// Padding is the margin in pixels around the scene bounds.
	// Defaults to 8.
	Padding int
	// Background fills the canvas. Defaults to white.
	Background color.Color
	// DrawLabels enables the per-widget text labels.
	DrawLabels bool
}

// DefaultOptions returns the options hitbench uses.
func DefaultOptions() Options {
	return Options{
		Padding:    8,
		Background: color.White,
		DrawLabels: true,
	}
}

// palette cycles per-widget outline colors so adjacent rects stay
// distinguishable.
var palette = []color.RGBA{
	{R: 0xD3, G: 0x2F, B: 0x2F, A: 0xFF},
	{R: 0x19, G: 0x76, B: 0xD2, A: 0xFF},
	{R: 0x38, G: 0x8E, B: 0x3C, A: 0xFF},
	{R: 0xF5, G: 0x7C, B: 0x00, A: 0xFF},
	{R: 0x7B, G: 0x1F, B: 0xA2, A: 0xFF},
	{R: 0x00, G: 0x83, B: 0x8F, A: 0xFF},
}

// Render draws the widgets into a new image sized to their union bounds
// plus padding. Widgets are drawn in ascending z order so higher z-indexes
// overdraw lower ones, matching paint order.
func Render(widgets []hittest.Widget, opts Options) *image.RGBA {
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.Background == nil {
		opts.Background = color.White
	}

	bounds := unionBounds(widgets)
	width := int(math.Ceil(bounds.Width())) + 2*opts.Padding
	height := int(math.Ceil(bounds.Height())) + 2*opts.Padding
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	ordered := make([]hittest.Widget, len(widgets))
	copy(ordered, widgets)
	sortByZ(ordered)

	for i, w := range ordered {
		r := w.HitRect()
		px := imageRect(r, bounds, opts.Padding)
		outline := palette[i%len(palette)]
		drawOutline(img, px, outline)
		if opts.DrawLabels {
			drawLabel(img, px, labelFor(w), outline)
		}
	}
	return img
}

func unionBounds(widgets []hittest.Widget) geometry.Rect {
	if len(widgets) == 0 {
		return geometry.Rect{}
	}
	bounds := widgets[0].HitRect()
	for _, w := range widgets[1:] {
		bounds = bounds.Union(w.HitRect())
	}
	return bounds
}

// sortByZ orders ascending by z-index, stable on the incoming order.
func sortByZ(widgets []hittest.Widget) {
	for i := 1; i < len(widgets); i++ {
		for j := i; j > 0 && widgets[j-1].ZIndex() > widgets[j].ZIndex(); j-- {
			widgets[j-1], widgets[j] = widgets[j], widgets[j-1]
		}
	}
}

// imageRect maps a scene-space rect into pixel coordinates.
func imageRect(r, bounds geometry.Rect, padding int) image.Rectangle {
	return image.Rect(
		padding+int(math.Floor(r.Left-bounds.Left)),
		padding+int(math.Floor(r.Top-bounds.Top)),
		padding+int(math.Ceil(r.Right-bounds.Left)),
		padding+int(math.Ceil(r.Bottom-bounds.Top)),
	)
}

// drawOutline draws a 1px rectangle border. Zero-size rects degenerate to
// a single marker pixel.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Dx() == 0 && r.Dy() == 0 {
		img.SetRGBA(r.Min.X, r.Min.Y, c)
		return
	}
	for x := r.Min.X; x <= r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y, c)
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X, y, c)
	}
}

// drawLabel renders the label just inside the rect's top-left corner.
func drawLabel(img *image.RGBA, r image.Rectangle, label string, c color.RGBA) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(r.Min.X + 2),
			Y: fixed.I(r.Min.Y + face.Ascent + 1),
		},
	}
	drawer.DrawString(label)
}

func labelFor(w hittest.Widget) string {
	if l, ok := w.(Labeler); ok && l.Label() != "" {
		return l.Label()
	}
	return fmt.Sprintf("z=%d", w.ZIndex())
}
