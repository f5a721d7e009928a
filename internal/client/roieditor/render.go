package roieditor

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/storesight/console/internal/roi"
)

var (
	background = color.RGBA{R: 0x1e, G: 0x22, B: 0x2a, A: 0xff}
	gridColor  = color.RGBA{R: 0x33, G: 0x39, B: 0x44, A: 0xff}
	draftColor = color.RGBA{R: 0xff, G: 0xd1, B: 0x3b, A: 0xff}
	palette    = []color.RGBA{
		{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff},
		{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff},
		{R: 0xef, G: 0x44, B: 0x44, A: 0xff},
		{R: 0xa8, G: 0x55, B: 0xf7, A: 0xff},
		{R: 0x06, G: 0xb6, B: 0xd4, A: 0xff},
		{R: 0xf9, G: 0x73, B: 0x16, A: 0xff},
	}
)

// GridStep is the spacing of background grid lines in pixels.
const GridStep = 40

// ShapeColor is the stable color of the i-th committed zone.
func ShapeColor(i int) color.RGBA {
	return palette[i%len(palette)]
}

// Render redraws the whole canvas into img: grid, committed zones, then the
// draft on top. Nothing is drawn incrementally.
func (e *Editor) Render(img *image.RGBA) {
	shapes := e.Shapes()
	d := e.Draft()
	Draw(img, shapes, d)
}

// Draw paints a full frame for the given state.
func Draw(img *image.RGBA, shapes []roi.Shape, d Draft) {
	b := img.Bounds()
	draw.Draw(img, b, &image.Uniform{C: background}, image.Point{}, draw.Src)
	for x := b.Min.X; x < b.Max.X; x += GridStep {
		line(img, x, b.Min.Y, x, b.Max.Y-1, gridColor)
	}
	for y := b.Min.Y; y < b.Max.Y; y += GridStep {
		line(img, b.Min.X, y, b.Max.X-1, y, gridColor)
	}

	for i, s := range shapes {
		polyline(img, s.Closed(), ShapeColor(i))
	}

	switch {
	case len(d.Points) == 0:
	case d.Mode == roi.KindRect && len(d.Points) == 2:
		preview := roi.Shape{Kind: roi.KindRect, Points: d.Points}
		polyline(img, preview.Closed(), draftColor)
	default:
		polyline(img, d.Points, draftColor)
		for _, p := range d.Points {
			x, y := toPixel(img, p)
			dot(img, x, y, draftColor)
		}
	}
}

func toPixel(img *image.RGBA, p roi.Point) (int, int) {
	b := img.Bounds()
	x := b.Min.X + int(p.X*float64(b.Dx()-1)+0.5)
	y := b.Min.Y + int(p.Y*float64(b.Dy()-1)+0.5)
	return x, y
}

func polyline(img *image.RGBA, pts []roi.Point, c color.RGBA) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := toPixel(img, pts[i-1])
		x1, y1 := toPixel(img, pts[i])
		line(img, x0, y0, x1, y1, c)
	}
}

func dot(img *image.RGBA, x, y int, c color.RGBA) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			img.SetRGBA(x+dx, y+dy, c)
		}
	}
}

// line is Bresenham's algorithm.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
