package roi

// MinRectSize is the smallest width or height, in normalized units, a
// rectangle zone may have.
const MinRectSize = 0.01

// Point is a location in the unit square. The origin is the top-left corner
// of the logical canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalize maps a pixel coordinate inside a canvas bounding rectangle to
// the unit square. Each axis is computed independently as
// clamp((pixel - origin) / dimension, 0, 1). A non-positive dimension maps
// to 0 on that axis.
func Normalize(px, py, originX, originY, width, height float64) Point {
	return Point{
		X: normalizeAxis(px, originX, width),
		Y: normalizeAxis(py, originY, height),
	}
}

func normalizeAxis(pixel, origin, dim float64) float64 {
	if dim <= 0 {
		return 0
	}
	return Clamp01((pixel - origin) / dim)
}

// Bounds returns the axis-aligned bounding box of two opposite corners.
// The result does not depend on the order of a and b.
func Bounds(a, b Point) (min, max Point) {
	min = Point{X: minf(a.X, b.X), Y: minf(a.Y, b.Y)}
	max = Point{X: maxf(a.X, b.X), Y: maxf(a.Y, b.Y)}
	return min, max
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// inPolygon reports whether p lies inside the ring using the even-odd rule.
// The ring is treated as closed whether or not its last point repeats the
// first.
func inPolygon(p Point, ring []Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
