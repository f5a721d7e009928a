package roi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind is the geometry of a zone.
type Kind string

const (
	KindRect    Kind = "rect"
	KindPolygon Kind = "polygon"
)

var (
	ErrUnknownKind   = errors.New("unknown zone kind")
	ErrEmptyName     = errors.New("zone name is required")
	ErrRectPoints    = errors.New("rectangle zones need exactly 2 points")
	ErrRectTooSmall  = errors.New("rectangle zone is too small")
	ErrPolygonPoints = errors.New("polygon zones need at least 3 points")
	ErrOutOfRange    = errors.New("zone coordinates must be within [0,1]")
)

// Shape is one named zone drawn over a camera view.
//
// A rect holds two opposite corners. A polygon holds its vertices in click
// order; the list is never closed (first point is not repeated) but the zone
// is rendered and hit-tested as a closed ring.
type Shape struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Points []Point `json:"points"`
}

// NewShape builds a shape with a fresh id.
func NewShape(name string, kind Kind, pts []Point) Shape {
	cp := make([]Point, len(pts))
	copy(cp, pts)
	return Shape{
		ID:     uuid.NewString(),
		Name:   name,
		Kind:   kind,
		Points: cp,
	}
}

// Validate checks the finalized-shape invariants.
func (s Shape) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	for _, p := range s.Points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return ErrOutOfRange
		}
	}
	switch s.Kind {
	case KindRect:
		if len(s.Points) != 2 {
			return ErrRectPoints
		}
		min, max := Bounds(s.Points[0], s.Points[1])
		if max.X-min.X < MinRectSize || max.Y-min.Y < MinRectSize {
			return ErrRectTooSmall
		}
	case KindPolygon:
		if len(s.Points) < 3 {
			return ErrPolygonPoints
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	return nil
}

// Closed returns the outline used for drawing: the four corners of a rect,
// or the polygon vertices with the first point appended. Points is not
// modified.
func (s Shape) Closed() []Point {
	switch s.Kind {
	case KindRect:
		if len(s.Points) < 2 {
			return nil
		}
		min, max := Bounds(s.Points[0], s.Points[1])
		return []Point{
			min,
			{X: max.X, Y: min.Y},
			max,
			{X: min.X, Y: max.Y},
			min,
		}
	default:
		if len(s.Points) == 0 {
			return nil
		}
		ring := make([]Point, 0, len(s.Points)+1)
		ring = append(ring, s.Points...)
		return append(ring, s.Points[0])
	}
}

// Contains reports whether p falls inside the zone.
func (s Shape) Contains(p Point) bool {
	switch s.Kind {
	case KindRect:
		if len(s.Points) != 2 {
			return false
		}
		min, max := Bounds(s.Points[0], s.Points[1])
		return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
	case KindPolygon:
		if len(s.Points) < 3 {
			return false
		}
		return inPolygon(p, s.Points)
	}
	return false
}
