package detection

import "image"

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// BoundsFromRect converts an image.Rectangle.
func BoundsFromRect(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect converts b to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func (b Bounds) Width() int  { return b.X2 - b.X1 }
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Area is zero for empty or inverted boxes.
func (b Bounds) Area() int {
	if b.Empty() {
		return 0
	}
	return b.Width() * b.Height()
}

// Empty reports whether b contains no pixels.
func (b Bounds) Empty() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1
}

// Center returns the box centroid.
func (b Bounds) Center() (x, y float64) {
	return float64(b.X1+b.X2) / 2, float64(b.Y1+b.Y2) / 2
}

// CenterY returns the vertical centre.
func (b Bounds) CenterY() float64 {
	return float64(b.Y1+b.Y2) / 2
}

// Union returns the smallest box containing both a and b.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Overlaps reports whether the boxes share any pixel.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.X1 < o.X2 && b.X2 > o.X1 && b.Y1 < o.Y2 && b.Y2 > o.Y1
}

// Clamp restricts b to r.
func (b Bounds) Clamp(r image.Rectangle) Bounds {
	return BoundsFromRect(b.Rect().Intersect(r))
}

// verticalOverlap returns the number of rows shared by a and b, or a
// negative gap when they do not overlap.
func verticalOverlap(a, b Bounds) int {
	return min(a.Y2, b.Y2) - max(a.Y1, b.Y1)
}

func horizontalOverlap(a, b Bounds) int {
	return min(a.X2, b.X2) - max(a.X1, b.X1)
}

// horizontalGap is the empty space between a and b along X, zero when
// their extents touch or overlap.
func horizontalGap(a, b Bounds) int {
	return max(0, b.X1-a.X2, a.X1-b.X2)
}
