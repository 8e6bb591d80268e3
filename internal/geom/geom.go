// Package geom holds the planar primitives used by the game: points, the
// bounding rectangle, polygons and the nearest-site subdivision over them.
package geom

import "math"

// Point is a location on the plane. Y grows downwards, as on screen.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }

// Dist2 is the squared euclidean distance between p and q.
func (p Point) Dist2(q Point) float64 {
	d := p.Sub(q)
	return d.Dot(d)
}

// Finite reports whether neither coordinate is NaN or infinite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned rectangle [Min.X, Max.X] x [Min.Y, Max.Y].
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Bounds returns the rectangle [0,w] x [0,h].
func Bounds(w, h float64) Rect { return Rect{Max: Point{w, h}} }

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Area() float64   { return r.Width() * r.Height() }

// Contains reports whether p lies inside r, edges included. NaN and
// infinite coordinates are never contained.
func (r Rect) Contains(p Point) bool {
	if !p.Finite() {
		return false
	}
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Polygon returns the corners of r in the same winding every cell uses:
// top-left, top-right, bottom-right, bottom-left (clockwise on screen).
func (r Rect) Polygon() Polygon {
	return Polygon{
		r.Min,
		{r.Max.X, r.Min.Y},
		r.Max,
		{r.Min.X, r.Max.Y},
	}
}

// Polygon is a closed ring of vertices; the last vertex connects back to
// the first and is not repeated.
type Polygon []Point

// Area is the unsigned shoelace area. Rings with fewer than three
// vertices have no area.
func (pg Polygon) Area() float64 {
	if len(pg) < 3 {
		return 0
	}
	var sum float64
	for i, p := range pg {
		q := pg[(i+1)%len(pg)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// Clone returns a copy that does not share storage with pg.
func (pg Polygon) Clone() Polygon {
	if pg == nil {
		return nil
	}
	out := make(Polygon, len(pg))
	copy(out, pg)
	return out
}
