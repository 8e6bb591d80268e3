package geom

// Subdivision maps a site index to its cell. An index whose cell is empty
// (a duplicate of a lower-indexed site) holds a nil polygon.
type Subdivision []Polygon

// Subdivide computes the nearest-site subdivision of points clipped to
// bounds. Every call starts from scratch; nothing is cached between calls.
//
// Cell i is the bounds rectangle cut by the closed half-plane nearer to
// points[i] than to points[j], for every j != i. Two sites with identical
// coordinates would otherwise both claim the same region, so the cell goes
// to the lower index and the higher one is left empty.
func Subdivide(points []Point, bounds Rect) Subdivision {
	if len(points) == 0 {
		return Subdivision{}
	}
	cells := make(Subdivision, len(points))
	for i, site := range points {
		cell := bounds.Polygon()
		for j, other := range points {
			if i == j {
				continue
			}
			if other == site {
				if j < i {
					cell = nil
					break
				}
				continue
			}
			// |p-site|^2 <= |p-other|^2  <=>  (other-site).p <= (|other|^2-|site|^2)/2
			n := other.Sub(site)
			c := (other.Dot(other) - site.Dot(site)) / 2
			cell = clip(cell, n, c)
			if cell == nil {
				break
			}
		}
		cells[i] = cell
	}
	return cells
}

// clip keeps the part of pg satisfying n.p <= c (Sutherland-Hodgman against
// a single line). It returns nil when fewer than three vertices survive.
func clip(pg Polygon, n Point, c float64) Polygon {
	out := make(Polygon, 0, len(pg)+1)
	for k, cur := range pg {
		next := pg[(k+1)%len(pg)]
		dc := n.Dot(cur) - c
		dn := n.Dot(next) - c
		if dc <= 0 {
			out = append(out, cur)
		}
		if (dc < 0 && dn > 0) || (dc > 0 && dn < 0) {
			t := dc / (dc - dn)
			out = append(out, cur.Add(next.Sub(cur).Scale(t)))
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// Nearest returns the index of the site closest to p, or -1 when there are
// no sites. Equidistant sites resolve to the lowest index, which is also
// how boundary points are attributed.
func Nearest(points []Point, p Point) int {
	best, bestD := -1, 0.0
	for i, s := range points {
		d := s.Dist2(p)
		if best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
