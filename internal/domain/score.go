package domain

import (
	"fmt"

	"github.com/jaminalder/voronoi-territory/internal/geom"
)

// Score is the area held by each side and its share of the board.
// Percent keeps full precision; use Display for presentation.
type Score struct {
	Area    map[Player]float64 `json:"area"`
	Percent map[Player]float64 `json:"percent"`
}

// Accumulate sums cell areas per owner. ownerOf maps a cell index to the
// side that placed its site.
func Accumulate(cells geom.Subdivision, ownerOf func(int) Player, bounds geom.Rect) Score {
	s := Score{
		Area:    make(map[Player]float64, len(Players)),
		Percent: make(map[Player]float64, len(Players)),
	}
	for _, p := range Players {
		s.Area[p] = 0
	}
	for i, cell := range cells {
		if p := ownerOf(i); p.Valid() {
			s.Area[p] += cell.Area()
		}
	}
	total := bounds.Area()
	for _, p := range Players {
		if total > 0 {
			s.Percent[p] = s.Area[p] / total * 100
		} else {
			s.Percent[p] = 0
		}
	}
	return s
}

// Display formats the share of p with two decimals, e.g. "49.87".
func (s Score) Display(p Player) string {
	return fmt.Sprintf("%.2f", s.Percent[p])
}

// Leader compares unrounded shares. NoPlayer means an exact tie.
func (s Score) Leader() Player {
	g, r := s.Percent[Green], s.Percent[Red]
	switch {
	case g > r:
		return Green
	case r > g:
		return Red
	default:
		return NoPlayer
	}
}

func (s Score) clone() Score {
	out := Score{
		Area:    make(map[Player]float64, len(s.Area)),
		Percent: make(map[Player]float64, len(s.Percent)),
	}
	for k, v := range s.Area {
		out.Area[k] = v
	}
	for k, v := range s.Percent {
		out.Percent[k] = v
	}
	return out
}
