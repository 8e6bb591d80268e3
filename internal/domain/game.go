package domain

import (
	"errors"

	"github.com/jaminalder/voronoi-territory/internal/geom"
)

// Errors returned by rejected placements. A rejected placement leaves the
// game untouched.
var (
	ErrOutOfBounds     = errors.New("out of bounds")
	ErrCapacityReached = errors.New("no seeds left for player")
	ErrGameOver        = errors.New("game over")
)

// Rules fixes the board and the two sides for a game.
type Rules struct {
	Bounds  geom.Rect
	First   Player
	Players map[Player]PlayerInfo
}

// DefaultRules is the classic setup: 500x500 board, ten seeds each, green
// moves first.
func DefaultRules() Rules {
	return Rules{
		Bounds: geom.Bounds(500, 500),
		First:  Green,
		Players: map[Player]PlayerInfo{
			Green: {Label: "Green", Color: "hsl(120, 60%, 70%)", Capacity: 10},
			Red:   {Label: "Red", Color: "hsl(0, 60%, 70%)", Capacity: 10},
		},
	}
}

// Closer is the side whose last seed ends the game: the one moving second.
func (r Rules) Closer() Player { return r.First.Other() }

// TotalCapacity is the number of seeds both sides may place together.
func (r Rules) TotalCapacity() int {
	n := 0
	for _, p := range Players {
		n += r.Players[p].Capacity
	}
	return n
}

// Seed is a placed site. Index is its position in placement order.
type Seed struct {
	Index int        `json:"index"`
	At    geom.Point `json:"at"`
	Owner Player     `json:"owner"`
}

// Game holds the state of one match. The zero value is not usable; call New.
type Game struct {
	rules  Rules
	seeds  []Seed
	turn   Player
	placed map[Player]int
	phase  Phase
	winner Player

	cells geom.Subdivision
	score Score
}

// New returns an empty game for rules.
func New(rules Rules) *Game {
	g := &Game{rules: rules}
	g.Reset()
	return g
}

// Rules returns the rules the game was created with.
func (g *Game) Rules() Rules { return g.rules }

// Reset discards every seed and returns to the empty phase.
func (g *Game) Reset() {
	g.seeds = nil
	g.turn = g.rules.First
	g.placed = map[Player]int{Green: 0, Red: 0}
	g.phase = PhaseEmpty
	g.winner = NoPlayer
	g.recompute()
}

// Place puts a seed for the side to move at (x, y).
func (g *Game) Place(x, y float64) error {
	if g.phase == PhaseEnded {
		return ErrGameOver
	}
	at := geom.Pt(x, y)
	if !g.rules.Bounds.Contains(at) {
		return ErrOutOfBounds
	}
	p := g.turn
	if g.placed[p] >= g.rules.Players[p].Capacity {
		return ErrCapacityReached
	}

	g.seeds = append(g.seeds, Seed{Index: len(g.seeds), At: at, Owner: p})
	g.placed[p]++
	g.turn = p.Other()
	g.phase = PhaseInProgress
	g.recompute()

	closer := g.rules.Closer()
	if p == closer && g.placed[closer] == g.rules.Players[closer].Capacity {
		g.end()
	}
	return nil
}

// end freezes the game and settles the winner on unrounded shares.
func (g *Game) end() {
	g.phase = PhaseEnded
	g.winner = g.score.Leader()
}

func (g *Game) recompute() {
	pts := make([]geom.Point, len(g.seeds))
	for i, s := range g.seeds {
		pts[i] = s.At
	}
	g.cells = geom.Subdivide(pts, g.rules.Bounds)
	g.score = Accumulate(g.cells, func(i int) Player { return g.seeds[i].Owner }, g.rules.Bounds)
}

func (g *Game) Phase() Phase           { return g.phase }
func (g *Game) Turn() Player           { return g.turn }
func (g *Game) Placed(p Player) int    { return g.placed[p] }
func (g *Game) MovesRemaining() int    { return g.rules.TotalCapacity() - len(g.seeds) }
func (g *Game) Winner() (Player, bool) { return g.winner, g.phase == PhaseEnded }

// Snapshot is a read-only copy of a game for presentation.
type Snapshot struct {
	Seeds          []Seed           `json:"seeds"`
	Cells          geom.Subdivision `json:"cells"`
	Score          Score            `json:"score"`
	Phase          Phase            `json:"phase"`
	Turn           Player           `json:"turn"`
	MovesRemaining int              `json:"moves_remaining"`
	Winner         Player           `json:"winner"`
	Bounds         geom.Rect        `json:"bounds"`
}

// Snapshot copies the current state. Turn is NoPlayer once the game has
// ended; Winner is only meaningful when Phase is PhaseEnded, where NoPlayer
// means a draw.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Seeds:          make([]Seed, len(g.seeds)),
		Cells:          make(geom.Subdivision, len(g.cells)),
		Score:          g.score.clone(),
		Phase:          g.phase,
		Turn:           g.turn,
		MovesRemaining: g.MovesRemaining(),
		Winner:         g.winner,
		Bounds:         g.rules.Bounds,
	}
	copy(s.Seeds, g.seeds)
	for i, c := range g.cells {
		s.Cells[i] = c.Clone()
	}
	if g.phase == PhaseEnded {
		s.Turn = NoPlayer
	}
	return s
}

// OwnerAt reports which side holds the cell containing pt, using the same
// lowest-index rule as cell boundaries. It returns NoPlayer on an empty board.
func (s Snapshot) OwnerAt(pt geom.Point) Player {
	pts := make([]geom.Point, len(s.Seeds))
	for i, seed := range s.Seeds {
		pts[i] = seed.At
	}
	if i := geom.Nearest(pts, pt); i >= 0 {
		return s.Seeds[i].Owner
	}
	return NoPlayer
}
