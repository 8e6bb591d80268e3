package web

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jaminalder/voronoi-territory/internal/app"
	"github.com/jaminalder/voronoi-territory/internal/domain"
	"github.com/jaminalder/voronoi-territory/internal/geom"
)

type cellView struct {
	Points string
	Fill   string
}

type seedView struct {
	X, Y float64
	Fill string
}

type scoreView struct {
	Label   string
	Percent string
	Color   string
}

// boardView is what the board template draws.
type boardView struct {
	ID        string
	Width     float64
	Height    float64
	Cells     []cellView
	Seeds     []seedView
	Scores    []scoreView
	Remaining int
	Turn      string
	Banner    string
	Error     string
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	snap := gs.Game
	v := boardView{
		ID:        gs.ID,
		Width:     snap.Bounds.Width(),
		Height:    snap.Bounds.Height(),
		Remaining: snap.MovesRemaining,
		Error:     errMsg,
	}
	for i, cell := range snap.Cells {
		if cell == nil {
			continue
		}
		v.Cells = append(v.Cells, cellView{
			Points: svgPoints(cell),
			Fill:   gs.Rules.Players[snap.Seeds[i].Owner].Color,
		})
	}
	for _, s := range snap.Seeds {
		v.Seeds = append(v.Seeds, seedView{X: s.At.X, Y: s.At.Y, Fill: markColor(s.Owner)})
	}
	for _, p := range domain.Players {
		v.Scores = append(v.Scores, scoreView{
			Label:   gs.Rules.Players[p].Label,
			Percent: snap.Score.Display(p),
			Color:   markColor(p),
		})
	}
	if snap.Phase != domain.PhaseEnded {
		v.Turn = gs.Rules.Players[snap.Turn].Label
	} else if snap.Winner == domain.NoPlayer {
		v.Banner = "It's a Draw!"
	} else {
		v.Banner = gs.Rules.Players[snap.Winner].Label + " Player Wins!"
	}
	return v
}

func markColor(p domain.Player) string {
	switch p {
	case domain.Green:
		return "darkgreen"
	case domain.Red:
		return "darkred"
	default:
		return "#333"
	}
}

func formatPx(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func svgPoints(pg geom.Polygon) string {
	parts := make([]string, len(pg))
	for i, p := range pg {
		parts[i] = strconv.FormatFloat(p.X, 'f', 2, 64) + "," + strconv.FormatFloat(p.Y, 'f', 2, 64)
	}
	return strings.Join(parts, " ")
}

// stateView is the JSON form of a game.
type stateView struct {
	ID string `json:"id"`
	domain.Snapshot
	Display map[domain.Player]string `json:"display"`
	Result  string                   `json:"result,omitempty"`
}

func newStateView(gs app.GameState) stateView {
	v := stateView{
		ID:       gs.ID,
		Snapshot: gs.Game,
		Display:  make(map[domain.Player]string, len(domain.Players)),
	}
	for _, p := range domain.Players {
		v.Display[p] = gs.Game.Score.Display(p)
	}
	if gs.Game.Phase == domain.PhaseEnded {
		if gs.Game.Winner == domain.NoPlayer {
			v.Result = "draw"
		} else {
			v.Result = gs.Game.Winner.String()
		}
	}
	return v
}

// writeSSEData emits b as one SSE data field, one "data:" line per line.
func writeSSEData(w io.Writer, b []byte) {
	for _, line := range bytes.Split(b, []byte("\n")) {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
