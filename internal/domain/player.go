package domain

import "fmt"

// Player identifies one of the two sides. The zero value is no player and
// doubles as "draw" when reported as a winner.
type Player uint8

const (
	NoPlayer Player = iota
	Green
	Red
)

// Players lists both sides in a fixed order.
var Players = [2]Player{Green, Red}

// Other returns the opposing side.
func (p Player) Other() Player {
	switch p {
	case Green:
		return Red
	case Red:
		return Green
	default:
		return NoPlayer
	}
}

// Valid reports whether p is one of the two sides.
func (p Player) Valid() bool { return p == Green || p == Red }

func (p Player) String() string {
	switch p {
	case Green:
		return "green"
	case Red:
		return "red"
	default:
		return "none"
	}
}

func (p Player) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// ParsePlayer is the inverse of Player.String for the two sides.
func ParsePlayer(s string) (Player, error) {
	switch s {
	case "green":
		return Green, nil
	case "red":
		return Red, nil
	}
	return NoPlayer, fmt.Errorf("unknown player %q", s)
}

// PlayerInfo is the per-side configuration.
type PlayerInfo struct {
	Label    string
	Color    string
	Capacity int
}

// Phase is the coarse lifecycle of a game.
type Phase uint8

const (
	PhaseEmpty Phase = iota
	PhaseInProgress
	PhaseEnded
)

func (ph Phase) String() string {
	switch ph {
	case PhaseEmpty:
		return "empty"
	case PhaseInProgress:
		return "in_progress"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", uint8(ph))
	}
}

func (ph Phase) MarshalText() ([]byte, error) { return []byte(ph.String()), nil }
