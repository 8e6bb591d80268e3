// Package sim plays random games headlessly to exercise the rules and
// report how often each side wins.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/jaminalder/voronoi-territory/internal/domain"
)

// Result is the outcome of one simulated game.
type Result struct {
	Game    int
	Winner  domain.Player
	Percent map[domain.Player]float64
	// Stalled is set when the side to move ran out of seeds before the
	// closing side did, so the game can never reach its end.
	Stalled bool
}

// Tally aggregates results.
type Tally struct {
	Games   int
	Wins    map[domain.Player]int
	Draws   int
	Stalled int
	// MeanPercent is the average share per side over finished games.
	MeanPercent map[domain.Player]float64
}

// Runner plays games with uniformly random placements.
type Runner struct {
	Rules   domain.Rules
	Seed    uint64
	Workers int
	Logger  *log.Logger
}

// Run plays n games, at most Workers at a time. Game i draws its moves from
// a generator seeded with (Seed, i), so results do not depend on scheduling.
func (r Runner) Run(ctx context.Context, n int) (Tally, error) {
	if n < 0 {
		return Tally{}, fmt.Errorf("negative game count %d", n)
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	results := make([]Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.play(i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			logger.Debug("simulated game", "game", i, "winner", res.Winner, "stalled", res.Stalled)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Tally{}, err
	}
	return Summarize(results), nil
}

func (r Runner) play(i int) (Result, error) {
	rng := rand.New(rand.NewPCG(r.Seed, uint64(i)))
	game := domain.New(r.Rules)
	b := r.Rules.Bounds
	for game.Phase() != domain.PhaseEnded {
		x := b.Min.X + rng.Float64()*b.Width()
		y := b.Min.Y + rng.Float64()*b.Height()
		err := game.Place(x, y)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrCapacityReached):
			return Result{Game: i, Percent: game.Snapshot().Score.Percent, Stalled: true}, nil
		default:
			return Result{}, err
		}
	}
	snap := game.Snapshot()
	return Result{Game: i, Winner: snap.Winner, Percent: snap.Score.Percent}, nil
}

// Summarize folds results into a tally.
func Summarize(results []Result) Tally {
	t := Tally{
		Games:       len(results),
		Wins:        map[domain.Player]int{},
		MeanPercent: map[domain.Player]float64{},
	}
	finished := 0
	for _, res := range results {
		if res.Stalled {
			t.Stalled++
			continue
		}
		finished++
		if res.Winner == domain.NoPlayer {
			t.Draws++
		} else {
			t.Wins[res.Winner]++
		}
		for _, p := range domain.Players {
			t.MeanPercent[p] += res.Percent[p]
		}
	}
	if finished > 0 {
		for _, p := range domain.Players {
			t.MeanPercent[p] /= float64(finished)
		}
	}
	return t
}
