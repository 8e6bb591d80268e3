package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jaminalder/voronoi-territory/internal/domain"
	"github.com/jaminalder/voronoi-territory/internal/sim"
)

// SimulateCmd plays random games and prints a summary.
type SimulateCmd struct {
	Games   int     `default:"100" help:"Number of games to play"`
	Seed    *uint64 `help:"Deterministic RNG seed (optional)"`
	Workers int     `help:"Parallel games (default: number of CPUs)"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle = lipgloss.NewStyle().Width(10)
	colorOf    = map[domain.Player]lipgloss.Color{domain.Green: lipgloss.Color("2"), domain.Red: lipgloss.Color("1")}
)

func (c *SimulateCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger()

	var seed uint64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = uint64(time.Now().UnixNano())
		logger.Info("Using random seed", "seed", seed)
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	rules := cfg.Rules()
	start := time.Now()
	tally, err := sim.Runner{Rules: rules, Seed: seed, Workers: workers, Logger: logger}.Run(ctx, c.Games)
	if err != nil {
		return err
	}
	logger.Debug("simulation finished", "games", tally.Games, "elapsed", time.Since(start))

	fmt.Fprintln(os.Stdout, titleStyle.Render(fmt.Sprintf("%d games", tally.Games)))
	for _, p := range domain.Players {
		style := labelStyle.Foreground(colorOf[p])
		fmt.Fprintf(os.Stdout, "%s wins %-5d mean share %.2f%%\n",
			style.Render(rules.Players[p].Label), tally.Wins[p], tally.MeanPercent[p])
	}
	fmt.Fprintf(os.Stdout, "%s %d\n", labelStyle.Render("Draws"), tally.Draws)
	if tally.Stalled > 0 {
		fmt.Fprintf(os.Stdout, "%s %d\n", labelStyle.Render("Stalled"), tally.Stalled)
	}
	return nil
}
