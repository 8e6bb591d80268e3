package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/jaminalder/voronoi-territory/internal/domain"
	"github.com/jaminalder/voronoi-territory/internal/geom"
)

// Config is the resolved runtime configuration.
type Config struct {
	Addr        string  `env:"VORONOI_ADDR"`
	LogLevel    string  `env:"VORONOI_LOG_LEVEL"`
	Width       float64 `env:"VORONOI_WIDTH"`
	Height      float64 `env:"VORONOI_HEIGHT"`
	Capacity    int     `env:"VORONOI_CAPACITY"` // overrides both players when non-zero
	FirstPlayer string  `env:"VORONOI_FIRST_PLAYER"`

	Players map[domain.Player]domain.PlayerInfo
}

// fileConfig mirrors the HCL layout; every block is optional.
type fileConfig struct {
	FirstPlayer *string       `hcl:"first_player,optional"`
	Server      *serverBlock  `hcl:"server,block"`
	Board       *boardBlock   `hcl:"board,block"`
	Players     []playerBlock `hcl:"player,block"`
}

type serverBlock struct {
	Address  *string `hcl:"address,optional"`
	LogLevel *string `hcl:"log_level,optional"`
}

type boardBlock struct {
	Width  *float64 `hcl:"width,optional"`
	Height *float64 `hcl:"height,optional"`
}

type playerBlock struct {
	ID       string  `hcl:"id,label"`
	Label    *string `hcl:"label,optional"`
	Color    *string `hcl:"color,optional"`
	Capacity *int    `hcl:"capacity,optional"`
}

// Default returns the classic configuration.
func Default() *Config {
	rules := domain.DefaultRules()
	players := make(map[domain.Player]domain.PlayerInfo, len(rules.Players))
	for p, info := range rules.Players {
		players[p] = info
	}
	return &Config{
		Addr:        ":8080",
		LogLevel:    "info",
		Width:       rules.Bounds.Width(),
		Height:      rules.Bounds.Height(),
		FirstPlayer: rules.First.String(),
		Players:     players,
	}
}

// Load reads filename (skipped when it does not exist) on top of the
// defaults, then applies environment overrides.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if err := cfg.loadFile(filename); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if fc.FirstPlayer != nil {
		c.FirstPlayer = *fc.FirstPlayer
	}
	if fc.Server != nil {
		if fc.Server.Address != nil {
			c.Addr = *fc.Server.Address
		}
		if fc.Server.LogLevel != nil {
			c.LogLevel = *fc.Server.LogLevel
		}
	}
	if fc.Board != nil {
		if fc.Board.Width != nil {
			c.Width = *fc.Board.Width
		}
		if fc.Board.Height != nil {
			c.Height = *fc.Board.Height
		}
	}
	for _, pb := range fc.Players {
		p, err := domain.ParsePlayer(pb.ID)
		if err != nil {
			return fmt.Errorf("player block: %w", err)
		}
		info := c.Players[p]
		if pb.Label != nil {
			info.Label = *pb.Label
		}
		if pb.Color != nil {
			info.Color = *pb.Color
		}
		if pb.Capacity != nil {
			info.Capacity = *pb.Capacity
		}
		c.Players[p] = info
	}
	return nil
}

// Validate checks the configuration can produce a playable game.
func (c *Config) Validate() error {
	for name, v := range map[string]float64{"width": c.Width, "height": c.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("board %s must be positive, got %v", name, v)
		}
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative, got %d", c.Capacity)
	}
	if _, err := domain.ParsePlayer(c.FirstPlayer); err != nil {
		return fmt.Errorf("first player: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	rules := c.Rules()
	for _, p := range domain.Players {
		if rules.Players[p].Capacity < 1 {
			return fmt.Errorf("player %s: capacity must be at least 1", p)
		}
	}
	return nil
}

// Rules builds the game rules. A non-zero Capacity overrides both sides.
func (c *Config) Rules() domain.Rules {
	first, err := domain.ParsePlayer(c.FirstPlayer)
	if err != nil {
		first = domain.Green
	}
	players := make(map[domain.Player]domain.PlayerInfo, len(c.Players))
	for p, info := range c.Players {
		if c.Capacity > 0 {
			info.Capacity = c.Capacity
		}
		players[p] = info
	}
	return domain.Rules{
		Bounds:  geom.Bounds(c.Width, c.Height),
		First:   first,
		Players: players,
	}
}

// Logger builds a logger at the configured level.
func (c *Config) Logger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
