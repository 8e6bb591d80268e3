package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jaminalder/voronoi-territory/internal/app"
	"github.com/jaminalder/voronoi-territory/internal/web"
)

// ServeCmd runs the HTTP adapter.
type ServeCmd struct {
	Addr     string  `help:"Server address (overrides config)"`
	Capacity int     `help:"Seeds per player (overrides config)"`
	Width    float64 `help:"Board width (overrides config)"`
	Height   float64 `help:"Board height (overrides config)"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.Capacity > 0 {
		cfg.Capacity = c.Capacity
	}
	if c.Width > 0 {
		cfg.Width = c.Width
	}
	if c.Height > 0 {
		cfg.Height = c.Height
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Logger()
	rules := cfg.Rules()
	svc := app.NewService(rules, app.WithLogger(logger))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(svc, web.WithLogger(logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting voronoi server",
		"addr", cfg.Addr,
		"width", rules.Bounds.Width(),
		"height", rules.Bounds.Height(),
		"first", rules.First,
		"total_seeds", rules.TotalCapacity())

	ctx, cancel := signalContext(logger)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
