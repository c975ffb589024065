package main

import (
	"io"
	"os"
	"time"

	"github.com/lox/blackjackbot/internal/blackjack"
	"github.com/lox/blackjackbot/internal/fileutil"
	"github.com/lox/blackjackbot/internal/notify"
	"github.com/lox/blackjackbot/internal/randutil"
	"github.com/lox/blackjackbot/internal/simulator"
)

// SimCmd plays automated rounds and reports the results.
type SimCmd struct {
	Config  string   `kong:"default='blackjack.hcl',type='path',help='HCL config file (missing file uses defaults)'"`
	Rounds  int      `kong:"short='n',default='1000',help='Rounds to play per table'"`
	Tables  []string `kong:"help='Tables to simulate (defaults to the configured tables)'"`
	Policy  string   `kong:"default='default',enum='default,stand,mimic,rand',help='Player policy: default (split 8s and aces, hit below 17), stand, mimic, rand'"`
	Seed    *int64   `kong:"help='Deterministic RNG seed (optional)'"`
	Output  string   `kong:"short='o',type='path',help='Write a JSON report to this file'"`
	Debug   bool     `kong:"help='Enable debug logging'"`
	Verbose bool     `kong:"help='Log every table event'"`

	Out io.Writer `kong:"-"`
}

func (c *SimCmd) Run() error {
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, logLevel(cfg, c.Debug))

	tables := c.Tables
	if len(tables) == 0 {
		tables = cfg.TableNames()
	}
	_, seed := randutil.FromFlag(c.Seed)

	ctx, stop := signalContext(logger)
	defer stop()

	var events blackjack.Notifier
	if c.Verbose {
		events = notify.NewLogNotifier(logger)
	}

	logger.Info("Starting simulation", "rounds", c.Rounds, "tables", len(tables), "policy", c.Policy, "seed", seed)
	start := time.Now()
	res, err := simulator.New(simulator.Config{
		Rounds:   c.Rounds,
		Tables:   tables,
		Policy:   c.Policy,
		Seed:     seed,
		Logger:   logger,
		Notifier: events,
	}).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Simulation complete", "hands", res.Total.Hands, "duration", time.Since(start))

	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	simulator.PrintSummary(out, res)

	if c.Output != "" {
		if err := fileutil.WriteJSONAtomic(c.Output, res.Report()); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Output)
	}
	return nil
}
