package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjackbot/internal/blackjack"
	"github.com/lox/blackjackbot/internal/deck"
	"github.com/lox/blackjackbot/internal/notify"
	"github.com/lox/blackjackbot/internal/randutil"
	"github.com/lox/blackjackbot/internal/roundid"
	"github.com/lox/blackjackbot/internal/scheduler"
	"github.com/lox/blackjackbot/internal/table"
	"github.com/lox/blackjackbot/internal/tui"
)

// PlayCmd runs one table in an interactive terminal.
type PlayCmd struct {
	Config  string `kong:"default='blackjack.hcl',type='path',help='HCL config file (missing file uses defaults)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	Seed    *int64 `kong:"help='Deterministic RNG seed for shuffles (optional)'"`
	Table   string `kong:"help='Table to sit at (defaults to the first configured table)'"`
	Player  string `kong:"default='player',help='Name to play as'"`
	LogFile string `kong:"default='blackjack.log',type='path',help='Log file; the terminal is used by the table'"`
}

func (c *PlayCmd) Run() error {
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}
	tableID := c.Table
	if tableID == "" {
		tableID = cfg.TableNames()[0]
	}

	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	logger := newLogger(logFile, logLevel(cfg, c.Debug))
	rng, seed := randutil.FromFlag(c.Seed)
	logger.Info("Opening table", "table", tableID, "player", c.Player, "seed", seed)

	sigCtx, stop := signalContext(logger)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	clock := quartz.NewReal()
	loop := table.NewLoop()
	sched := scheduler.New(clock, scheduler.WithExecutor(loop.Post), scheduler.WithLogger(logger))
	defer sched.Stop()

	events := notify.NewChannelNotifier(256)
	engine := blackjack.NewEngine(
		blackjack.WithClock(clock),
		blackjack.WithScheduler(sched),
		blackjack.WithNotifier(notify.Multi{events, notify.NewLogNotifier(logger)}),
		blackjack.WithLogger(logger),
		blackjack.WithTiming(cfg.Timing()),
		blackjack.WithDeckFactory(func() *deck.Deck { return deck.NewShuffledDeck(rng) }),
		blackjack.WithRoundIDs(roundid.NewGenerator(clock, rng).Generate),
	)
	dispatcher := table.NewDispatcher(engine, loop, logger)

	model := tui.New(ctx, dispatcher, events.Events(), notify.NewFormatter(os.Stdout), logger,
		tui.Options{Table: tableID, Player: c.Player})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	if dropped := events.Dropped(); dropped > 0 {
		logger.Warn("Table events were dropped", "count", dropped)
	}
	logger.Info("Table closed", "table", tableID)
	return err
}
