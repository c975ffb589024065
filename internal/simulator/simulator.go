// Package simulator plays automated blackjack rounds against the engine.
package simulator

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjackbot/internal/blackjack"
	"github.com/lox/blackjackbot/internal/deck"
	"github.com/lox/blackjackbot/internal/randutil"
	"github.com/lox/blackjackbot/internal/roundid"
	"github.com/lox/blackjackbot/internal/statistics"
)

// maxActions bounds one round; every policy finishes well inside it.
const maxActions = 32

// Config holds configuration for running simulations
type Config struct {
	Rounds   int      // rounds per table
	Tables   []string // each table gets its own engine and seed
	Policy   string
	Player   string
	Seed     int64
	Logger   *log.Logger
	Notifier blackjack.Notifier // optional; called from every table goroutine
}

// Result is the outcome of a simulation run.
type Result struct {
	Seed   int64
	Policy string
	Total  *statistics.Statistics
	Tables map[string]*statistics.Statistics
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Player == "" {
		config.Player = "simbot"
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Simulator{config: config}
}

// Run plays every table concurrently and merges the results.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}
	if len(s.config.Tables) == 0 {
		return nil, fmt.Errorf("no tables to simulate")
	}

	perTable := make([]*statistics.Statistics, len(s.config.Tables))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range s.config.Tables {
		g.Go(func() error {
			stats, err := s.runTable(ctx, i, name)
			if err != nil {
				return err
			}
			perTable[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Seed:   s.config.Seed,
		Policy: s.config.Policy,
		Total:  &statistics.Statistics{},
		Tables: make(map[string]*statistics.Statistics, len(perTable)),
	}
	for i, stats := range perTable {
		res.Tables[s.config.Tables[i]] = stats
		res.Total.Merge(stats)
	}

	if err := res.Total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return res, nil
}

func (s *Simulator) runTable(ctx context.Context, index int, tableID string) (*statistics.Statistics, error) {
	seed := randutil.Derive(s.config.Seed, index)
	rng := randutil.New(seed)
	logger := s.config.Logger.With("table", tableID, "seed", seed)

	policy, err := NewPolicy(s.config.Policy, rng)
	if err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	var notifier blackjack.Notifier = blackjack.NotifierFunc(func(ev blackjack.Event) {
		if e, ok := ev.(blackjack.RoundResolvedEvent); ok {
			results := make([]statistics.HandResult, len(e.Results))
			for i, r := range e.Results {
				results[i] = statistics.FromResult(r, len(e.Results) > 1, seed)
			}
			stats.AddRound(results)
		}
		if s.config.Notifier != nil {
			s.config.Notifier.Notify(ev)
		}
	})

	clock := quartz.NewReal()
	engine := blackjack.NewEngine(
		blackjack.WithClock(clock),
		blackjack.WithNotifier(notifier),
		blackjack.WithLogger(logger),
		blackjack.WithDeckFactory(func() *deck.Deck { return deck.NewShuffledDeck(rng) }),
		blackjack.WithRoundIDs(roundid.NewGenerator(clock, rng).Generate),
	)

	logger.Debug("Simulating table", "rounds", s.config.Rounds, "policy", s.config.Policy)
	for round := 0; round < s.config.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.playRound(engine, policy, tableID); err != nil {
			return nil, fmt.Errorf("table %s round %d (seed %d): %w", tableID, round+1, seed, err)
		}
	}
	return stats, nil
}

func (s *Simulator) playRound(engine *blackjack.Engine, policy Policy, tableID string) error {
	player := s.config.Player
	opened, err := engine.Start(player, tableID)
	if err != nil {
		return err
	}

	for range maxActions {
		sess := engine.Session(tableID)
		if sess == nil || !sess.Active() {
			return nil
		}
		idx := sess.ActiveHandIndex()
		hand := sess.PlayerHand(idx)
		sit := Situation{
			Hand:      hand,
			Score:     hand.Score(),
			HandIndex: idx,
			Split:     sess.IsSplit(),
			DealerUp:  opened.DealerUpCard,
			CanSplit:  !sess.IsSplit() && hand.CanSplit(),
		}

		switch policy.Decide(sit) {
		case Split:
			_, err = engine.Split(tableID, player)
		case Hit:
			_, err = engine.Hit(tableID, player)
		default:
			_, err = engine.Stand(tableID, player)
		}
		if err != nil {
			return err
		}
	}
	return fmt.Errorf("round did not finish after %d actions", maxActions)
}

// PrintSummary writes a human readable report of res to w.
func PrintSummary(w io.Writer, res *Result) {
	stats := res.Total
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS (%s policy, seed %d) ===\n", res.Policy, res.Seed)
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)
	fmt.Fprintf(w, "Hands played: %d (%d from splits)\n", stats.Hands, stats.SplitHands)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f units/hand\n", stats.Mean())
	fmt.Fprintf(w, "Std Dev: %.4f units\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f units\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] units/hand\n", low, high)
	fmt.Fprintf(w, "Win rate: %.1f%%\n", stats.WinRate()*100)

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	fmt.Fprintf(w, "Wins: %d  Losses: %d  Pushes: %d\n", stats.Wins, stats.Losses, stats.Pushes)
	fmt.Fprintf(w, "Player busts: %d  Dealer busts: %d\n", stats.PlayerBusts, stats.DealerBusts)
	if stats.SplitHands > 0 {
		fmt.Fprintf(w, "Split hands: %.3f units/hand\n", stats.SplitNet/float64(stats.SplitHands))
	}

	if len(res.Tables) > 1 {
		fmt.Fprintf(w, "\n=== TABLES ===\n")
		names := make([]string, 0, len(res.Tables))
		for name := range res.Tables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t := res.Tables[name]
			fmt.Fprintf(w, "%s: %d hands, %.3f units/hand\n", name, t.Hands, t.Mean())
		}
	}
}

// Report is the JSON form of a Result.
type Report struct {
	Seed   int64                         `json:"seed"`
	Policy string                        `json:"policy"`
	Total  statistics.Summary            `json:"total"`
	Tables map[string]statistics.Summary `json:"tables"`
}

// Report converts the result for serialisation.
func (r *Result) Report() Report {
	rep := Report{
		Seed:   r.Seed,
		Policy: r.Policy,
		Total:  r.Total.Summary(),
		Tables: make(map[string]statistics.Summary, len(r.Tables)),
	}
	for name, t := range r.Tables {
		rep.Tables[name] = t.Summary()
	}
	return rep
}
