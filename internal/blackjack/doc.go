// Package blackjack implements the single-player Blackjack game-state engine.
//
// The Engine keeps one Session per table. A round is opened with Start and
// driven by Hit, Stand and Split until the player's hands are done, at which
// point the dealer plays automatically and every player hand is resolved
// against the dealer.
//
// # Basic Usage
//
//	eng := blackjack.NewEngine(blackjack.WithNotifier(n), blackjack.WithScheduler(s))
//	opened, err := eng.Start("alice", "#casino")
//	res, err := eng.Hit("#casino", "alice")
//	if res.RoundEnded {
//	    // RoundResolved was emitted to the notifier
//	}
//
// # Time
//
// The engine never sleeps or spawns goroutines. Action timeouts and the pause
// before the next round are requested from a Scheduler, which calls back into
// OnActionTimeout and OnRoundRestartReady. Inbound calls also check the
// action deadline themselves, so an expired round is abandoned even if the
// timeout callback has not run yet.
//
// # Concurrency
//
// Engine is not safe for concurrent use. Callers serialize all calls,
// including scheduler callbacks, onto one goroutine (see internal/table).
//
// # Deterministic Testing
//
// Shuffling is isolated behind the deck factory:
//
//	eng := blackjack.NewEngine(blackjack.WithDeckFactory(func() *deck.Deck {
//	    return deck.NewStacked(nil, deck.MustParseCards("10h 7c 6d 5s")...)
//	}))
package blackjack
