package blackjack

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjackbot/internal/deck"
)

// Timing holds the engine's durations.
type Timing struct {
	// ActionTimeout is how long the player may take to act.
	ActionTimeout time.Duration
	// RestartDelay paces the next round after a normal resolution.
	RestartDelay time.Duration
	// TimeoutRestartDelay paces the next round after an abandoned one.
	TimeoutRestartDelay time.Duration
}

// DefaultTiming returns 30s to act, 10s between rounds and 8s after a timeout.
func DefaultTiming() Timing {
	return Timing{
		ActionTimeout:       30 * time.Second,
		RestartDelay:        10 * time.Second,
		TimeoutRestartDelay: 8 * time.Second,
	}
}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithClock sets the clock used for action deadlines.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithScheduler sets the scheduler for timeout and next-round callbacks.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithNotifier sets the event sink.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTiming overrides DefaultTiming.
func WithTiming(t Timing) Option {
	return func(e *Engine) { e.timing = t }
}

// WithDeckFactory sets how each round's shoe is built. This is the only
// source of randomness in the engine.
func WithDeckFactory(f func() *deck.Deck) Option {
	return func(e *Engine) { e.newDeck = f }
}

// WithRoundIDs sets the round identifier generator.
func WithRoundIDs(f func() string) Option {
	return func(e *Engine) { e.newRoundID = f }
}
