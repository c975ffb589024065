package blackjack

import (
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjackbot/internal/deck"
	"github.com/lox/blackjackbot/internal/randutil"
	"github.com/lox/blackjackbot/internal/scheduler"
)

const (
	testTable  = "#casino"
	testPlayer = "alice"
)

// recorder collects every event the engine emits.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func (r *recorder) last(et EventType) Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].EventType() == et {
			return r.events[i]
		}
	}
	return nil
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type testRig struct {
	engine *Engine
	events *recorder
	clock  *quartz.Mock
	sched  *scheduler.Scheduler
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newRig builds an engine whose every round is dealt from cards in order:
// player, player, dealer hole card, dealer up card, then draws.
func newRig(t *testing.T, cards string) *testRig {
	t.Helper()
	clock := quartz.NewMock(t)
	events := &recorder{}
	sched := scheduler.New(clock, scheduler.WithLogger(quietLogger()))
	stack := deck.MustParseCards(cards)

	eng := NewEngine(
		WithClock(clock),
		WithScheduler(sched),
		WithNotifier(events),
		WithLogger(quietLogger()),
		WithDeckFactory(func() *deck.Deck {
			return deck.NewStacked(randutil.New(1), stack...)
		}),
		WithRoundIDs(func() string { return "round-1" }),
	)
	return &testRig{engine: eng, events: events, clock: clock, sched: sched}
}
