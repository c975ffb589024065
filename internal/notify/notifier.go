package notify

import (
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackbot/internal/blackjack"
)

// LogNotifier writes every event to a logger as structured fields.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier logging at Info.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithPrefix("table")}
}

// Notify implements blackjack.Notifier.
func (n *LogNotifier) Notify(ev blackjack.Event) {
	kv := append([]any{"table", ev.TableID()}, Fields(ev)...)
	if ev.EventType() == blackjack.EventTypeRoundAbandoned {
		n.logger.Warn(ev.EventType().String(), kv...)
		return
	}
	n.logger.Info(ev.EventType().String(), kv...)
}

// Fields returns the key/value pairs that describe an event.
func Fields(ev blackjack.Event) []any {
	switch e := ev.(type) {
	case blackjack.RoundOpenedEvent:
		return []any{"round", e.RoundID, "player", e.Player, "hand", e.PlayerHand, "score", e.PlayerScore,
			"dealerUp", e.DealerUpCard, "canSplit", e.CanSplit}
	case blackjack.CardDealtEvent:
		return []any{"player", e.Player, "handIndex", e.HandIndex, "card", e.Card, "score", e.Score}
	case blackjack.BustEvent:
		return []any{"player", e.Player, "handIndex", e.HandIndex, "score", e.Score}
	case blackjack.HandSplitEvent:
		return []any{"player", e.Player, "hand1", e.Hand1, "hand2", e.Hand2}
	case blackjack.HandStoodEvent:
		return []any{"player", e.Player, "handIndex", e.HandIndex, "score", e.Score}
	case blackjack.HandSwitchEvent:
		return []any{"player", e.Player, "handIndex", e.HandIndex, "score", e.Score}
	case blackjack.DealerRevealEvent:
		return []any{"hand", e.Hand, "score", e.Score}
	case blackjack.DealerHitEvent:
		return []any{"card", e.Card, "score", e.Score}
	case blackjack.RoundResolvedEvent:
		kv := []any{"round", e.RoundID, "player", e.Player, "dealerScore", e.DealerScore}
		for _, r := range e.Results {
			kv = append(kv, fmt.Sprintf("hand%d", r.HandIndex), r.Outcome.Kind.String())
		}
		return kv
	case blackjack.RoundAbandonedEvent:
		return []any{"round", e.RoundID, "player", e.Player, "timeout", e.Timeout}
	}
	return nil
}

// ChannelNotifier forwards events to a buffered channel. Events are dropped
// rather than blocking the engine when the reader falls behind.
type ChannelNotifier struct {
	events  chan blackjack.Event
	dropped atomic.Int64
}

// NewChannelNotifier creates a notifier with the given buffer size.
func NewChannelNotifier(size int) *ChannelNotifier {
	return &ChannelNotifier{events: make(chan blackjack.Event, size)}
}

// Notify implements blackjack.Notifier.
func (n *ChannelNotifier) Notify(ev blackjack.Event) {
	select {
	case n.events <- ev:
	default:
		n.dropped.Add(1)
	}
}

// Events returns the receive side of the channel.
func (n *ChannelNotifier) Events() <-chan blackjack.Event {
	return n.events
}

// Dropped returns how many events did not fit in the buffer.
func (n *ChannelNotifier) Dropped() int64 {
	return n.dropped.Load()
}

// Multi fans events out to several notifiers in order.
type Multi []blackjack.Notifier

// Notify implements blackjack.Notifier.
func (m Multi) Notify(ev blackjack.Event) {
	for _, n := range m {
		n.Notify(ev)
	}
}
