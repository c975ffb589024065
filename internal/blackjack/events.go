package blackjack

import (
	"time"

	"github.com/lox/blackjackbot/internal/deck"
)

// EventType represents an engine event type with type safety
type EventType string

// EventType constants for engine events
const (
	EventTypeRoundOpened    EventType = "round_opened"
	EventTypeCardDealt      EventType = "card_dealt"
	EventTypeHandSplit      EventType = "hand_split"
	EventTypeHandStood      EventType = "hand_stood"
	EventTypeBust           EventType = "bust"
	EventTypeHandSwitch     EventType = "hand_switch"
	EventTypeDealerReveal   EventType = "dealer_reveal"
	EventTypeDealerHit      EventType = "dealer_hit"
	EventTypeRoundResolved  EventType = "round_resolved"
	EventTypeRoundAbandoned EventType = "round_abandoned"
	EventTypeRoundReady     EventType = "round_ready"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything the engine reports to the notifier. Events carry data
// only; wording and decoration belong to the notifier.
type Event interface {
	EventType() EventType
	TableID() string
	Timestamp() time.Time
}

// Meta holds the fields shared by every event.
type Meta struct {
	Table string
	At    time.Time
}

func (m Meta) TableID() string      { return m.Table }
func (m Meta) Timestamp() time.Time { return m.At }

// RoundOpenedEvent is published when Start deals the opening hands.
type RoundOpenedEvent struct {
	Meta
	RoundID      string
	Player       string
	PlayerHand   Hand
	PlayerScore  int
	DealerUpCard deck.Card
	CanSplit     bool
}

func (e RoundOpenedEvent) EventType() EventType { return EventTypeRoundOpened }

// CardDealtEvent is published when the player hits.
type CardDealtEvent struct {
	Meta
	Player    string
	HandIndex int
	Split     bool
	Card      deck.Card
	Hand      Hand
	Score     int
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }

// HandSplitEvent is published after a pair is split into two hands.
type HandSplitEvent struct {
	Meta
	Player string
	Hand1  Hand
	Hand2  Hand
	Score1 int
	Score2 int
}

func (e HandSplitEvent) EventType() EventType { return EventTypeHandSplit }

// HandStoodEvent is published when the player stands on a hand.
type HandStoodEvent struct {
	Meta
	Player    string
	HandIndex int
	Split     bool
	Hand      Hand
	Score     int
}

func (e HandStoodEvent) EventType() EventType { return EventTypeHandStood }

// BustEvent is published when a player hand goes over 21.
type BustEvent struct {
	Meta
	Player    string
	HandIndex int
	Split     bool
	Score     int
}

func (e BustEvent) EventType() EventType { return EventTypeBust }

// HandSwitchEvent is published when play moves from hand 1 to hand 2.
type HandSwitchEvent struct {
	Meta
	Player    string
	HandIndex int
	Hand      Hand
	Score     int
}

func (e HandSwitchEvent) EventType() EventType { return EventTypeHandSwitch }

// DealerRevealEvent is published when the dealer turns over the hole card.
type DealerRevealEvent struct {
	Meta
	Hand  Hand
	Score int
}

func (e DealerRevealEvent) EventType() EventType { return EventTypeDealerReveal }

// DealerHitEvent is published for every card the dealer draws.
type DealerHitEvent struct {
	Meta
	Card  deck.Card
	Hand  Hand
	Score int
}

func (e DealerHitEvent) EventType() EventType { return EventTypeDealerHit }

// RoundResolvedEvent is published once the dealer is done, with one result
// per player hand.
type RoundResolvedEvent struct {
	Meta
	RoundID     string
	Player      string
	DealerHand  Hand
	DealerScore int
	Results     []HandResult
}

func (e RoundResolvedEvent) EventType() EventType { return EventTypeRoundResolved }

// RoundAbandonedEvent is published when a round passes its action deadline.
// It is a cancellation, not a loss.
type RoundAbandonedEvent struct {
	Meta
	RoundID string
	Player  string
	Timeout time.Duration
}

func (e RoundAbandonedEvent) EventType() EventType { return EventTypeRoundAbandoned }

// RoundReadyEvent is published when the table can take a new round.
type RoundReadyEvent struct {
	Meta
}

func (e RoundReadyEvent) EventType() EventType { return EventTypeRoundReady }
