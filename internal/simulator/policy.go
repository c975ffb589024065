package simulator

import (
	"fmt"
	"math/rand/v2"

	"github.com/lox/blackjackbot/internal/blackjack"
	"github.com/lox/blackjackbot/internal/deck"
)

// Action is a player decision.
type Action int

const (
	Stand Action = iota
	Hit
	Split
)

func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Split:
		return "split"
	default:
		return "stand"
	}
}

// Situation is what a policy sees when asked to act.
type Situation struct {
	Hand      blackjack.Hand
	Score     int
	HandIndex int
	Split     bool
	DealerUp  deck.Card
	CanSplit  bool
}

// Policy decides the next action for the simulated player.
type Policy interface {
	Decide(Situation) Action
}

// PolicyNames lists the policies NewPolicy accepts.
var PolicyNames = []string{"default", "stand", "mimic", "rand"}

// NewPolicy creates a policy by name.
func NewPolicy(name string, rng *rand.Rand) (Policy, error) {
	switch name {
	case "default", "":
		return SplitHitPolicy{}, nil
	case "stand":
		return StandPolicy{}, nil
	case "mimic":
		return MimicDealerPolicy{}, nil
	case "rand":
		return &RandPolicy{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

// SplitHitPolicy splits eights and aces and hits below 17.
type SplitHitPolicy struct{}

func (SplitHitPolicy) Decide(s Situation) Action {
	if s.CanSplit {
		if r := s.Hand[0].Rank; r == deck.Eight || r == deck.Ace {
			return Split
		}
	}
	if s.Score < blackjack.DealerStandScore {
		return Hit
	}
	return Stand
}

// StandPolicy never draws.
type StandPolicy struct{}

func (StandPolicy) Decide(Situation) Action { return Stand }

// MimicDealerPolicy plays the dealer's rule and never splits.
type MimicDealerPolicy struct{}

func (MimicDealerPolicy) Decide(s Situation) Action {
	if s.Score < blackjack.DealerStandScore {
		return Hit
	}
	return Stand
}

// RandPolicy picks uniformly among the legal actions and always stands on 21.
type RandPolicy struct {
	rng *rand.Rand
}

func (p *RandPolicy) Decide(s Situation) Action {
	if s.Score >= blackjack.BustLimit {
		return Stand
	}
	n := 2
	if s.CanSplit {
		n = 3
	}
	return Action(p.rng.IntN(n))
}
