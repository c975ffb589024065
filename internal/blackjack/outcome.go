package blackjack

import "fmt"

// OutcomeKind classifies how a single player hand finished against the dealer.
type OutcomeKind int

const (
	DealerWinsByPlayerBust OutcomeKind = iota
	PlayerWinsByDealerBust
	DealerWins
	PlayerWins
	Push
)

// String returns the string representation of the outcome kind
func (k OutcomeKind) String() string {
	switch k {
	case DealerWinsByPlayerBust:
		return "dealer_wins_player_bust"
	case PlayerWinsByDealerBust:
		return "player_wins_dealer_bust"
	case DealerWins:
		return "dealer_wins"
	case PlayerWins:
		return "player_wins"
	case Push:
		return "push"
	default:
		return "unknown"
	}
}

// PlayerWon reports whether the player took the hand.
func (k OutcomeKind) PlayerWon() bool {
	return k == PlayerWins || k == PlayerWinsByDealerBust
}

// DealerWon reports whether the dealer took the hand.
func (k OutcomeKind) DealerWon() bool {
	return k == DealerWins || k == DealerWinsByPlayerBust
}

// Outcome is the resolution of one player hand.
type Outcome struct {
	Kind        OutcomeKind
	PlayerScore int
	DealerScore int
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s (%d vs %d)", o.Kind, o.PlayerScore, o.DealerScore)
}

// ResolveWinner compares one player hand with the dealer. A player bust loses
// even when the dealer also busts.
func ResolveWinner(playerScore, dealerScore int) Outcome {
	o := Outcome{PlayerScore: playerScore, DealerScore: dealerScore}
	switch {
	case playerScore > BustLimit:
		o.Kind = DealerWinsByPlayerBust
	case dealerScore > BustLimit:
		o.Kind = PlayerWinsByDealerBust
	case dealerScore > playerScore:
		o.Kind = DealerWins
	case playerScore > dealerScore:
		o.Kind = PlayerWins
	default:
		o.Kind = Push
	}
	return o
}

// HandResult tags an outcome with the player hand it belongs to.
type HandResult struct {
	HandIndex int
	Hand      Hand
	Outcome   Outcome
}
