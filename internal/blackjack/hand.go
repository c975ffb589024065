package blackjack

import (
	"strings"

	"github.com/lox/blackjackbot/internal/deck"
)

// BustLimit is the highest score a hand can hold without busting.
const BustLimit = 21

// Hand is an ordered set of cards held by the player or the dealer.
type Hand []deck.Card

// Score returns the blackjack value of the hand. See Score.
func (h Hand) Score() int {
	return Score(h)
}

// Busted reports whether the hand scores over 21.
func (h Hand) Busted() bool {
	return Score(h) > BustLimit
}

// CanSplit reports whether the hand may be split. See CanSplit.
func (h Hand) CanSplit() bool {
	return CanSplit(h)
}

// Clone returns a copy that does not share storage with h.
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// String renders the hand as space separated cards.
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Score counts every ace as 1, then promotes aces to 11 one at a time while
// the total stays at or under 21. Promotion is greedy per ace and stops at the
// first ace that would bust; this is kept as is for compatibility even though
// it is not score-maximizing for every hand with three or more aces.
func Score(hand Hand) int {
	score, aces := 0, 0
	for _, c := range hand {
		if c.IsAce() {
			aces++
		}
		score += c.Rank.Points()
	}
	for i := 0; i < aces; i++ {
		if score+10 > BustLimit {
			break
		}
		score += 10
	}
	return score
}

// CanSplit is true when the hand holds exactly two cards of the same rank.
// Ranks must match literally: a 10 and a Jack do not split even though both
// score 10.
func CanSplit(hand Hand) bool {
	return len(hand) == 2 && hand[0].Rank == hand[1].Rank
}
