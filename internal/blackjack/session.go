package blackjack

import (
	"time"

	"github.com/lox/blackjackbot/internal/deck"
)

const (
	// DealerStandScore is the score at which the dealer stops drawing.
	DealerStandScore = 17

	// MaxDealerCards bounds dealer auto-play.
	MaxDealerCards = 9
)

// Session is the state of one table's round. It is reused across rounds:
// Start resets it and resolution or abandonment marks it inactive.
type Session struct {
	roundID string
	table   string
	player  string

	active         bool
	awaitingAction bool
	split          bool
	activeHand     int // 1 or 2

	dealer Hand
	hand1  Hand
	hand2  Hand
	deck   *deck.Deck

	lastAction time.Time
	timeout    time.Duration
}

func newSession(table string, timeout time.Duration) *Session {
	return &Session{table: table, activeHand: 1, timeout: timeout}
}

// deal resets the session and deals two cards each to the player and the dealer.
func (s *Session) deal(roundID, player string, d *deck.Deck, now time.Time) {
	s.roundID = roundID
	s.player = player
	s.deck = d
	s.dealer = s.dealer[:0]
	s.hand1 = s.hand1[:0]
	s.hand2 = nil
	s.split = false
	s.activeHand = 1
	s.active = true
	s.awaitingAction = true
	s.lastAction = now

	s.hand1 = append(s.hand1, d.Draw(), d.Draw())
	s.dealer = append(s.dealer, d.Draw(), d.Draw())
}

// RoundID returns the identifier of the current or last round.
func (s *Session) RoundID() string { return s.roundID }

// Table returns the table the session belongs to.
func (s *Session) Table() string { return s.table }

// Player returns the player who started the current or last round.
func (s *Session) Player() string { return s.player }

// Active reports whether a round is in progress.
func (s *Session) Active() bool { return s.active }

// AwaitingAction reports whether a player decision is pending.
func (s *Session) AwaitingAction() bool { return s.awaitingAction }

// IsSplit reports whether the player split this round.
func (s *Session) IsSplit() bool { return s.split }

// ActiveHandIndex returns 1 or 2.
func (s *Session) ActiveHandIndex() int { return s.activeHand }

// DealerHand returns a copy of the dealer's cards.
func (s *Session) DealerHand() Hand { return s.dealer.Clone() }

// PlayerHand returns a copy of player hand 1 or 2.
func (s *Session) PlayerHand(index int) Hand {
	if index == 2 {
		return s.hand2.Clone()
	}
	return s.hand1.Clone()
}

// LastAction returns when the player last acted.
func (s *Session) LastAction() time.Time { return s.lastAction }

// CardsRemaining returns the size of the shoe.
func (s *Session) CardsRemaining() int {
	if s.deck == nil {
		return 0
	}
	return s.deck.CardsRemaining()
}

// IsExpired reports whether more than the action timeout has passed since
// the last action.
func (s *Session) IsExpired(now time.Time) bool {
	return now.Sub(s.lastAction) > s.timeout
}

// SecondsRemaining returns the whole seconds left before the round expires.
func (s *Session) SecondsRemaining(now time.Time) int {
	left := s.timeout - now.Sub(s.lastAction)
	if left < 0 {
		return 0
	}
	return int(left / time.Second)
}

func (s *Session) activeCards() *Hand {
	if s.activeHand == 2 {
		return &s.hand2
	}
	return &s.hand1
}

// splitHand moves the second card of hand 1 into hand 2 and draws one new
// card into each.
func (s *Session) splitHand() bool {
	if !s.awaitingAction || s.split || !CanSplit(s.hand1) {
		return false
	}
	s.hand2 = Hand{s.hand1[1]}
	s.hand1 = s.hand1[:1]
	s.hand1 = append(s.hand1, s.deck.Draw())
	s.hand2 = append(s.hand2, s.deck.Draw())
	s.split = true
	return true
}

// hit draws into the active hand. It reports whether play moved on to
// hand 2 and whether the player's turn is over.
func (s *Session) hit() (card deck.Card, busted, switched, done bool) {
	hand := s.activeCards()
	card = s.deck.Draw()
	*hand = append(*hand, card)
	if !hand.Busted() {
		return card, false, false, false
	}
	switched, done = s.advance()
	return card, true, switched, done
}

// stand finishes the active hand.
func (s *Session) stand() (switched, done bool) {
	return s.advance()
}

// advance moves from hand 1 to hand 2 after a split, otherwise ends the
// player's turn.
func (s *Session) advance() (switched, done bool) {
	if s.split && s.activeHand == 1 {
		s.activeHand = 2
		return true, false
	}
	s.awaitingAction = false
	return false, true
}

// dealerDraws reports whether the dealer must take another card.
func (s *Session) dealerDraws() bool {
	return Score(s.dealer) < DealerStandScore && len(s.dealer) < MaxDealerCards
}

// resolve compares each played hand with the dealer and closes the round.
func (s *Session) resolve() []HandResult {
	dealerScore := Score(s.dealer)
	results := []HandResult{{
		HandIndex: 1,
		Hand:      s.hand1.Clone(),
		Outcome:   ResolveWinner(Score(s.hand1), dealerScore),
	}}
	if s.split {
		results = append(results, HandResult{
			HandIndex: 2,
			Hand:      s.hand2.Clone(),
			Outcome:   ResolveWinner(Score(s.hand2), dealerScore),
		})
	}
	s.close()
	return results
}

func (s *Session) close() {
	s.active = false
	s.awaitingAction = false
}
