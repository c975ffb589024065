package deck

import (
	rand "math/rand/v2"
)

// Size is the number of cards in a standard deck.
const Size = 52

// Deck is the drawing shoe: a single 52-card deck that refills itself with a
// freshly shuffled deck whenever it runs out, so Draw never fails.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewShuffledDeck creates a full 52-card deck shuffled with rng. A nil rng
// uses a randomly seeded source.
func NewShuffledDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	d := &Deck{cards: make([]Card, 0, Size), rng: rng}
	d.Reset()
	return d
}

// NewStacked creates a deck that deals cards in exactly the given order before
// falling back to shuffled decks from rng. Used to script deals in tests.
func NewStacked(rng *rand.Rand, cards ...Card) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	return &Deck{cards: stacked, rng: rng}
}

// Shuffle applies an unbiased Fisher-Yates permutation to the remaining cards.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card. An empty deck is first replaced
// with a freshly shuffled full deck.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.Reset()
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Reset restores the deck to a full 52-card deck and shuffles it
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	d.Shuffle()
}
