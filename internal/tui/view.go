package tui

import (
	"fmt"
	"strings"

	"github.com/lox/blackjackbot/internal/blackjack"
	"github.com/lox/blackjackbot/internal/deck"
	"github.com/lox/blackjackbot/internal/notify"
)

// tableView is the sidebar's picture of the current round, rebuilt from events.
type tableView struct {
	roundID  string
	player   string
	dealerUp deck.Card
	dealer   blackjack.Hand // empty until revealed
	dealerSc int
	hands    [2]blackjack.Hand
	scores   [2]int
	split    bool
	active   int
	results  []blackjack.HandResult
	phase    string
}

func (v *tableView) apply(ev blackjack.Event) {
	switch e := ev.(type) {
	case blackjack.RoundOpenedEvent:
		*v = tableView{
			roundID:  e.RoundID,
			player:   e.Player,
			dealerUp: e.DealerUpCard,
			active:   1,
			phase:    "Waiting for " + e.Player,
		}
		v.hands[0] = e.PlayerHand
		v.scores[0] = e.PlayerScore
	case blackjack.HandSplitEvent:
		v.split = true
		v.hands = [2]blackjack.Hand{e.Hand1, e.Hand2}
		v.scores = [2]int{e.Score1, e.Score2}
	case blackjack.CardDealtEvent:
		if e.HandIndex >= 1 && e.HandIndex <= 2 {
			v.hands[e.HandIndex-1] = e.Hand
			v.scores[e.HandIndex-1] = e.Score
		}
	case blackjack.HandSwitchEvent:
		v.active = 2
	case blackjack.DealerRevealEvent:
		v.dealer, v.dealerSc = e.Hand, e.Score
		v.phase = "Dealer playing"
	case blackjack.DealerHitEvent:
		v.dealer, v.dealerSc = e.Hand, e.Score
	case blackjack.RoundResolvedEvent:
		v.dealer, v.dealerSc = e.DealerHand, e.DealerScore
		v.results = e.Results
		v.phase = "Round over"
	case blackjack.RoundAbandonedEvent:
		v.phase = "Timed out"
	case blackjack.RoundReadyEvent:
		v.phase = "Ready: type !blackjack"
	}
}

func (v *tableView) render(f *notify.Formatter, tableID string) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" " + tableID + " "))
	b.WriteString("\n\n")

	if v.player == "" {
		b.WriteString(InfoStyle.Render("No round yet"))
		return b.String()
	}

	fmt.Fprintf(&b, "Player: %s\n", v.player)
	if len(v.dealer) > 0 {
		fmt.Fprintf(&b, "Dealer: %s (%d)\n", f.Hand(v.dealer, false), v.dealerSc)
	} else {
		fmt.Fprintf(&b, "Dealer: ?? %s\n", f.Card(v.dealerUp))
	}

	count := 1
	if v.split {
		count = 2
	}
	for i := 0; i < count; i++ {
		marker := "  "
		if v.active == i+1 && v.results == nil {
			marker = "> "
		}
		fmt.Fprintf(&b, "%sHand %d: %s (%d)", marker, i+1, f.Hand(v.hands[i], false), v.scores[i])
		for _, r := range v.results {
			if r.HandIndex == i+1 {
				b.WriteString(" " + resultTag(r.Outcome.Kind))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(WarningStyle.Render(v.phase))
	if v.roundID != "" {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render(v.roundID))
	}
	return b.String()
}

func resultTag(k blackjack.OutcomeKind) string {
	switch {
	case k.PlayerWon():
		return HandInfoStyle.Render("WIN")
	case k.DealerWon():
		return ErrorStyle.Render("LOSS")
	default:
		return WarningStyle.Render("PUSH")
	}
}
