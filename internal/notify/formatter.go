// Package notify turns engine events into table messages and log lines.
package notify

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/blackjackbot/internal/blackjack"
	"github.com/lox/blackjackbot/internal/deck"
)

// Formatter renders events as chat lines.
type Formatter struct {
	styled bool
	st     styles
}

// NewFormatter creates a formatter for out. Colour is used only when out's
// terminal supports it.
func NewFormatter(out io.Writer) *Formatter {
	r := lipgloss.NewRenderer(out)
	return &Formatter{
		styled: r.ColorProfile() != termenv.Ascii,
		st:     newStyles(r),
	}
}

// NewPlainFormatter creates a formatter that never emits escape codes.
func NewPlainFormatter() *Formatter {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return &Formatter{st: newStyles(r)}
}

func (f *Formatter) paint(s lipgloss.Style, text string) string {
	if !f.styled {
		return text
	}
	return s.Render(text)
}

// Card renders one card, red suits in red.
func (f *Formatter) Card(c deck.Card) string {
	if c.IsRed() {
		return f.paint(f.st.redCard, c.String())
	}
	return f.paint(f.st.blackCard, c.String())
}

// Hand renders cards separated by spaces. With hideFirst the hole card is
// shown as "??".
func (f *Formatter) Hand(h blackjack.Hand, hideFirst bool) string {
	parts := make([]string, len(h))
	for i, c := range h {
		if hideFirst && i == 0 {
			parts[i] = f.paint(f.st.hidden, "??")
			continue
		}
		parts[i] = f.Card(c)
	}
	return strings.Join(parts, " ")
}

func handTag(split bool, index int) string {
	if !split {
		return ""
	}
	return fmt.Sprintf(" (hand %d/2)", index)
}

// Format returns the chat lines for an event.
func (f *Formatter) Format(ev blackjack.Event) []string {
	switch e := ev.(type) {
	case blackjack.RoundOpenedEvent:
		dealer := f.paint(f.st.hidden, "??") + " " + f.Card(e.DealerUpCard)
		lines := []string{
			fmt.Sprintf("🎲 %s starts Blackjack!", e.Player),
			fmt.Sprintf("Your cards: %s (score %d)", f.Hand(e.PlayerHand, false), e.PlayerScore),
			fmt.Sprintf("Dealer cards: %s", dealer),
		}
		if e.CanSplit {
			lines = append(lines,
				"💎 You can !split your pair!",
				"Type !hit, !stand or !split")
		} else {
			lines = append(lines, "Type !hit or !stand")
		}
		return lines

	case blackjack.CardDealtEvent:
		return []string{
			fmt.Sprintf("⬇️ %s hits%s, gets %s", e.Player, handTag(e.Split, e.HandIndex), f.Card(e.Card)),
			fmt.Sprintf("Hand now: %s (score %d)", f.Hand(e.Hand, false), e.Score),
		}

	case blackjack.BustEvent:
		return []string{f.paint(f.st.loss, fmt.Sprintf("💥 %s busts!%s", e.Player, handTag(e.Split, e.HandIndex)))}

	case blackjack.HandSplitEvent:
		return []string{
			fmt.Sprintf("💎 %s splits!", e.Player),
			fmt.Sprintf("Hand 1: %s (score %d)", f.Hand(e.Hand1, false), e.Score1),
			fmt.Sprintf("Hand 2: %s (score %d)", f.Hand(e.Hand2, false), e.Score2),
			"Play hand 1 first: !hit or !stand",
		}

	case blackjack.HandStoodEvent:
		return []string{fmt.Sprintf("✅ %s stands: %s (score %d)%s",
			e.Player, f.Hand(e.Hand, false), e.Score, handTag(e.Split, e.HandIndex))}

	case blackjack.HandSwitchEvent:
		return []string{
			fmt.Sprintf("Now playing hand 2: %s (score %d)", f.Hand(e.Hand, false), e.Score),
			"Type !hit or !stand for hand 2",
		}

	case blackjack.DealerRevealEvent:
		return []string{fmt.Sprintf("🃏 Dealer reveals: %s (score %d)", f.Hand(e.Hand, false), e.Score)}

	case blackjack.DealerHitEvent:
		return []string{
			fmt.Sprintf("⬇️ Dealer hits: %s", f.Card(e.Card)),
			fmt.Sprintf("Dealer cards: %s (score %d)", f.Hand(e.Hand, false), e.Score),
		}

	case blackjack.RoundResolvedEvent:
		lines := []string{f.paint(f.st.header, "--- RESULT ---")}
		for _, r := range e.Results {
			tag := ""
			if len(e.Results) > 1 {
				tag = fmt.Sprintf(" [hand %d]", r.HandIndex)
			}
			lines = append(lines, f.outcome(e.Player, tag, r.Outcome))
		}
		return append(lines, "🎲 Round over! The next round will be ready shortly.")

	case blackjack.RoundAbandonedEvent:
		return []string{f.paint(f.st.warning, fmt.Sprintf("⏰ Timeout %s! Round cancelled, no action from %s.",
			e.Timeout, e.Player))}

	case blackjack.RoundReadyEvent:
		return []string{f.paint(f.st.info, "🎲 New round ready! Type !blackjack to play again.")}
	}
	return nil
}

func (f *Formatter) outcome(player, tag string, o blackjack.Outcome) string {
	switch o.Kind {
	case blackjack.DealerWinsByPlayerBust:
		return f.paint(f.st.loss, "💥 Bust - dealer wins"+tag)
	case blackjack.PlayerWinsByDealerBust:
		return f.paint(f.st.win, fmt.Sprintf("🎉 Dealer bust - %s wins%s", player, tag))
	case blackjack.DealerWins:
		return f.paint(f.st.loss, fmt.Sprintf("😞 Dealer wins%s %d vs %d", tag, o.DealerScore, o.PlayerScore))
	case blackjack.PlayerWins:
		return f.paint(f.st.win, fmt.Sprintf("🎉 %s wins%s %d vs %d", player, tag, o.PlayerScore, o.DealerScore))
	default:
		return f.paint(f.st.push, "🤝 Push"+tag)
	}
}

// FormatStatus renders a status reply.
func (f *Formatter) FormatStatus(st blackjack.Status) string {
	switch {
	case st.Abandoned:
		return f.paint(f.st.warning, fmt.Sprintf("⏰ %s's round timed out and was cancelled.", st.Player))
	case !st.Active:
		return "No game running. Type !blackjack to start."
	}
	s := fmt.Sprintf("Game active - %s's turn", st.Player)
	if st.Split {
		s += fmt.Sprintf(" (hand %d/2)", st.HandIndex)
	}
	return s + fmt.Sprintf(" - %ds left", st.SecondsRemaining)
}

// FormatError renders a rejected command for the player who sent it.
func (f *Formatter) FormatError(player string, err error) string {
	var msg string
	switch {
	case errors.Is(err, blackjack.ErrRoundAbandoned):
		msg = "⏰ That round timed out and was cancelled. Type !blackjack to start again."
	case errors.Is(err, blackjack.ErrAlreadyActive):
		msg = "A game is already running. Type !bjstatus to see whose turn it is."
	case errors.Is(err, blackjack.ErrNoActiveRound):
		msg = "No game running. Type !blackjack to start."
	case errors.Is(err, blackjack.ErrNotYourTurn):
		msg = fmt.Sprintf("%s, it's not your game.", player)
	case errors.Is(err, blackjack.ErrCannotSplit):
		msg = "You can only split two cards of the same rank, once per round."
	case errors.Is(err, blackjack.ErrNotAwaitingAction):
		msg = "Hold on, the dealer is playing."
	default:
		msg = "Error: " + err.Error()
	}
	return f.paint(f.st.warning, msg)
}
