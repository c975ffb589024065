package blackjack

import "errors"

var (
	// ErrAlreadyActive is returned by Start when the table already has a round in progress.
	ErrAlreadyActive = errors.New("blackjack: round already active")

	// ErrNoActiveRound is returned when an action arrives for a table with no round.
	ErrNoActiveRound = errors.New("blackjack: no active round")

	// ErrNotYourTurn is returned when someone other than the round's player acts.
	ErrNotYourTurn = errors.New("blackjack: not your turn")

	// ErrNotAwaitingAction is returned while the dealer is playing or the round is resolving.
	ErrNotAwaitingAction = errors.New("blackjack: not awaiting action")

	// ErrCannotSplit is returned when the current hand is not a splittable pair.
	ErrCannotSplit = errors.New("blackjack: cannot split")

	// ErrRoundAbandoned is returned when the call found the round past its
	// action deadline and abandoned it instead of applying the action.
	ErrRoundAbandoned = errors.New("blackjack: round abandoned after timeout")
)
