package blackjack

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjackbot/internal/deck"
	"github.com/lox/blackjackbot/internal/roundid"
)

// Engine holds one Session per table and applies player actions to them.
type Engine struct {
	sessions map[string]*Session

	clock      quartz.Clock
	scheduler  Scheduler
	notifier   Notifier
	logger     *log.Logger
	timing     Timing
	newDeck    func() *deck.Deck
	newRoundID func() string
}

// RoundOpened is returned by Start.
type RoundOpened struct {
	RoundID      string
	PlayerHand   Hand
	PlayerScore  int
	DealerUpCard deck.Card
	CanSplit     bool
}

// Resolution is the result of dealer play, present on the action that ended the round.
type Resolution struct {
	DealerHand  Hand
	DealerScore int
	Results     []HandResult
}

// HitResult is returned by Hit. NextHandIndex is 2 when a bust on hand 1
// moved play to hand 2, otherwise 0.
type HitResult struct {
	Card          deck.Card
	HandIndex     int
	Score         int
	Busted        bool
	RoundEnded    bool
	NextHandIndex int
	Resolution    *Resolution
}

// StandResult is returned by Stand.
type StandResult struct {
	HandIndex     int
	Score         int
	RoundEnded    bool
	NextHandIndex int
	Resolution    *Resolution
}

// SplitResult is returned by Split.
type SplitResult struct {
	Hand1  Hand
	Hand2  Hand
	Score1 int
	Score2 int
}

// Status describes a table for status queries. The zero value means idle.
type Status struct {
	Active           bool
	Player           string
	Split            bool
	HandIndex        int
	SecondsRemaining int
	// Abandoned is set when this query found the round expired and abandoned it.
	Abandoned bool
}

// NewEngine creates an engine. Without options it uses the real clock, a
// randomly shuffled shoe per round and discards events.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		sessions:   make(map[string]*Session),
		clock:      quartz.NewReal(),
		scheduler:  nopScheduler{},
		notifier:   nopNotifier{},
		logger:     log.Default(),
		timing:     DefaultTiming(),
		newDeck:    func() *deck.Deck { return deck.NewShuffledDeck(nil) },
		newRoundID: roundid.Generate,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithPrefix("blackjack")
	return e
}

// Timing returns the engine's durations.
func (e *Engine) Timing() Timing {
	return e.timing
}

// Session returns the table's session, or nil if the table never had a round.
func (e *Engine) Session(tableID string) *Session {
	return e.sessions[tableID]
}

// Start opens a round for player at tableID.
func (e *Engine) Start(player, tableID string) (RoundOpened, error) {
	now := e.clock.Now()
	s := e.sessions[tableID]
	if s != nil && s.active {
		if s.IsExpired(now) {
			e.abandon(s, now)
			return RoundOpened{}, ErrRoundAbandoned
		}
		return RoundOpened{}, ErrAlreadyActive
	}
	if s == nil {
		s = newSession(tableID, e.timing.ActionTimeout)
		e.sessions[tableID] = s
	}

	e.scheduler.Cancel(NextRoundKey(tableID))
	s.deal(e.newRoundID(), player, e.newDeck(), now)
	e.armActionTimeout(s)

	opened := RoundOpened{
		RoundID:      s.roundID,
		PlayerHand:   s.hand1.Clone(),
		PlayerScore:  Score(s.hand1),
		DealerUpCard: s.dealer[1],
		CanSplit:     CanSplit(s.hand1),
	}
	e.logger.Debug("Round opened",
		"table", tableID,
		"round", s.roundID,
		"player", player,
		"hand", opened.PlayerHand,
		"score", opened.PlayerScore)

	e.notifier.Notify(RoundOpenedEvent{
		Meta:         e.meta(s, now),
		RoundID:      opened.RoundID,
		Player:       player,
		PlayerHand:   opened.PlayerHand,
		PlayerScore:  opened.PlayerScore,
		DealerUpCard: opened.DealerUpCard,
		CanSplit:     opened.CanSplit,
	})
	return opened, nil
}

// Split splits a pair into two hands.
func (e *Engine) Split(tableID, player string) (SplitResult, error) {
	now := e.clock.Now()
	s, err := e.actionable(tableID, player, now)
	if err != nil {
		if errors.Is(err, ErrNotAwaitingAction) {
			return SplitResult{}, fmt.Errorf("%w: %w", ErrCannotSplit, err)
		}
		return SplitResult{}, err
	}
	if !s.splitHand() {
		return SplitResult{}, ErrCannotSplit
	}
	e.touch(s, now)

	res := SplitResult{
		Hand1:  s.hand1.Clone(),
		Hand2:  s.hand2.Clone(),
		Score1: Score(s.hand1),
		Score2: Score(s.hand2),
	}
	e.logger.Debug("Hand split", "table", tableID, "hand1", res.Hand1, "hand2", res.Hand2)
	e.notifier.Notify(HandSplitEvent{
		Meta:   e.meta(s, now),
		Player: player,
		Hand1:  res.Hand1,
		Hand2:  res.Hand2,
		Score1: res.Score1,
		Score2: res.Score2,
	})
	return res, nil
}

// Hit draws a card into the active hand.
func (e *Engine) Hit(tableID, player string) (HitResult, error) {
	now := e.clock.Now()
	s, err := e.actionable(tableID, player, now)
	if err != nil {
		return HitResult{}, err
	}
	e.touch(s, now)

	index := s.activeHand
	card, busted, switched, done := s.hit()
	hand := s.PlayerHand(index)
	res := HitResult{
		Card:      card,
		HandIndex: index,
		Score:     Score(hand),
		Busted:    busted,
	}
	e.notifier.Notify(CardDealtEvent{
		Meta:      e.meta(s, now),
		Player:    player,
		HandIndex: index,
		Split:     s.split,
		Card:      card,
		Hand:      hand,
		Score:     res.Score,
	})
	if busted {
		e.logger.Debug("Player bust", "table", tableID, "hand", index, "score", res.Score)
		e.notifier.Notify(BustEvent{
			Meta:      e.meta(s, now),
			Player:    player,
			HandIndex: index,
			Split:     s.split,
			Score:     res.Score,
		})
	}
	if switched {
		res.NextHandIndex = 2
		e.notifySwitch(s, now)
	}
	if done {
		res.RoundEnded = true
		res.Resolution = e.dealerPlay(s, now)
	}
	return res, nil
}

// Stand finishes the active hand.
func (e *Engine) Stand(tableID, player string) (StandResult, error) {
	now := e.clock.Now()
	s, err := e.actionable(tableID, player, now)
	if err != nil {
		return StandResult{}, err
	}
	e.touch(s, now)

	index := s.activeHand
	hand := s.PlayerHand(index)
	res := StandResult{HandIndex: index, Score: Score(hand)}
	e.notifier.Notify(HandStoodEvent{
		Meta:      e.meta(s, now),
		Player:    player,
		HandIndex: index,
		Split:     s.split,
		Hand:      hand,
		Score:     res.Score,
	})

	switched, done := s.stand()
	if switched {
		res.NextHandIndex = 2
		e.notifySwitch(s, now)
	}
	if done {
		res.RoundEnded = true
		res.Resolution = e.dealerPlay(s, now)
	}
	return res, nil
}

// Status reports the table's round. An expired round is abandoned first.
func (e *Engine) Status(tableID string) Status {
	now := e.clock.Now()
	s := e.sessions[tableID]
	if s == nil || !s.active {
		return Status{}
	}
	if s.IsExpired(now) {
		e.abandon(s, now)
		return Status{Player: s.player, Abandoned: true}
	}
	return Status{
		Active:           true,
		Player:           s.player,
		Split:            s.split,
		HandIndex:        s.activeHand,
		SecondsRemaining: s.SecondsRemaining(now),
	}
}

// OnActionTimeout is the scheduler callback for the action deadline.
// Callbacks that arrive before the deadline are stale and ignored.
func (e *Engine) OnActionTimeout(tableID string) {
	now := e.clock.Now()
	s := e.sessions[tableID]
	if s == nil || !s.active || !s.awaitingAction {
		return
	}
	if now.Sub(s.lastAction) < e.timing.ActionTimeout {
		e.logger.Debug("Ignoring stale action timeout", "table", tableID)
		return
	}
	e.abandon(s, now)
}

// OnRoundRestartReady is the scheduler callback for the next-round delay.
func (e *Engine) OnRoundRestartReady(tableID string) {
	s := e.sessions[tableID]
	if s == nil || s.active {
		return
	}
	e.notifier.Notify(RoundReadyEvent{Meta: e.meta(s, e.clock.Now())})
}

// actionable looks up the table's session and checks it can take an action
// from player. An expired round is abandoned before the turn check.
func (e *Engine) actionable(tableID, player string, now time.Time) (*Session, error) {
	s := e.sessions[tableID]
	if s == nil || !s.active {
		return nil, ErrNoActiveRound
	}
	if s.IsExpired(now) {
		e.abandon(s, now)
		return nil, ErrRoundAbandoned
	}
	if s.player != player {
		return nil, ErrNotYourTurn
	}
	if !s.awaitingAction {
		return nil, ErrNotAwaitingAction
	}
	return s, nil
}

func (e *Engine) touch(s *Session, now time.Time) {
	s.lastAction = now
	e.armActionTimeout(s)
}

func (e *Engine) armActionTimeout(s *Session) {
	tableID := s.table
	e.scheduler.ScheduleOnce(e.timing.ActionTimeout, ActionTimeoutKey(tableID), func() {
		e.OnActionTimeout(tableID)
	})
}

func (e *Engine) scheduleNextRound(s *Session, delay time.Duration) {
	tableID := s.table
	e.scheduler.ScheduleOnce(delay, NextRoundKey(tableID), func() {
		e.OnRoundRestartReady(tableID)
	})
}

func (e *Engine) notifySwitch(s *Session, now time.Time) {
	hand := s.PlayerHand(2)
	e.notifier.Notify(HandSwitchEvent{
		Meta:      e.meta(s, now),
		Player:    s.player,
		HandIndex: 2,
		Hand:      hand,
		Score:     Score(hand),
	})
}

// dealerPlay reveals the hole card, draws to 17 and resolves every player hand.
func (e *Engine) dealerPlay(s *Session, now time.Time) *Resolution {
	s.awaitingAction = false
	e.scheduler.Cancel(ActionTimeoutKey(s.table))

	e.notifier.Notify(DealerRevealEvent{
		Meta:  e.meta(s, now),
		Hand:  s.dealer.Clone(),
		Score: Score(s.dealer),
	})
	for s.dealerDraws() {
		card := s.deck.Draw()
		s.dealer = append(s.dealer, card)
		e.notifier.Notify(DealerHitEvent{
			Meta:  e.meta(s, now),
			Card:  card,
			Hand:  s.dealer.Clone(),
			Score: Score(s.dealer),
		})
	}

	res := &Resolution{
		DealerHand:  s.dealer.Clone(),
		DealerScore: Score(s.dealer),
		Results:     s.resolve(),
	}
	e.logger.Debug("Round resolved",
		"table", s.table,
		"round", s.roundID,
		"dealer", res.DealerHand,
		"dealerScore", res.DealerScore,
		"hands", len(res.Results))

	e.notifier.Notify(RoundResolvedEvent{
		Meta:        e.meta(s, now),
		RoundID:     s.roundID,
		Player:      s.player,
		DealerHand:  res.DealerHand,
		DealerScore: res.DealerScore,
		Results:     res.Results,
	})
	e.scheduleNextRound(s, e.timing.RestartDelay)
	return res
}

// abandon cancels an expired round. It is not a loss for the player.
func (e *Engine) abandon(s *Session, now time.Time) {
	s.close()
	e.scheduler.Cancel(ActionTimeoutKey(s.table))
	e.logger.Warn("Round abandoned after timeout",
		"table", s.table,
		"round", s.roundID,
		"player", s.player,
		"timeout", e.timing.ActionTimeout)

	e.notifier.Notify(RoundAbandonedEvent{
		Meta:    e.meta(s, now),
		RoundID: s.roundID,
		Player:  s.player,
		Timeout: e.timing.ActionTimeout,
	})
	e.scheduleNextRound(s, e.timing.TimeoutRestartDelay)
}

func (e *Engine) meta(s *Session, now time.Time) Meta {
	return Meta{Table: s.table, At: now}
}
