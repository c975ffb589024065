package blackjack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackbot/internal/deck"
)

func advance(t *testing.T, r *testRig, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.clock.Advance(d).MustWait(ctx)
}

func TestStartDealsOpeningHands(t *testing.T) {
	r := newRig(t, "10h 7c 6d 5s")

	opened, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)

	assert.Equal(t, "round-1", opened.RoundID)
	assert.Equal(t, hand("10h 7c"), opened.PlayerHand)
	assert.Equal(t, 17, opened.PlayerScore)
	assert.Equal(t, deck.MustParseCards("5s")[0], opened.DealerUpCard)
	assert.False(t, opened.CanSplit)

	s := r.engine.Session(testTable)
	require.NotNil(t, s)
	assert.True(t, s.Active())
	assert.True(t, s.AwaitingAction())
	assert.False(t, s.IsSplit())
	assert.Equal(t, 1, s.ActiveHandIndex())
	assert.Equal(t, testPlayer, s.Player())
	assert.Equal(t, r.clock.Now(), s.LastAction())
	assert.Empty(t, s.PlayerHand(2))
	assert.True(t, r.sched.Pending(ActionTimeoutKey(testTable)))

	ev, ok := r.events.last(EventTypeRoundOpened).(RoundOpenedEvent)
	require.True(t, ok)
	assert.Equal(t, testTable, ev.TableID())
	assert.Equal(t, testPlayer, ev.Player)
	assert.Equal(t, opened.DealerUpCard, ev.DealerUpCard)
}

func TestStartRejectsSecondRound(t *testing.T) {
	r := newRig(t, "10h 7c 6d 5s")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)

	_, err = r.engine.Start("bob", testTable)
	assert.ErrorIs(t, err, ErrAlreadyActive)
	assert.Equal(t, testPlayer, r.engine.Session(testTable).Player())

	// other tables are independent
	_, err = r.engine.Start("bob", "#other")
	assert.NoError(t, err)
}

func TestStartSignalsSplit(t *testing.T) {
	r := newRig(t, "8h 8d 10c 7s")

	opened, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	assert.True(t, opened.CanSplit)
}

func TestStandDealerBust(t *testing.T) {
	// player 10 7, dealer 6 5 draws 5 then K
	r := newRig(t, "10h 7c 6d 5s 5h Kd")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)

	res, err := r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)

	assert.True(t, res.RoundEnded)
	assert.Equal(t, 1, res.HandIndex)
	assert.Equal(t, 17, res.Score)
	assert.Zero(t, res.NextHandIndex)
	require.NotNil(t, res.Resolution)
	assert.Equal(t, hand("6d 5s 5h Kd"), res.Resolution.DealerHand)
	assert.Equal(t, 26, res.Resolution.DealerScore)
	require.Len(t, res.Resolution.Results, 1)
	assert.Equal(t, PlayerWinsByDealerBust, res.Resolution.Results[0].Outcome.Kind)

	s := r.engine.Session(testTable)
	assert.False(t, s.Active())
	assert.False(t, s.AwaitingAction())
	assert.False(t, r.sched.Pending(ActionTimeoutKey(testTable)))
	assert.True(t, r.sched.Pending(NextRoundKey(testTable)))

	assert.Equal(t, []EventType{
		EventTypeRoundOpened,
		EventTypeHandStood,
		EventTypeDealerReveal,
		EventTypeDealerHit,
		EventTypeDealerHit,
		EventTypeRoundResolved,
	}, r.events.types())
}

func TestDealerStandsOnSeventeen(t *testing.T) {
	r := newRig(t, "10h 9c Kd 7s")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)

	res, err := r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)
	assert.Len(t, res.Resolution.DealerHand, 2)
	assert.Equal(t, PlayerWins, res.Resolution.Results[0].Outcome.Kind)
}

func TestDealerStopsAtNineCards(t *testing.T) {
	// dealer 2 2, then 2 2 3 A A A A keeps the score under 17 for nine cards
	r := newRig(t, "10h 9c 2d 2s 2h 2c 3d Ah Ad Ac As 5h")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)

	res, err := r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)

	assert.Len(t, res.Resolution.DealerHand, MaxDealerCards)
	assert.Equal(t, 15, res.Resolution.DealerScore)
	assert.Equal(t, PlayerWins, res.Resolution.Results[0].Outcome.Kind)
}

func TestHitWithoutBust(t *testing.T) {
	r := newRig(t, "10h 2c 9d 8s 3h")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	advance(t, r, 10*time.Second)

	res, err := r.engine.Hit(testTable, testPlayer)
	require.NoError(t, err)

	assert.Equal(t, deck.MustParseCards("3h")[0], res.Card)
	assert.Equal(t, 1, res.HandIndex)
	assert.Equal(t, 15, res.Score)
	assert.False(t, res.Busted)
	assert.False(t, res.RoundEnded)
	assert.Nil(t, res.Resolution)

	s := r.engine.Session(testTable)
	assert.True(t, s.AwaitingAction())
	assert.Equal(t, r.clock.Now(), s.LastAction())
	assert.Len(t, s.PlayerHand(1), 3)
}

func TestHitBustEndsSingleHand(t *testing.T) {
	r := newRig(t, "10h 6c 10d 8s Kh")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)

	res, err := r.engine.Hit(testTable, testPlayer)
	require.NoError(t, err)

	assert.True(t, res.Busted)
	assert.True(t, res.RoundEnded)
	assert.Equal(t, 26, res.Score)
	require.NotNil(t, res.Resolution)
	assert.Equal(t, DealerWinsByPlayerBust, res.Resolution.Results[0].Outcome.Kind)
	assert.False(t, r.engine.Session(testTable).Active())

	assert.Equal(t, []EventType{
		EventTypeRoundOpened,
		EventTypeCardDealt,
		EventTypeBust,
		EventTypeDealerReveal,
		EventTypeRoundResolved,
	}, r.events.types())
}

func TestSplitThenBustSwitchesHands(t *testing.T) {
	// player 8 8, dealer 10 7, split draws 10 and 9, hit on hand 1 draws K
	r := newRig(t, "8h 8d 10c 7s 10h 9c Ks")

	opened, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	require.True(t, opened.CanSplit)

	split, err := r.engine.Split(testTable, testPlayer)
	require.NoError(t, err)
	assert.Equal(t, hand("8h 10h"), split.Hand1)
	assert.Equal(t, hand("8d 9c"), split.Hand2)
	assert.Equal(t, 18, split.Score1)
	assert.Equal(t, 17, split.Score2)

	s := r.engine.Session(testTable)
	assert.True(t, s.IsSplit())
	assert.Len(t, s.PlayerHand(1), 2)
	assert.Len(t, s.PlayerHand(2), 2)
	assert.Equal(t, 1, s.CardsRemaining(), "start and split together draw six cards")

	hit, err := r.engine.Hit(testTable, testPlayer)
	require.NoError(t, err)
	assert.True(t, hit.Busted)
	assert.False(t, hit.RoundEnded)
	assert.Equal(t, 1, hit.HandIndex)
	assert.Equal(t, 2, hit.NextHandIndex)
	assert.Equal(t, 2, s.ActiveHandIndex())
	assert.True(t, s.Active())
	assert.True(t, s.AwaitingAction())

	stand, err := r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)
	assert.Equal(t, 2, stand.HandIndex)
	assert.True(t, stand.RoundEnded)

	results := stand.Resolution.Results
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].HandIndex)
	assert.Equal(t, DealerWinsByPlayerBust, results[0].Outcome.Kind)
	assert.Equal(t, 2, results[1].HandIndex)
	assert.Equal(t, Push, results[1].Outcome.Kind)

	ev, ok := r.events.last(EventTypeHandSwitch).(HandSwitchEvent)
	require.True(t, ok)
	assert.Equal(t, 2, ev.HandIndex)
	assert.Equal(t, 17, ev.Score)
}

func TestStandOnFirstSplitHandSwitches(t *testing.T) {
	r := newRig(t, "Ah Ad 10c 7s 9h 5c 10d")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	_, err = r.engine.Split(testTable, testPlayer)
	require.NoError(t, err)

	res, err := r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.HandIndex)
	assert.Equal(t, 20, res.Score)
	assert.Equal(t, 2, res.NextHandIndex)
	assert.False(t, res.RoundEnded)

	hit, err := r.engine.Hit(testTable, testPlayer)
	require.NoError(t, err)
	assert.Equal(t, 2, hit.HandIndex)
	assert.Equal(t, 16, hit.Score) // A 5 10 counts the ace low
	assert.False(t, hit.RoundEnded)
}

func TestSplitRejected(t *testing.T) {
	t.Run("ten and jack", func(t *testing.T) {
		r := newRig(t, "10h Jd 9c 7s")
		_, err := r.engine.Start(testPlayer, testTable)
		require.NoError(t, err)

		_, err = r.engine.Split(testTable, testPlayer)
		assert.ErrorIs(t, err, ErrCannotSplit)
		assert.False(t, r.engine.Session(testTable).IsSplit())
	})

	t.Run("after hitting", func(t *testing.T) {
		r := newRig(t, "4h 4d 9c 7s 2c")
		_, err := r.engine.Start(testPlayer, testTable)
		require.NoError(t, err)
		_, err = r.engine.Hit(testTable, testPlayer)
		require.NoError(t, err)

		_, err = r.engine.Split(testTable, testPlayer)
		assert.ErrorIs(t, err, ErrCannotSplit)
	})

	t.Run("already split", func(t *testing.T) {
		r := newRig(t, "8h 8d 9c 7s 8c 8s")
		_, err := r.engine.Start(testPlayer, testTable)
		require.NoError(t, err)
		_, err = r.engine.Split(testTable, testPlayer)
		require.NoError(t, err)

		_, err = r.engine.Split(testTable, testPlayer)
		assert.ErrorIs(t, err, ErrCannotSplit)
		assert.Len(t, r.engine.Session(testTable).PlayerHand(2), 2)
	})

	t.Run("not awaiting action", func(t *testing.T) {
		r := newRig(t, "8h 8d 9c 7s")
		_, err := r.engine.Start(testPlayer, testTable)
		require.NoError(t, err)
		r.engine.Session(testTable).awaitingAction = false

		_, err = r.engine.Split(testTable, testPlayer)
		assert.ErrorIs(t, err, ErrCannotSplit)
		assert.ErrorIs(t, err, ErrNotAwaitingAction)
	})

	t.Run("failed split does not reset the timer", func(t *testing.T) {
		r := newRig(t, "10h Jd 9c 7s")
		_, err := r.engine.Start(testPlayer, testTable)
		require.NoError(t, err)
		started := r.clock.Now()
		advance(t, r, 5*time.Second)

		_, err = r.engine.Split(testTable, testPlayer)
		require.Error(t, err)
		assert.Equal(t, started, r.engine.Session(testTable).LastAction())
	})
}

func TestNotYourTurn(t *testing.T) {
	r := newRig(t, "10h 7c 6d 5s")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	s := r.engine.Session(testTable)
	before := *s
	beforeHand := s.PlayerHand(1)
	beforeRemaining := s.CardsRemaining()
	beforeEvents := len(r.events.types())
	advance(t, r, 5*time.Second)

	_, err = r.engine.Hit(testTable, "bob")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = r.engine.Stand(testTable, "bob")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = r.engine.Split(testTable, "bob")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	assert.Equal(t, before.lastAction, s.lastAction)
	assert.Equal(t, before.active, s.active)
	assert.Equal(t, before.awaitingAction, s.awaitingAction)
	assert.Equal(t, beforeHand, s.PlayerHand(1))
	assert.Equal(t, beforeRemaining, s.CardsRemaining())
	assert.Len(t, r.events.types(), beforeEvents)
}

func TestActionsWithoutRound(t *testing.T) {
	r := newRig(t, "10h 7c 6d 5s")

	_, err := r.engine.Hit(testTable, testPlayer)
	assert.ErrorIs(t, err, ErrNoActiveRound)
	_, err = r.engine.Stand(testTable, testPlayer)
	assert.ErrorIs(t, err, ErrNoActiveRound)
	_, err = r.engine.Split(testTable, testPlayer)
	assert.ErrorIs(t, err, ErrNoActiveRound)
	assert.Equal(t, Status{}, r.engine.Status(testTable))

	_, err = r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	_, err = r.engine.Hit("#elsewhere", testPlayer)
	assert.ErrorIs(t, err, ErrNoActiveRound)
}

func TestStatus(t *testing.T) {
	r := newRig(t, "8h 8d 10c 7s 10h 9c")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	advance(t, r, 10*time.Second)

	st := r.engine.Status(testTable)
	assert.Equal(t, Status{Active: true, Player: testPlayer, HandIndex: 1, SecondsRemaining: 20}, st)

	_, err = r.engine.Split(testTable, testPlayer)
	require.NoError(t, err)
	_, err = r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)

	st = r.engine.Status(testTable)
	assert.True(t, st.Split)
	assert.Equal(t, 2, st.HandIndex)
	assert.Equal(t, 30, st.SecondsRemaining)
}

func TestActionTimeoutAbandonsRound(t *testing.T) {
	r := newRig(t, "10h 7c 6d 5s")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)

	advance(t, r, 30*time.Second)

	s := r.engine.Session(testTable)
	assert.False(t, s.Active())
	assert.False(t, s.AwaitingAction())
	ev, ok := r.events.last(EventTypeRoundAbandoned).(RoundAbandonedEvent)
	require.True(t, ok)
	assert.Equal(t, testPlayer, ev.Player)
	assert.Nil(t, r.events.last(EventTypeRoundResolved), "a timeout is not a loss")
	assert.True(t, r.sched.Pending(NextRoundKey(testTable)))

	_, err = r.engine.Hit(testTable, testPlayer)
	assert.ErrorIs(t, err, ErrNoActiveRound)

	// the shorter post-timeout delay announces the next round
	advance(t, r, 8*time.Second)
	assert.NotNil(t, r.events.last(EventTypeRoundReady))

	_, err = r.engine.Start(testPlayer, testTable)
	assert.NoError(t, err)
}

func TestActionResetsTimeout(t *testing.T) {
	r := newRig(t, "10h 2c 9d 8s 3h")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	advance(t, r, 20*time.Second)

	_, err = r.engine.Hit(testTable, testPlayer)
	require.NoError(t, err)

	// the original deadline passes without firing
	advance(t, r, 10*time.Second)
	assert.True(t, r.engine.Session(testTable).Active())
	assert.Nil(t, r.events.last(EventTypeRoundAbandoned))

	advance(t, r, 20*time.Second)
	assert.False(t, r.engine.Session(testTable).Active())
	assert.NotNil(t, r.events.last(EventTypeRoundAbandoned))
}

func TestExpiredRoundFoundByInboundCalls(t *testing.T) {
	setup := func(t *testing.T) *testRig {
		t.Helper()
		r := newRig(t, "10h 7c 6d 5s")
		// no scheduler: only inbound calls can notice the deadline
		r.engine.scheduler = nopScheduler{}
		_, err := r.engine.Start(testPlayer, testTable)
		require.NoError(t, err)
		r.clock.Advance(31 * time.Second)
		return r
	}

	t.Run("status", func(t *testing.T) {
		r := setup(t)
		st := r.engine.Status(testTable)
		assert.True(t, st.Abandoned)
		assert.False(t, st.Active)
		assert.False(t, r.engine.Session(testTable).Active())
		assert.NotNil(t, r.events.last(EventTypeRoundAbandoned))
		assert.Equal(t, Status{}, r.engine.Status(testTable))
	})

	t.Run("hit", func(t *testing.T) {
		r := setup(t)
		_, err := r.engine.Hit(testTable, testPlayer)
		assert.ErrorIs(t, err, ErrRoundAbandoned)
		assert.False(t, r.engine.Session(testTable).Active())
	})

	t.Run("other player", func(t *testing.T) {
		r := setup(t)
		_, err := r.engine.Stand(testTable, "bob")
		assert.ErrorIs(t, err, ErrRoundAbandoned)
	})

	t.Run("start", func(t *testing.T) {
		r := setup(t)
		_, err := r.engine.Start("bob", testTable)
		assert.ErrorIs(t, err, ErrRoundAbandoned)

		_, err = r.engine.Start("bob", testTable)
		assert.NoError(t, err)
		assert.Equal(t, "bob", r.engine.Session(testTable).Player())
	})
}

func TestStaleTimeoutIgnored(t *testing.T) {
	r := newRig(t, "10h 7c 6d 5s")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)

	r.engine.OnActionTimeout(testTable)
	assert.True(t, r.engine.Session(testTable).Active())
	assert.Nil(t, r.events.last(EventTypeRoundAbandoned))
}

func TestRoundReadyAfterResolution(t *testing.T) {
	r := newRig(t, "10h 9c Kd 7s")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	_, err = r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)

	advance(t, r, 9*time.Second)
	assert.Nil(t, r.events.last(EventTypeRoundReady))

	advance(t, r, time.Second)
	ev, ok := r.events.last(EventTypeRoundReady).(RoundReadyEvent)
	require.True(t, ok)
	assert.Equal(t, testTable, ev.TableID())
}

func TestNewRoundCancelsReadyAnnouncement(t *testing.T) {
	r := newRig(t, "10h 9c Kd 7s")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	_, err = r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)

	_, err = r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	assert.False(t, r.sched.Pending(NextRoundKey(testTable)))

	r.events.reset()
	r.engine.OnRoundRestartReady(testTable)
	assert.Empty(t, r.events.types(), "no announcement while a round is active")
}

func TestSessionReusedAcrossRounds(t *testing.T) {
	r := newRig(t, "10h 9c Kd 7s")

	_, err := r.engine.Start(testPlayer, testTable)
	require.NoError(t, err)
	first := r.engine.Session(testTable)
	_, err = r.engine.Stand(testTable, testPlayer)
	require.NoError(t, err)

	_, err = r.engine.Start("bob", testTable)
	require.NoError(t, err)
	assert.Same(t, first, r.engine.Session(testTable))
	assert.Len(t, first.DealerHand(), 2)
	assert.Len(t, first.PlayerHand(1), 2)
	assert.Equal(t, "bob", first.Player())
}

func TestEngineErrorsAreDistinct(t *testing.T) {
	all := []error{ErrAlreadyActive, ErrNoActiveRound, ErrNotYourTurn, ErrNotAwaitingAction, ErrCannotSplit, ErrRoundAbandoned}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
