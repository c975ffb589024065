// Package statistics aggregates simulated blackjack results.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjackbot/internal/blackjack"
)

// HandResult is one resolved player hand, scored in betting units.
type HandResult struct {
	Net   float64 // +1 win, 0 push, -1 loss
	Seed  int64   // seed of the table that produced it
	Split bool    // hand came from a split
	Kind  blackjack.OutcomeKind
}

// FromResult converts an engine result to a scored HandResult.
func FromResult(r blackjack.HandResult, split bool, seed int64) HandResult {
	net := 0.0
	switch {
	case r.Outcome.Kind.PlayerWon():
		net = 1
	case r.Outcome.Kind.DealerWon():
		net = -1
	}
	return HandResult{Net: net, Seed: seed, Split: split, Kind: r.Outcome.Kind}
}

// Statistics tracks hand outcomes and their running moments.
type Statistics struct {
	Hands  int
	Rounds int
	Sum    float64
	Sum2   float64   // sum of squares for variance
	Values []float64 // kept for median and percentiles

	Wins   int
	Losses int
	Pushes int

	PlayerBusts int
	DealerBusts int

	SplitHands int
	SplitNet   float64

	Kinds map[blackjack.OutcomeKind]int
}

// Mean returns the average units per hand.
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.Sum / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// AddRound records every hand of one resolved round.
func (s *Statistics) AddRound(results []HandResult) {
	s.Rounds++
	for _, r := range results {
		s.Add(r)
	}
}

// Add incorporates a single hand.
func (s *Statistics) Add(r HandResult) {
	if s.Kinds == nil {
		s.Kinds = make(map[blackjack.OutcomeKind]int)
	}
	s.Hands++
	s.Sum += r.Net
	s.Sum2 += r.Net * r.Net
	s.Values = append(s.Values, r.Net)
	s.Kinds[r.Kind]++

	switch {
	case r.Net > 0:
		s.Wins++
	case r.Net < 0:
		s.Losses++
	default:
		s.Pushes++
	}

	switch r.Kind {
	case blackjack.DealerWinsByPlayerBust:
		s.PlayerBusts++
	case blackjack.PlayerWinsByDealerBust:
		s.DealerBusts++
	}

	if r.Split {
		s.SplitHands++
		s.SplitNet += r.Net
	}
}

// Merge folds other into s. Used to combine per-table tallies.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	if s.Kinds == nil {
		s.Kinds = make(map[blackjack.OutcomeKind]int)
	}
	s.Hands += other.Hands
	s.Rounds += other.Rounds
	s.Sum += other.Sum
	s.Sum2 += other.Sum2
	s.Values = append(s.Values, other.Values...)
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.PlayerBusts += other.PlayerBusts
	s.DealerBusts += other.DealerBusts
	s.SplitHands += other.SplitHands
	s.SplitNet += other.SplitNet
	for k, n := range other.Kinds {
		s.Kinds[k] += n
	}
}

// WinRate is the fraction of hands the player won.
func (s *Statistics) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Hands)
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks that the tallies agree with each other.
func (s *Statistics) Validate() error {
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}
	if s.Wins+s.Losses+s.Pushes != s.Hands {
		return fmt.Errorf("wins+losses+pushes (%d) does not match hands (%d)",
			s.Wins+s.Losses+s.Pushes, s.Hands)
	}
	if net := float64(s.Wins - s.Losses); math.Abs(net-s.Sum) > 1e-6 {
		return fmt.Errorf("ledger mismatch: net=%.0f sum=%.6f", net, s.Sum)
	}
	total := 0
	for _, n := range s.Kinds {
		total += n
	}
	if total != s.Hands {
		return fmt.Errorf("outcome kinds total (%d) does not match hands (%d)", total, s.Hands)
	}
	if s.Rounds > s.Hands {
		return fmt.Errorf("rounds (%d) exceeds hands (%d)", s.Rounds, s.Hands)
	}
	return nil
}

// Summary is the serialisable view written to sim reports.
type Summary struct {
	Rounds      int            `json:"rounds"`
	Hands       int            `json:"hands"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	Pushes      int            `json:"pushes"`
	PlayerBusts int            `json:"player_busts"`
	DealerBusts int            `json:"dealer_busts"`
	SplitHands  int            `json:"split_hands"`
	Mean        float64        `json:"mean_units_per_hand"`
	StdDev      float64        `json:"stddev"`
	CI95Low     float64        `json:"ci95_low"`
	CI95High    float64        `json:"ci95_high"`
	Outcomes    map[string]int `json:"outcomes"`
}

// Summary snapshots the statistics.
func (s *Statistics) Summary() Summary {
	lo, hi := s.ConfidenceInterval95()
	outcomes := make(map[string]int, len(s.Kinds))
	for k, n := range s.Kinds {
		outcomes[k.String()] = n
	}
	return Summary{
		Rounds:      s.Rounds,
		Hands:       s.Hands,
		Wins:        s.Wins,
		Losses:      s.Losses,
		Pushes:      s.Pushes,
		PlayerBusts: s.PlayerBusts,
		DealerBusts: s.DealerBusts,
		SplitHands:  s.SplitHands,
		Mean:        s.Mean(),
		StdDev:      s.StdDev(),
		CI95Low:     lo,
		CI95High:    hi,
		Outcomes:    outcomes,
	}
}
