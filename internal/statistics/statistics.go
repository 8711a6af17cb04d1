// Package statistics aggregates Blackjack round results over a session or a
// simulation run.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Hand outcomes as reported by the game engine.
const (
	OutcomeWin       = "win"
	OutcomeBlackjack = "blackjack"
	OutcomePush      = "push"
	OutcomeLose      = "lose"
	OutcomeBust      = "bust"
)

// RoundResult represents the outcome of a single round
type RoundResult struct {
	Net        float64  // Chips won or lost over the round, after bets
	Wagered    float64  // Total chips bet, including doubles and splits
	Outcomes   []string // One outcome per played hand
	Split      bool
	Doubled    bool
	DealerBust bool
}

// Statistics tracks results across rounds
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Net per round, for median/percentile calculation

	Hands      int
	Wins       int
	Blackjacks int
	Pushes     int
	Losses     int
	Busts      int

	Splits      int
	Doubles     int
	DealerBusts int

	Wagered     float64
	BiggestWin  float64
	BiggestLoss float64
}

// Add incorporates a round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	s.Rounds++
	s.SumNet += result.Net
	s.SumNet2 += result.Net * result.Net
	s.Values = append(s.Values, result.Net)
	s.Wagered += result.Wagered

	for _, o := range result.Outcomes {
		s.Hands++
		switch o {
		case OutcomeWin:
			s.Wins++
		case OutcomeBlackjack:
			s.Blackjacks++
		case OutcomePush:
			s.Pushes++
		case OutcomeBust:
			s.Busts++
		default:
			s.Losses++
		}
	}

	if result.Split {
		s.Splits++
	}
	if result.Doubled {
		s.Doubles++
	}
	if result.DealerBust {
		s.DealerBusts++
	}
	if result.Net > s.BiggestWin {
		s.BiggestWin = result.Net
	}
	if result.Net < s.BiggestLoss {
		s.BiggestLoss = result.Net
	}
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Hands += other.Hands
	s.Wins += other.Wins
	s.Blackjacks += other.Blackjacks
	s.Pushes += other.Pushes
	s.Losses += other.Losses
	s.Busts += other.Busts
	s.Splits += other.Splits
	s.Doubles += other.Doubles
	s.DealerBusts += other.DealerBusts
	s.Wagered += other.Wagered
	s.BiggestWin = math.Max(s.BiggestWin, other.BiggestWin)
	s.BiggestLoss = math.Min(s.BiggestLoss, other.BiggestLoss)
}

// Mean returns the average net result per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of round results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of round results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median round result
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

// WinRate returns the fraction of hands won, blackjacks included
func (s *Statistics) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Wins+s.Blackjacks) / float64(s.Hands)
}

// Return returns net result as a fraction of total wagered
func (s *Statistics) Return() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return s.SumNet / s.Wagered
}

// Validate checks that the counters are consistent with each other
func (s *Statistics) Validate() error {
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values length (%d) does not match rounds (%d)", len(s.Values), s.Rounds)
	}
	if total := s.Wins + s.Blackjacks + s.Pushes + s.Losses + s.Busts; total != s.Hands {
		return fmt.Errorf("outcome total (%d) does not match hands (%d)", total, s.Hands)
	}
	if s.Hands < s.Rounds {
		return fmt.Errorf("hands (%d) fewer than rounds (%d)", s.Hands, s.Rounds)
	}
	if s.Splits > s.Rounds || s.Doubles > s.Rounds {
		return fmt.Errorf("splits (%d) or doubles (%d) exceed rounds (%d)", s.Splits, s.Doubles, s.Rounds)
	}
	return nil
}

// Summary renders a short multi-line report
func (s *Statistics) Summary() string {
	var b strings.Builder
	lo, hi := s.ConfidenceInterval95()
	fmt.Fprintf(&b, "Rounds: %d  Hands: %d\n", s.Rounds, s.Hands)
	fmt.Fprintf(&b, "Won: %d  Blackjacks: %d  Pushed: %d  Lost: %d  Busted: %d\n",
		s.Wins, s.Blackjacks, s.Pushes, s.Losses, s.Busts)
	fmt.Fprintf(&b, "Splits: %d  Doubles: %d  Dealer busts: %d\n", s.Splits, s.Doubles, s.DealerBusts)
	fmt.Fprintf(&b, "Wagered: %.2f  Net: %+.2f  Return: %+.2f%%\n", s.Wagered, s.SumNet, s.Return()*100)
	fmt.Fprintf(&b, "Per round: mean %+.2f  sd %.2f  95%% CI [%+.2f, %+.2f]\n", s.Mean(), s.StdDev(), lo, hi)
	fmt.Fprintf(&b, "Biggest win: %+.2f  Biggest loss: %+.2f", s.BiggestWin, s.BiggestLoss)
	return b.String()
}
