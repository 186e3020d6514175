package policy

import (
	"fmt"
	"github.com/janpfeifer/qlearner/internal/infostate"
	"math/rand/v2"
)

// EpsilonGreedy selects a uniformly random legal action with probability epsilon, and otherwise the
// legal action with the largest value -- the first one in legal order in case of ties.
type EpsilonGreedy struct {
	NumActions int
}

var _ Selector = EpsilonGreedy{}

// Select implements Selector. param is epsilon.
func (p EpsilonGreedy) Select(values ValueReader, key infostate.Key, legal []int, epsilon float32, rng *rand.Rand) (
	action int, probs []float32, err error) {
	if err = checkLegal(legal); err != nil {
		return
	}
	probs = make([]float32, p.NumActions)
	if epsilon > 0 && rng.Float32() < epsilon {
		uniform := 1 / float32(len(legal))
		for _, a := range legal {
			probs[a] = uniform
		}
		action = Sample(probs, rng)
		return
	}
	action = greedy(values, key, legal)
	probs[action] = 1
	return
}

// String implements Selector.
func (p EpsilonGreedy) String() string {
	return fmt.Sprintf("epsilon-greedy(%d actions)", p.NumActions)
}
