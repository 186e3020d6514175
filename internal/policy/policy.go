// Package policy implements action selectors: given the values of the legal actions of a state, they
// choose an action and return the probabilities with which each action could have been chosen.
package policy

import (
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/qlearner/internal/infostate"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"math/rand/v2"
)

// ValueReader provides action values per state. It is implemented by qtable.Table (which inserts
// missing states) and qtable.ReadOnlyView (which doesn't).
type ValueReader interface {
	Value(key infostate.Key, action int) float32
}

// Selector chooses an action among the legal ones.
//
// param is the exploration parameter: its meaning depends on the selector (epsilon for EpsilonGreedy,
// temperature for Softmax), and 0 always means "greedy".
//
// It returns the chosen action and a probability vector over all actions that sums to 1 and is 0 for
// illegal actions. It returns an error wrapping rl.ErrNoLegalActions if legal is empty.
type Selector interface {
	Select(values ValueReader, key infostate.Key, legal []int, param float32, rng *rand.Rand) (action int, probs []float32, err error)
	String() string
}

func checkLegal(legal []int) error {
	if len(legal) == 0 {
		return errors.Wrap(rl.ErrNoLegalActions, "policy can't select an action")
	}
	return nil
}

// greedy returns the first legal action with the largest value.
func greedy(values ValueReader, key infostate.Key, legal []int) int {
	best := legal[0]
	bestValue := values.Value(key, best)
	for _, action := range legal[1:] {
		if value := values.Value(key, action); value > bestValue {
			best, bestValue = action, value
		}
	}
	return best
}

// Sample an action from probs, using one draw of rng.
func Sample(probs []float32, rng *rand.Rand) int {
	chance := rng.Float32()
	last := -1
	for action, prob := range probs {
		if prob <= 0 {
			continue
		}
		last = action
		if chance < prob {
			return action
		}
		chance -= prob
	}
	if last >= 0 {
		// Rounding errors may leave some chance left.
		return last
	}
	exceptions.Panicf("policy.Sample: nothing selected, probabilities=%v", probs)
	return -1
}

// ArgMax returns the index of the first largest value.
func ArgMax(probs []float32) int {
	best := 0
	for ii, prob := range probs {
		if prob > probs[best] {
			best = ii
		}
	}
	return best
}
