package policy

import (
	"fmt"
	"github.com/chewxy/math32"
	"github.com/janpfeifer/qlearner/internal/infostate"
	"math/rand/v2"
)

// Softmax (or Boltzmann) selector: each legal action is chosen with probability proportional to
// exp(value/temperature). A temperature of 0 selects greedily, like EpsilonGreedy with epsilon 0.
type Softmax struct {
	NumActions int
}

var _ Selector = Softmax{}

// Select implements Selector. param is the temperature.
func (p Softmax) Select(values ValueReader, key infostate.Key, legal []int, temperature float32, rng *rand.Rand) (
	action int, probs []float32, err error) {
	if err = checkLegal(legal); err != nil {
		return
	}
	probs = make([]float32, p.NumActions)
	if temperature <= 0 {
		action = greedy(values, key, legal)
		probs[action] = 1
		return
	}

	// The max value is subtracted before dividing by the temperature: all logits are <= 0, so they never
	// overflow, even for tiny temperatures.
	qValues := make([]float32, len(legal))
	maxValue := math32.Inf(-1)
	for ii, a := range legal {
		qValues[ii] = values.Value(key, a)
		maxValue = math32.Max(maxValue, qValues[ii])
	}
	var sum float32
	for ii, a := range legal {
		probs[a] = math32.Exp((qValues[ii] - maxValue) / temperature)
		sum += probs[a]
	}
	for _, a := range legal {
		probs[a] /= sum
	}
	action = Sample(probs, rng)
	return
}

// String implements Selector.
func (p Softmax) String() string {
	return fmt.Sprintf("softmax(%d actions)", p.NumActions)
}
