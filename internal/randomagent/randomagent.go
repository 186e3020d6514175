// Package randomagent implements a baseline agent that plays uniformly at random among the legal actions.
package randomagent

import (
	"fmt"
	"github.com/janpfeifer/qlearner/internal/policy"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"math/rand/v2"
)

// Agent plays a uniformly random legal action. It never learns.
type Agent struct {
	playerID, numActions int
	rng                  *rand.Rand
}

var _ rl.Agent = (*Agent)(nil)

// New creates a random Agent for playerID, seeded with seed.
func New(playerID, numActions int, seed uint64) (*Agent, error) {
	if numActions <= 0 {
		return nil, errors.Errorf("randomagent: numActions=%d must be > 0", numActions)
	}
	return &Agent{
		playerID:   playerID,
		numActions: numActions,
		rng:        rand.New(rand.NewPCG(seed, uint64(playerID))),
	}, nil
}

// PlayerID implements rl.Agent.
func (a *Agent) PlayerID() int { return a.playerID }

// String implements rl.Agent.
func (a *Agent) String() string { return fmt.Sprintf("random(player=%d)", a.playerID) }

// Step implements rl.Agent. Options are ignored.
func (a *Agent) Step(ts *rl.TimeStep, _ rl.StepOptions) (*rl.StepOutput, error) {
	if ts.Last {
		return nil, nil
	}
	legal, err := ts.Legal(a.playerID)
	if err != nil {
		return nil, err
	}
	if len(legal) == 0 {
		return nil, errors.Wrapf(rl.ErrNoLegalActions, "%s", a)
	}
	probs := make([]float32, a.numActions)
	for _, action := range legal {
		if action < 0 || action >= a.numActions {
			return nil, errors.Wrapf(rl.ErrInvalidObservation, "%s: legal action %d out of range", a, action)
		}
		probs[action] = 1 / float32(len(legal))
	}
	return &rl.StepOutput{Action: policy.Sample(probs, a.rng), Probs: probs}, nil
}
