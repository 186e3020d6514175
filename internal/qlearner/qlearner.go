// Package qlearner implements a tabular Q-learning agent for turn-based multi-player games.
//
// The agent acts and learns in two phases spanning consecutive calls to Agent.Step: on one call it
// chooses an action for the current state and records it as a pending transition; on the next call
// (its next turn, or the end of the episode) it observes the reward and the new state, and updates the
// value of the pending transition with a TD(0) rule:
//
//	Q(s, a) += stepSize * (target - Q(s, a))
//	target = r                                    if the episode ended
//	target = r + discount * max_{a'} Q(s', a')    otherwise
//
// Evaluation calls neither explore nor change anything in the agent.
package qlearner

import (
	"fmt"
	"github.com/chewxy/math32"
	"github.com/janpfeifer/qlearner/internal/infostate"
	"github.com/janpfeifer/qlearner/internal/policy"
	"github.com/janpfeifer/qlearner/internal/qtable"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/janpfeifer/qlearner/internal/schedule"
	"github.com/janpfeifer/qlearner/internal/shaping"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"math/rand/v2"
)

// DefaultEpsilon is the exploration probability used if no schedule is configured.
const DefaultEpsilon = 0.2

// DefaultSeed is used to seed the random number generator if Config.Seed is 0.
const DefaultSeed = 42

// Config of an Agent. Only PlayerID, NumPlayers, NumActions and StepSize are required: see
// NewConfig for the defaults of the other fields.
type Config struct {
	PlayerID, NumPlayers, NumActions int

	// ObservationSize, if > 0, is the expected length of each player's observation.
	ObservationSize int

	// StepSize (learning rate) of the TD updates, must be > 0.
	StepSize float32

	// Schedule of the exploration parameter.
	Schedule schedule.Schedule

	// Discount of future values, must be in [0, 1].
	Discount float32

	// Rules for reward shaping, applied to the board seen by the player, as defined by Layout.
	Rules  []shaping.Rule
	Layout shaping.Layout

	// Centralized agents build their states from the observations of all players.
	Centralized bool

	// Selector of actions, by default EpsilonGreedy.
	Selector policy.Selector

	// Seed for the random number generator. If 0, DefaultSeed is used.
	Seed uint64

	// Table to start from. If nil a new empty one is created.
	Table *qtable.Table
}

// NewConfig returns a Config with the defaults: constant exploration of DefaultEpsilon, discount 1,
// no reward shaping, decentralized, epsilon-greedy selection and a 0.1 step size.
func NewConfig(playerID, numPlayers, numActions int) Config {
	s, _ := schedule.Constant(DefaultEpsilon)
	return Config{
		PlayerID:   playerID,
		NumPlayers: numPlayers,
		NumActions: numActions,
		StepSize:   0.1,
		Schedule:   s,
		Discount:   1.0,
	}
}

// Agent is a tabular Q-learning agent. It implements rl.Agent.
//
// It is not safe for concurrent use.
type Agent struct {
	playerID, numActions int
	stepSize, discount   float32

	encoder  *infostate.Encoder
	table    *qtable.Table
	schedule schedule.Schedule
	epsilon  float32
	selector policy.Selector
	shaper   *shaping.Shaper
	rng      *rand.Rand

	// Pending transition: state and action taken, waiting for the next call to be learned.
	hasPending bool
	prevKey    infostate.Key
	prevAction int

	lastLoss   float32
	hasLoss    bool
	numUpdates int
}

var _ rl.Agent = (*Agent)(nil)

// New creates a new Agent from the configuration.
func New(cfg Config) (*Agent, error) {
	if cfg.NumActions <= 0 {
		return nil, errors.Errorf("qlearner: NumActions=%d must be > 0", cfg.NumActions)
	}
	if !(cfg.StepSize > 0) || math32.IsInf(cfg.StepSize, 0) {
		return nil, errors.Errorf("qlearner: StepSize=%g must be > 0", cfg.StepSize)
	}
	if !(cfg.Discount >= 0 && cfg.Discount <= 1) {
		return nil, errors.Errorf("qlearner: Discount=%g must be in [0, 1]", cfg.Discount)
	}
	encoder, err := infostate.NewEncoder(cfg.PlayerID, cfg.NumPlayers, cfg.ObservationSize, cfg.Centralized)
	if err != nil {
		return nil, errors.WithMessage(err, "qlearner")
	}
	a := &Agent{
		playerID:   cfg.PlayerID,
		numActions: cfg.NumActions,
		stepSize:   cfg.StepSize,
		discount:   cfg.Discount,
		encoder:    encoder,
		table:      cfg.Table,
		schedule:   cfg.Schedule,
		selector:   cfg.Selector,
	}
	if a.table == nil {
		a.table = qtable.New(cfg.NumActions)
	} else if a.table.NumActions() != cfg.NumActions {
		return nil, errors.Errorf("qlearner: table has %d actions, but NumActions=%d", a.table.NumActions(), cfg.NumActions)
	}
	if a.schedule == nil {
		a.schedule, _ = schedule.Constant(DefaultEpsilon)
	}
	a.epsilon = a.schedule.Value()
	if a.selector == nil {
		a.selector = policy.EpsilonGreedy{NumActions: cfg.NumActions}
	}
	if len(cfg.Rules) > 0 {
		if len(cfg.Layout.PlayerPlanes) <= cfg.PlayerID {
			return nil, errors.Errorf("qlearner: reward rules given, but shaping layout only has planes for %d players",
				len(cfg.Layout.PlayerPlanes))
		}
		a.shaper = &shaping.Shaper{Layout: cfg.Layout, Rules: cfg.Rules}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	a.rng = rand.New(rand.NewPCG(seed, uint64(cfg.PlayerID)))
	return a, nil
}

// PlayerID implements rl.Agent.
func (a *Agent) PlayerID() int { return a.playerID }

// String implements rl.Agent.
func (a *Agent) String() string {
	kind := "decentralized"
	if a.encoder.Centralized() {
		kind = "centralized"
	}
	return fmt.Sprintf("qlearner(player=%d, %s, %s, %s, %s)", a.playerID, kind, a.selector, a.schedule, a.table)
}

// Table returns the agent's value table.
func (a *Agent) Table() *qtable.Table { return a.table }

// Epsilon returns the current exploration parameter.
func (a *Agent) Epsilon() float32 { return a.epsilon }

// HasPending returns whether there is a transition waiting to be learned.
func (a *Agent) HasPending() bool { return a.hasPending }

// LastLoss returns the loss (new value - target) of the last update, if there was one.
func (a *Agent) LastLoss() (loss float32, ok bool) { return a.lastLoss, a.hasLoss }

// NumUpdates returns the number of TD updates done so far.
func (a *Agent) NumUpdates() int { return a.numUpdates }

// Step implements rl.Agent: it returns the action to take, if ts is not terminal, and learns from the
// previous transition if there is one.
func (a *Agent) Step(ts *rl.TimeStep, opts rl.StepOptions) (*rl.StepOutput, error) {
	key, err := a.encoder.Encode(ts)
	if err != nil {
		return nil, err
	}

	// Act: not at terminal states.
	var output *rl.StepOutput
	var legal []int
	if !ts.Last {
		legal, err = a.encoder.ValidateLegalActions(ts, a.numActions)
		if err != nil {
			return nil, err
		}
		output, err = a.act(key, legal, opts)
		if err != nil {
			return nil, err
		}
	}

	// Learn: never during evaluation, and only if there is a pending transition.
	if a.hasPending && !opts.Evaluation {
		if err = a.learn(ts, key, legal); err != nil {
			return nil, err
		}
		if ts.Last {
			// Prepare for the next episode.
			a.hasPending = false
			return nil, nil
		}
	}

	if !opts.Evaluation {
		a.hasPending = output != nil
		if a.hasPending {
			a.prevKey = key
			a.prevAction = output.Action
		}
	}
	return output, nil
}

// act selects the action: evaluation uses a greedy policy and a read-only view of the table.
func (a *Agent) act(key infostate.Key, legal []int, opts rl.StepOptions) (*rl.StepOutput, error) {
	var values policy.ValueReader = a.table
	epsilon := a.epsilon
	if opts.Evaluation {
		values = a.table.ReadOnly()
		epsilon = 0
	}
	action, probs, err := a.selector.Select(values, key, legal, epsilon, a.rng)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", a)
	}
	if opts.Top1 || opts.Evaluation {
		action = policy.ArgMax(probs)
	}
	return &rl.StepOutput{Action: action, Probs: probs}, nil
}

// learn updates the value of the pending transition, and advances the exploration schedule.
func (a *Agent) learn(ts *rl.TimeStep, key infostate.Key, legal []int) error {
	reward, err := a.shaper.Reward(ts, a.playerID)
	if err != nil {
		return err
	}
	target := reward
	if !ts.Last {
		target += a.discount * a.table.MaxLegal(key, legal)
	}
	newValue, loss := a.table.TDUpdate(a.prevKey, a.prevAction, target, a.stepSize)
	a.lastLoss, a.hasLoss = loss, true
	a.numUpdates++
	a.epsilon = a.schedule.Step()
	if klog.V(2).Enabled() {
		klog.Infof("%s: update #%d, action=%d, reward=%g, target=%g, value=%g, loss=%g, epsilon=%g",
			a, a.numUpdates, a.prevAction, reward, target, newValue, loss, a.epsilon)
	}
	return nil
}
