// Package episodes runs episodes of an environment with a set of agents, both for training (self-play)
// and for evaluation against baseline agents.
package episodes

import (
	"context"
	"fmt"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"strings"
)

// Run plays one episode of env, with agents[p] acting for player p.
//
// If opts.Evaluation is false, at the end of the episode every agent is stepped once more with the
// terminal TimeStep, so they can learn from the final rewards.
//
// If trajectory is not nil, every TimeStep of the episode is appended to it.
func Run(env rl.Environment, agents []rl.Agent, opts []rl.StepOptions, trajectory *[]*rl.TimeStep) (final *rl.TimeStep, err error) {
	if len(agents) != env.NumPlayers() || len(opts) != len(agents) {
		return nil, errors.Errorf("episodes.Run: %d agents and %d options given for an environment of %d players",
			len(agents), len(opts), env.NumPlayers())
	}
	ts := env.Reset()
	for !ts.Last {
		if trajectory != nil {
			*trajectory = append(*trajectory, ts)
		}
		player := ts.CurrentPlayer
		if player < 0 || player >= len(agents) {
			return nil, errors.Wrapf(rl.ErrInvalidObservation, "current player %d out of range", player)
		}
		output, err := agents[player].Step(ts, opts[player])
		if err != nil {
			return nil, errors.WithMessagef(err, "player %d (%s) failed to step", player, agents[player])
		}
		if output == nil {
			return nil, errors.Errorf("player %d (%s) returned no action at a non-terminal step", player, agents[player])
		}
		ts, err = env.Step(output.Action)
		if err != nil {
			return nil, err
		}
	}
	if trajectory != nil {
		*trajectory = append(*trajectory, ts)
	}

	// Episode is over, step all learning agents with the final TimeStep.
	for player, agent := range agents {
		if opts[player].Evaluation {
			continue
		}
		if _, err = agent.Step(ts, opts[player]); err != nil {
			return nil, errors.WithMessagef(err, "player %d (%s) failed at the end of the episode", player, agent)
		}
	}
	return ts, nil
}

// Train runs one self-play training episode: all agents step in training mode.
func Train(env rl.Environment, agents []rl.Agent) (final *rl.TimeStep, err error) {
	return Run(env, agents, make([]rl.StepOptions, len(agents)), nil)
}

// EvalConfig configures Evaluate.
type EvalConfig struct {
	// NumEpisodes played for each seat.
	NumEpisodes int

	// Top1 makes the evaluated agent play its most likely action.
	Top1 bool

	// KeepLosses is the max number of lost episodes per seat whose trajectories are kept in the results.
	KeepLosses int

	// Parallelism is the max number of seats evaluated concurrently. If <= 0 there is no limit.
	Parallelism int
}

// SeatResults holds the results for the evaluated agent at one seat.
type SeatResults struct {
	Wins, Losses, Draws int

	// LostTrajectories are the first EvalConfig.KeepLosses lost episodes.
	LostTrajectories [][]*rl.TimeStep
}

// Results of Evaluate.
type Results struct {
	NumEpisodes int
	Seats       []SeatResults
}

// WinRates returns the fraction of episodes won at each seat.
func (r *Results) WinRates() []float64 {
	rates := make([]float64, len(r.Seats))
	for seat, s := range r.Seats {
		rates[seat] = float64(s.Wins) / float64(r.NumEpisodes)
	}
	return rates
}

// LossRates returns the fraction of episodes lost at each seat.
func (r *Results) LossRates() []float64 {
	rates := make([]float64, len(r.Seats))
	for seat, s := range r.Seats {
		rates[seat] = float64(s.Losses) / float64(r.NumEpisodes)
	}
	return rates
}

// String implements fmt.Stringer.
func (r *Results) String() string {
	parts := make([]string, 0, len(r.Seats))
	for seat, s := range r.Seats {
		parts = append(parts, fmt.Sprintf("seat %d: %d wins / %d losses / %d draws", seat, s.Wins, s.Losses, s.Draws))
	}
	return fmt.Sprintf("%d episodes per seat: %s", r.NumEpisodes, strings.Join(parts, ", "))
}

// Evaluate the trained agents against the opponents: for each seat p, trained[p] plays as player p
// and opponents[q] play the other seats q != p, all in evaluation mode.
//
// newEnv is called once per seat. Seats are evaluated concurrently, except if they share some agent,
// since agents are not safe for concurrent use.
func Evaluate(ctx context.Context, newEnv func() rl.Environment, trained, opponents []rl.Agent, cfg EvalConfig) (*Results, error) {
	if len(trained) != len(opponents) {
		return nil, errors.Errorf("episodes.Evaluate: %d trained agents, but %d opponents", len(trained), len(opponents))
	}
	if cfg.NumEpisodes <= 0 {
		return nil, errors.Errorf("episodes.Evaluate: NumEpisodes=%d must be > 0", cfg.NumEpisodes)
	}
	numSeats := len(trained)
	seatsAgents := make([][]rl.Agent, numSeats)
	for seat := range numSeats {
		seatsAgents[seat] = append([]rl.Agent(nil), opponents...)
		seatsAgents[seat][seat] = trained[seat]
	}
	results := &Results{NumEpisodes: cfg.NumEpisodes, Seats: make([]SeatResults, numSeats)}

	g, seatsCtx := errgroup.WithContext(ctx)
	if sharesAgents(seatsAgents) {
		g.SetLimit(1)
	} else if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	for seat := range numSeats {
		g.Go(func() error {
			return evaluateSeat(seatsCtx, newEnv(), seat, seatsAgents[seat], cfg, &results.Seats[seat])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	klog.V(1).Infof("Evaluation: %s", results)
	return results, nil
}

// sharesAgents returns whether any agent is used in more than one seat.
func sharesAgents(seatsAgents [][]rl.Agent) bool {
	seenAt := make(map[rl.Agent]int)
	for seat, agents := range seatsAgents {
		for _, agent := range agents {
			if prev, found := seenAt[agent]; found && prev != seat {
				return true
			}
			seenAt[agent] = seat
		}
	}
	return false
}

func evaluateSeat(ctx context.Context, env rl.Environment, seat int, agents []rl.Agent, cfg EvalConfig, results *SeatResults) error {
	opts := make([]rl.StepOptions, len(agents))
	for player := range opts {
		opts[player].Evaluation = true
	}
	opts[seat].Top1 = cfg.Top1
	for range cfg.NumEpisodes {
		if ctx.Err() != nil {
			return nil
		}
		var trajectory []*rl.TimeStep
		var keep *[]*rl.TimeStep
		if len(results.LostTrajectories) < cfg.KeepLosses {
			keep = &trajectory
		}
		final, err := Run(env, agents, opts, keep)
		if err != nil {
			return errors.WithMessagef(err, "evaluating seat %d", seat)
		}
		reward, err := final.Reward(seat)
		if err != nil {
			return err
		}
		switch {
		case reward > 0:
			results.Wins++
		case reward < 0:
			results.Losses++
			if keep != nil {
				results.LostTrajectories = append(results.LostTrajectories, trajectory)
			}
		default:
			results.Draws++
		}
	}
	return nil
}
