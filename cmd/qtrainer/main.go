// qtrainer trains tabular Q-learning agents on tic-tac-toe by self-play, periodically evaluating them
// against random players and against each other. Optionally it saves the learned tables and lets one
// play against the trained agents, switching sides after each game.
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/janpfeifer/must"
	"github.com/janpfeifer/qlearner/internal/episodes"
	"github.com/janpfeifer/qlearner/internal/games/tictactoe"
	"github.com/janpfeifer/qlearner/internal/players"
	_ "github.com/janpfeifer/qlearner/internal/players/default"
	"github.com/janpfeifer/qlearner/internal/profilers"
	"github.com/janpfeifer/qlearner/internal/qlearner"
	"github.com/janpfeifer/qlearner/internal/randomagent"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/janpfeifer/qlearner/internal/ui/cli"
	"github.com/janpfeifer/qlearner/internal/ui/spinning"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"os"
	"sync/atomic"
	"time"
)

var (
	flagPlayers = [2]*string{
		flag.String("ai0", "", "Configuration string for the agent playing first (X). Default is \"qlearner\"."),
		flag.String("ai1", "", "Configuration string for the agent playing second (O). Default is \"qlearner\"."),
	}
	flagNumEpisodes  = flag.Int("num_episodes", 100_000, "Number of self-play training episodes.")
	flagEvalEvery    = flag.Int("eval_every", 10_000, "Evaluate every these many training episodes. If <= 0, only evaluate at the end.")
	flagEvalEpisodes = flag.Int("eval_episodes", 1_000, "Number of episodes per seat in each evaluation.")
	flagShowLosses   = flag.Int("show_losses", 3, "Number of lost episodes per seat to display in the last evaluation.")
	flagParallelism  = flag.Int("parallelism", 0, "If > 0, max number of seats evaluated concurrently.")
	flagSave         = flag.String("save", "", "If set, the tables of the Q-learning agents are saved to "+
		"\"<save>_<player>.qtable\" at the end of the training.")
	flagInteractive = flag.Bool("interactive_play", false, "After training, play against the trained agents until the input ends (Ctrl+D).")
	flagHumanPlayer = flag.Int("human_player", 1, "Player (0 or 1) the human plays as in the first game of -interactive_play.")
	flagSeed        = flag.Uint64("seed", 13, "Seed used by the random baseline players.")
	flagSpinning    = flag.Bool("spinning", true, "Display the training progress in a spinning status line.")
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagNumEpisodes < 0 || *flagEvalEpisodes <= 0 {
		klog.Exitf("Invalid -num_episodes=%d or -eval_episodes=%d", *flagNumEpisodes, *flagEvalEpisodes)
	}
	if *flagHumanPlayer < 0 || *flagHumanPlayer >= tictactoe.NumPlayers {
		klog.Exitf("Invalid -human_player=%d, it must be 0 or 1", *flagHumanPlayer)
	}

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	prof := must.M1(profilers.Setup(globalCtx))
	defer prof.OnQuit()

	env := tictactoe.New()
	agents, randoms := createAgents(env)
	must.M(train(env, agents, randoms))
	if globalCtx.Err() != nil {
		// Interrupted.
		return
	}
	if *flagSave != "" {
		must.M(saveTables(agents))
	}
	if *flagInteractive {
		ui := cli.New(true, false)
		numGames, err := ui.PlayLoop(agents, *flagHumanPlayer)
		if err != nil {
			klog.Exitf("Failed to play: %+v", err)
		}
		fmt.Printf("Played %d games.\n", numGames)
	}
}

// createAgents creates the agents to train, from the -ai0/-ai1 flags, and the random baseline opponents.
func createAgents(env rl.Environment) (agents, randoms []rl.Agent) {
	agents = make([]rl.Agent, env.NumPlayers())
	randoms = make([]rl.Agent, env.NumPlayers())
	for playerID := range env.NumPlayers() {
		agent, err := players.New(playerID, env, *flagPlayers[playerID])
		if err != nil {
			klog.Exitf("Failed to create agent for player %d: %+v", playerID, err)
		}
		agents[playerID] = agent
		randoms[playerID] = must.M1(randomagent.New(playerID, env.NumActions(), *flagSeed))
		fmt.Printf("Player %d: %s\n", playerID, agent)
	}
	return
}

func newEnv() rl.Environment { return tictactoe.New() }

// train runs the self-play training episodes, with periodic evaluations.
func train(env rl.Environment, agents, randoms []rl.Agent) error {
	var count atomic.Int64
	status := func() string {
		return fmt.Sprintf("training: %d / %d episodes", count.Load(), *flagNumEpisodes)
	}
	var spinner *spinning.Spinning
	startSpinner := func() {
		if *flagSpinning {
			spinner = spinning.New(globalCtx, os.Stdout, status)
		}
	}
	stopSpinner := func() {
		if spinner != nil {
			spinner.Done()
			spinner = nil
		}
	}
	defer stopSpinner()

	startSpinner()
	for episode := 1; episode <= *flagNumEpisodes; episode++ {
		if globalCtx.Err() != nil {
			return nil
		}
		if _, err := episodes.Train(env, agents); err != nil {
			return errors.WithMessagef(err, "training episode %d", episode)
		}
		count.Store(int64(episode))
		if *flagEvalEvery > 0 && episode%*flagEvalEvery == 0 && episode < *flagNumEpisodes {
			stopSpinner()
			if err := evaluate(episode, agents, randoms, 0); err != nil {
				return err
			}
			startSpinner()
		}
	}
	stopSpinner()
	return evaluate(*flagNumEpisodes, agents, randoms, *flagShowLosses)
}

// evaluate the agents against the random players and against each other, and print the results.
// If showLosses > 0, that many lost episodes per seat against the random players are printed.
func evaluate(episode int, agents, randoms []rl.Agent, showLosses int) error {
	cfg := episodes.EvalConfig{
		NumEpisodes: *flagEvalEpisodes,
		KeepLosses:  showLosses,
		Parallelism: *flagParallelism,
	}
	vsRandom, err := episodes.Evaluate(globalCtx, newEnv, agents, randoms, cfg)
	if err != nil {
		return errors.WithMessage(err, "evaluating against random players")
	}
	cfg.KeepLosses = 0
	vsEachOther, err := episodes.Evaluate(globalCtx, newEnv, agents, agents, cfg)
	if err != nil {
		return errors.WithMessage(err, "evaluating agents against each other")
	}
	fmt.Printf("\nEpisode %d:\n", episode)
	fmt.Printf("  - vs random:     %s\n", vsRandom)
	fmt.Printf("  - vs each other: %s\n", vsEachOther)
	for playerID, agent := range agents {
		if qAgent, ok := agent.(*qlearner.Agent); ok {
			fmt.Printf("  - %s: %d states, %d updates, epsilon=%g\n", qAgent, qAgent.Table().Len(), qAgent.NumUpdates(), qAgent.Epsilon())
		} else {
			fmt.Printf("  - player %d: %s\n", playerID, agent)
		}
	}
	printLosses(vsRandom)
	return nil
}

// printLosses prints every board of the lost episodes kept in the results.
func printLosses(results *episodes.Results) {
	for seat, seatResults := range results.Seats {
		for idx, trajectory := range seatResults.LostTrajectories {
			boards, err := trajectoryBoards(trajectory, seat)
			if err != nil {
				klog.Errorf("Failed to display lost episode: %+v", err)
				continue
			}
			fmt.Printf("\n  Seat %d (%s), lost episode #%d (%d moves):\n%s\n",
				seat, tictactoe.MarkOf(seat), idx, len(trajectory)-1, boards)
		}
	}
}
