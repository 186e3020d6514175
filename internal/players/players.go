// Package players provides a factory of agents from configuration strings.
// It also allows agent providers to register themselves.
package players

import (
	"github.com/janpfeifer/qlearner/internal/generics"
	"github.com/janpfeifer/qlearner/internal/parameters"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"strings"
)

// Module must implement NewAgent, called to create an agent for a player of an environment.
// The module should pop from params the parameters it uses: any parameters left are reported as errors.
type Module interface {
	NewAgent(playerID int, env rl.Environment, params parameters.Params) (rl.Agent, error)
}

// ModuleFunc is an adapter to use a function as a Module.
type ModuleFunc func(playerID int, env rl.Environment, params parameters.Params) (rl.Agent, error)

// NewAgent implements Module.
func (fn ModuleFunc) NewAgent(playerID int, env rl.Environment, params parameters.Params) (rl.Agent, error) {
	return fn(playerID, env, params)
}

var (
	// Registered modules.
	keywordToModules = make(map[string]Module)
)

// RegisterModule so it can be used by any of the front-ends.
func RegisterModule(name string, module Module) {
	keywordToModules[name] = module
}

// RegisteredModules returns the sorted names of the registered modules.
func RegisteredModules() []string {
	return generics.KeysSlice(keywordToModules)
}

var (
	// DefaultAgentConfig is used if no configuration was given.
	DefaultAgentConfig = "qlearner"
)

// New creates a new agent for playerID in env, given the configuration string.
//
// Args:
//
//	config: the module name optionally followed by a colon (":") and a comma-separated list of parameters
//		with optional values associated. E.g.: "qlearner:step_size=0.1,discount=0.6,shaping=likeable".
//		If empty, DefaultAgentConfig is used.
//
// More details on the config are dependent on the module used.
func New(playerID int, env rl.Environment, config string) (rl.Agent, error) {
	if config == "" {
		config = DefaultAgentConfig
	}

	// Find moduleName.
	moduleName, config, _ := strings.Cut(config, ":")
	module, ok := keywordToModules[moduleName]
	if !ok {
		if len(keywordToModules) == 0 {
			return nil, errors.Errorf("unknown agent %q: no modules registered, perhaps you need to "+
				"import _ \"github.com/janpfeifer/qlearner/internal/players/default\" to your binary ?", moduleName)
		}
		return nil, errors.Errorf("unknown agent %q, registered agents are %q", moduleName, RegisteredModules())
	}

	params := parameters.NewFromConfigString(config)
	agent, err := module.NewAgent(playerID, env, params)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create agent %q for player %d", moduleName, playerID)
	}
	if err = parameters.CheckAllUsed(params); err != nil {
		return nil, errors.WithMessagef(err, "agent %q", moduleName)
	}
	return agent, nil
}
