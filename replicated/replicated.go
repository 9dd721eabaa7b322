// Package replicated turns N independent copies of a single-agent
// environment into one multi-agent environment. The replicas live separately
// from each other; the adapter fans reset and step calls across them and
// tracks which replicas have finished their episode.
package replicated

import (
	"fmt"

	"github.com/zeu5/marl-env/types"
)

// NumAgentsKey is the construction option fixing the replica count. It is
// removed from the config before the remainder is forwarded to each replica.
const NumAgentsKey = "num_agents"

// SingleAgentEnvironment is one stepped simulation hosting a single actor.
type SingleAgentEnvironment interface {
	Reset() (types.Observation, error)
	Step(action types.Action) (types.Observation, float64, bool, types.Info, error)
}

// Renderer is an optional capability of a single-agent environment.
type Renderer interface {
	Render(mode string)
}

// Spaced is an optional capability exposing the spaces of a single-agent
// environment. The adapter reads them from replica 0; replicas are assumed
// structurally identical.
type Spaced interface {
	ObservationSpace() types.Space
	ActionSpace() types.Space
}

// Factory constructs one single-agent environment from a config.
type Factory func(cfg types.Config) (SingleAgentEnvironment, error)

// Source designates the single-agent environment to replicate: either a
// registered name or a factory.
type Source struct {
	name    string
	factory Factory
}

// FromName resolves the environment through the default registry.
func FromName(name string) Source {
	return Source{name: name}
}

// FromFactory uses the given factory directly.
func FromFactory(factory Factory) Source {
	return Source{factory: factory}
}

func (s Source) resolve() (Factory, error) {
	if s.factory != nil {
		return s.factory, nil
	}
	return DefaultRegistry.Resolve(s.name)
}

// Constructor builds an adapter instance from a construction config.
type Constructor func(cfg types.Config) (*Environment, error)

// MakeReplicated returns a constructor for multi-agent environments backed by
// replicas of the given source. The constructor reads NumAgentsKey (default
// 1) from its config and forwards the remainder, unchanged, to every replica
// construction.
func MakeReplicated(source Source) Constructor {
	return func(cfg types.Config) (*Environment, error) {
		factory, err := source.resolve()
		if err != nil {
			return nil, err
		}
		num, rest := cfg.PopInt(NumAgentsKey, 1)
		if num < 1 {
			return nil, fmt.Errorf("%s must be positive, got %d", NumAgentsKey, num)
		}
		replicas := make([]SingleAgentEnvironment, num)
		for i := range replicas {
			replica, err := factory(rest.Clone())
			if err != nil {
				return nil, fmt.Errorf("constructing replica %d: %w", i, err)
			}
			replicas[i] = replica
		}
		return newEnvironment(replicas), nil
	}
}

// Environment implements the multi-agent contract over integer-indexed
// replicas 0..n-1. Each replica owns disjoint state; the only state the
// adapter itself holds is the set of replicas done since the last reset.
type Environment struct {
	replicas []SingleAgentEnvironment
	dones    map[types.AgentID]bool

	obsSpace types.Space
	actSpace types.Space
}

var _ types.MultiAgentEnvironment = &Environment{}
var _ types.SpaceProvider = &Environment{}

func newEnvironment(replicas []SingleAgentEnvironment) *Environment {
	env := &Environment{
		replicas: replicas,
		dones:    make(map[types.AgentID]bool),
	}
	if spaced, ok := replicas[0].(Spaced); ok {
		env.obsSpace = spaced.ObservationSpace()
		env.actSpace = spaced.ActionSpace()
	}
	return env
}

// NumAgents is the replica count.
func (e *Environment) NumAgents() int {
	return len(e.replicas)
}

// ObservationSpace reports the shared observation space for any replica id.
func (e *Environment) ObservationSpace(id types.AgentID) (types.Space, bool) {
	if _, err := e.replica(id); err != nil || e.obsSpace == nil {
		return nil, false
	}
	return e.obsSpace, true
}

// ActionSpace reports the shared action space for any replica id.
func (e *Environment) ActionSpace(id types.AgentID) (types.Space, bool) {
	if _, err := e.replica(id); err != nil || e.actSpace == nil {
		return nil, false
	}
	return e.actSpace, true
}

func (e *Environment) replica(id types.AgentID) (SingleAgentEnvironment, error) {
	i, ok := types.ReplicaIndex(id)
	if !ok || i >= len(e.replicas) {
		return nil, fmt.Errorf("no replica %q among %d replicas: %w", id, len(e.replicas), types.ErrKeyMismatch)
	}
	return e.replicas[i], nil
}

// Reset starts a new episode on every replica and clears the done set.
func (e *Environment) Reset() (types.ObservationDict, error) {
	e.dones = make(map[types.AgentID]bool)
	obs := make(types.ObservationDict, len(e.replicas))
	for i, replica := range e.replicas {
		o, err := replica.Reset()
		if err != nil {
			return nil, fmt.Errorf("resetting replica %d: %w", i, err)
		}
		obs[types.ReplicaID(i)] = o
	}
	return obs, nil
}

// Step forwards each action to its replica. Replicas without an action this
// round are skipped entirely. A replica reporting done enters the done set
// and stays there until the next Reset; DoneAll turns true once every replica
// has reported done at least once.
func (e *Environment) Step(actions types.ActionDict) (*types.StepResult, error) {
	res := types.NewStepResult()
	for id, action := range actions {
		replica, err := e.replica(id)
		if err != nil {
			return nil, err
		}
		obs, reward, done, info, err := replica.Step(action)
		if err != nil {
			return nil, fmt.Errorf("stepping replica %s: %w", id, err)
		}
		res.Observations[id] = obs
		res.Rewards[id] = reward
		res.Dones[id] = done
		if info == nil {
			info = make(types.Info)
		}
		res.Infos[id] = info
		if done {
			e.dones[id] = true
		}
	}
	res.Dones[types.DoneAll] = len(e.dones) == len(e.replicas)
	return res, nil
}

// Render delegates to replica 0 when it supports rendering.
func (e *Environment) Render(mode string) {
	if r, ok := e.replicas[0].(Renderer); ok {
		r.Render(mode)
	}
}
