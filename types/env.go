package types

import (
	"fmt"
	"strconv"
)

// DoneAll is the reserved done-dict key carrying whole-episode termination.
// Every Step result must include it.
const DoneAll AgentID = "__all__"

// AgentID identifies one acting participant within an episode. Ids are only
// stable for the lifetime of an episode and agents may appear or disappear
// between steps.
type AgentID string

// ReplicaID is the id of an integer-indexed agent (e.g. a replica of the
// replicated adapter).
func ReplicaID(i int) AgentID {
	return AgentID(strconv.Itoa(i))
}

// ReplicaIndex recovers the integer index from a replica id.
func ReplicaIndex(id AgentID) (int, bool) {
	i, err := strconv.Atoi(string(id))
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Observation of a single agent. Opaque to this package.
type Observation interface{}

// Action of a single agent. Opaque to this package.
type Action interface{}

// Info record attached to one agent for one round.
type Info map[string]interface{}

type ObservationDict map[AgentID]Observation
type ActionDict map[AgentID]Action
type RewardDict map[AgentID]float64
type DoneDict map[AgentID]bool
type InfoDict map[AgentID]Info

// StepResult bundles the per-agent results of one round. A fresh value is
// constructed every step, never aliased across rounds.
type StepResult struct {
	Observations ObservationDict
	Rewards      RewardDict
	Dones        DoneDict
	Infos        InfoDict
}

// NewStepResult returns a result with all four dicts allocated.
func NewStepResult() *StepResult {
	return &StepResult{
		Observations: make(ObservationDict),
		Rewards:      make(RewardDict),
		Dones:        make(DoneDict),
		Infos:        make(InfoDict),
	}
}

// MultiAgentEnvironment hosts multiple independently acting agents and is
// driven one synchronized round at a time by an external loop. The keys of
// the dict returned by Reset (and of each Step result) are exactly the agents
// ready to act; the population may change between calls.
type MultiAgentEnvironment interface {
	// Reset starts a new episode, clearing all episode-scoped state, and
	// returns an observation for every ready agent.
	Reset() (ObservationDict, error)
	// Step consumes actions for the currently acting agents. The done dict of
	// the result always carries DoneAll; once it is true the driver must call
	// Reset before stepping again.
	Step(actions ActionDict) (*StepResult, error)
	// Render is a best-effort visualization side effect. It never mutates
	// state and ignores unsupported modes.
	Render(mode string)
}

// SpaceProvider is an optional capability of a MultiAgentEnvironment exposing
// per-agent spaces. The grouping wrapper uses it to derive composite spaces
// when no explicit ones are given.
type SpaceProvider interface {
	ObservationSpace(id AgentID) (Space, bool)
	ActionSpace(id AgentID) (Space, bool)
}

// Base is an embeddable default implementation of the contract. Reset and
// Step report ErrNotImplemented until overridden, Render does nothing.
type Base struct{}

var _ MultiAgentEnvironment = &Base{}

func (b *Base) Reset() (ObservationDict, error) {
	return nil, fmt.Errorf("reset: %w", ErrNotImplemented)
}

func (b *Base) Step(ActionDict) (*StepResult, error) {
	return nil, fmt.Errorf("step: %w", ErrNotImplemented)
}

func (b *Base) Render(string) {}

// ValidateStepResult checks an implementer's step result at the contract
// boundary. A missing DoneAll entry is a contract violation, never silently
// defaulted.
func ValidateStepResult(res *StepResult) error {
	if res == nil {
		return fmt.Errorf("nil step result: %w", ErrMissingAggregateKey)
	}
	if _, ok := res.Dones[DoneAll]; !ok {
		return fmt.Errorf("done dict has no %q entry: %w", DoneAll, ErrMissingAggregateKey)
	}
	return nil
}
