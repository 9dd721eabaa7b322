// Package grouping merges configured sets of agents of a multi-agent
// environment into single logical agents. A grouped agent exposes tuple
// observations and actions that are the concatenation of its members', in
// group spec member order, and its reward is the sum of the member rewards.
package grouping

import (
	"fmt"
	"sort"

	"github.com/zeu5/marl-env/spaces"
	"github.com/zeu5/marl-env/types"
)

// IndividualRewardsKey is the info sub-key of a grouped agent carrying the
// per-member rewards before summation.
const IndividualRewardsKey = "individual_rewards"

// GroupSpec maps a group id to the ordered list of its member agent ids.
// Member order fixes the position of each member inside tuple observations
// and actions. An agent appears in at most one group; agents listed in no
// group keep their own identity.
type GroupSpec map[types.AgentID][]types.AgentID

type options struct {
	obsSpace types.Space
	actSpace types.Space
}

type Option func(*options)

// WithObservationSpace sets an explicit composite observation space for the
// grouped agents. Must be a tuple space.
func WithObservationSpace(s types.Space) Option {
	return func(o *options) { o.obsSpace = s }
}

// WithActionSpace sets an explicit composite action space for the grouped
// agents. Must be a tuple space.
func WithActionSpace(s types.Space) Option {
	return func(o *options) { o.actSpace = s }
}

// GroupedEnvironment decorates a MultiAgentEnvironment with a fixed GroupSpec.
// The grouping and the composite spaces are fixed at construction and never
// mutate; all episode state lives in the wrapped environment.
type GroupedEnvironment struct {
	env      types.MultiAgentEnvironment
	groups   GroupSpec
	memberOf map[types.AgentID]types.AgentID

	obsSpaces map[types.AgentID]types.Space
	actSpaces map[types.AgentID]types.Space
}

var _ types.MultiAgentEnvironment = &GroupedEnvironment{}
var _ types.SpaceProvider = &GroupedEnvironment{}

// NewGroupedEnvironment wraps env with the given group spec. Overlapping
// membership across groups fails with ErrInvalidGroupSpec; an explicit space
// that is not tuple shaped fails with ErrInvalidSpaceType. When no explicit
// spaces are given and the wrapped environment exposes per-agent spaces, the
// composite spaces are derived by concatenating the member spaces in member
// order.
func NewGroupedEnvironment(env types.MultiAgentEnvironment, groups GroupSpec, opts ...Option) (*GroupedEnvironment, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.obsSpace != nil {
		if _, ok := o.obsSpace.(*spaces.Tuple); !ok {
			return nil, fmt.Errorf("explicit observation space is %T, want tuple: %w", o.obsSpace, types.ErrInvalidSpaceType)
		}
	}
	if o.actSpace != nil {
		if _, ok := o.actSpace.(*spaces.Tuple); !ok {
			return nil, fmt.Errorf("explicit action space is %T, want tuple: %w", o.actSpace, types.ErrInvalidSpaceType)
		}
	}

	memberOf := make(map[types.AgentID]types.AgentID)
	for _, gid := range sortedGroupIDs(groups) {
		for _, member := range groups[gid] {
			if other, ok := memberOf[member]; ok {
				return nil, fmt.Errorf("agent %q belongs to groups %q and %q: %w", member, other, gid, types.ErrInvalidGroupSpec)
			}
			memberOf[member] = gid
		}
	}

	g := &GroupedEnvironment{
		env:       env,
		groups:    groups,
		memberOf:  memberOf,
		obsSpaces: make(map[types.AgentID]types.Space),
		actSpaces: make(map[types.AgentID]types.Space),
	}
	g.deriveSpaces(o)
	return g, nil
}

func sortedGroupIDs(groups GroupSpec) []types.AgentID {
	ids := make([]types.AgentID, 0, len(groups))
	for gid := range groups {
		ids = append(ids, gid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *GroupedEnvironment) deriveSpaces(o *options) {
	provider, _ := g.env.(types.SpaceProvider)
	for gid, members := range g.groups {
		if o.obsSpace != nil {
			g.obsSpaces[gid] = o.obsSpace
		} else if s, ok := concatSpaces(provider, members, types.SpaceProvider.ObservationSpace); ok {
			g.obsSpaces[gid] = s
		}
		if o.actSpace != nil {
			g.actSpaces[gid] = o.actSpace
		} else if s, ok := concatSpaces(provider, members, types.SpaceProvider.ActionSpace); ok {
			g.actSpaces[gid] = s
		}
	}
}

func concatSpaces(provider types.SpaceProvider, members []types.AgentID, lookup func(types.SpaceProvider, types.AgentID) (types.Space, bool)) (types.Space, bool) {
	if provider == nil {
		return nil, false
	}
	parts := make([]types.Space, len(members))
	for i, member := range members {
		s, ok := lookup(provider, member)
		if !ok {
			return nil, false
		}
		parts[i] = s
	}
	return spaces.NewTuple(parts...), true
}

// ObservationSpace reports the composite space of a group id, or delegates
// for ungrouped agents.
func (g *GroupedEnvironment) ObservationSpace(id types.AgentID) (types.Space, bool) {
	if s, ok := g.obsSpaces[id]; ok {
		return s, true
	}
	if provider, ok := g.env.(types.SpaceProvider); ok {
		return provider.ObservationSpace(id)
	}
	return nil, false
}

// ActionSpace reports the composite space of a group id, or delegates for
// ungrouped agents.
func (g *GroupedEnvironment) ActionSpace(id types.AgentID) (types.Space, bool) {
	if s, ok := g.actSpaces[id]; ok {
		return s, true
	}
	if provider, ok := g.env.(types.SpaceProvider); ok {
		return provider.ActionSpace(id)
	}
	return nil, false
}

// Reset delegates to the wrapped environment and collapses every group whose
// members are all present into one tuple-valued entry.
func (g *GroupedEnvironment) Reset() (types.ObservationDict, error) {
	obs, err := g.env.Reset()
	if err != nil {
		return nil, err
	}
	return g.groupObservations(obs), nil
}

// Step unpacks group actions to their members, delegates, and re-keys the
// results. A group is collapsed only when all its members are present in the
// underlying dict; members of a partially reporting group stay under their
// own ids for the round.
func (g *GroupedEnvironment) Step(actions types.ActionDict) (*types.StepResult, error) {
	ungrouped, err := g.ungroupActions(actions)
	if err != nil {
		return nil, err
	}
	res, err := g.env.Step(ungrouped)
	if err != nil {
		return nil, err
	}

	out := types.NewStepResult()
	out.Observations = g.groupObservations(res.Observations)
	out.Dones = g.groupDones(res.Dones)
	g.groupRewardsAndInfos(res, out)
	return out, nil
}

// Render delegates to the wrapped environment.
func (g *GroupedEnvironment) Render(mode string) {
	g.env.Render(mode)
}

func (g *GroupedEnvironment) ungroupActions(actions types.ActionDict) (types.ActionDict, error) {
	out := make(types.ActionDict, len(actions))
	for id, action := range actions {
		members, ok := g.groups[id]
		if !ok {
			out[id] = action
			continue
		}
		parts, ok := actionTuple(action)
		if !ok || len(parts) != len(members) {
			return nil, fmt.Errorf("group %q expects a tuple action of arity %d: %w", id, len(members), types.ErrKeyMismatch)
		}
		for i, member := range members {
			out[member] = parts[i]
		}
	}
	return out, nil
}

func actionTuple(action types.Action) ([]types.Action, bool) {
	switch a := action.(type) {
	case []types.Action:
		return a, true
	case []interface{}:
		// tuple space samples arrive as plain interface slices
		parts := make([]types.Action, len(a))
		for i, v := range a {
			parts[i] = v
		}
		return parts, true
	}
	return nil, false
}

// fullyPresent reports whether every member of the group appears as a key in
// the given per-round population.
func fullyPresent(members []types.AgentID, present func(types.AgentID) bool) bool {
	for _, member := range members {
		if !present(member) {
			return false
		}
	}
	return true
}

func (g *GroupedEnvironment) groupObservations(obs types.ObservationDict) types.ObservationDict {
	out := make(types.ObservationDict, len(obs))
	for id, o := range obs {
		if _, grouped := g.memberOf[id]; !grouped {
			out[id] = o
		}
	}
	for gid, members := range g.groups {
		if !fullyPresent(members, func(id types.AgentID) bool { _, ok := obs[id]; return ok }) {
			// partial group: present members keep their own ids
			for _, member := range members {
				if o, ok := obs[member]; ok {
					out[member] = o
				}
			}
			continue
		}
		tuple := make([]types.Observation, len(members))
		for i, member := range members {
			tuple[i] = obs[member]
		}
		out[gid] = tuple
	}
	return out
}

func (g *GroupedEnvironment) groupDones(dones types.DoneDict) types.DoneDict {
	out := make(types.DoneDict, len(dones))
	if all, ok := dones[types.DoneAll]; ok {
		// overall termination is never altered by grouping
		out[types.DoneAll] = all
	}
	for id, d := range dones {
		if id == types.DoneAll {
			continue
		}
		if _, grouped := g.memberOf[id]; !grouped {
			out[id] = d
		}
	}
	for gid, members := range g.groups {
		if !fullyPresent(members, func(id types.AgentID) bool { _, ok := dones[id]; return ok }) {
			for _, member := range members {
				if d, ok := dones[member]; ok {
					out[member] = d
				}
			}
			continue
		}
		done := true
		for _, member := range members {
			done = done && dones[member]
		}
		out[gid] = done
	}
	return out
}

func (g *GroupedEnvironment) groupRewardsAndInfos(res *types.StepResult, out *types.StepResult) {
	for id, r := range res.Rewards {
		if _, grouped := g.memberOf[id]; !grouped {
			out.Rewards[id] = r
		}
	}
	for id, info := range res.Infos {
		if _, grouped := g.memberOf[id]; !grouped {
			out.Infos[id] = info
		}
	}
	for gid, members := range g.groups {
		rewardsPresent := fullyPresent(members, func(id types.AgentID) bool { _, ok := res.Rewards[id]; return ok })
		if rewardsPresent {
			sum := 0.0
			individual := make(map[types.AgentID]float64, len(members))
			for _, member := range members {
				sum += res.Rewards[member]
				individual[member] = res.Rewards[member]
			}
			out.Rewards[gid] = sum
			info := make(types.Info)
			for _, member := range members {
				for k, v := range res.Infos[member] {
					info[k] = v
				}
			}
			info[IndividualRewardsKey] = individual
			out.Infos[gid] = info
			continue
		}
		for _, member := range members {
			if r, ok := res.Rewards[member]; ok {
				out.Rewards[member] = r
			}
			if info, ok := res.Infos[member]; ok {
				out.Infos[member] = info
			}
		}
	}
}
