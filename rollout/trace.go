package rollout

import "github.com/zeu5/marl-env/types"

// Trace of an episode as triplets (observations, actions, step result).
type Trace struct {
	observations []types.ObservationDict
	actions      []types.ActionDict
	results      []*types.StepResult
}

func NewTrace() *Trace {
	return &Trace{
		observations: make([]types.ObservationDict, 0),
		actions:      make([]types.ActionDict, 0),
		results:      make([]*types.StepResult, 0),
	}
}

func (t *Trace) Append(obs types.ObservationDict, actions types.ActionDict, res *types.StepResult) {
	t.observations = append(t.observations, obs)
	t.actions = append(t.actions, actions)
	t.results = append(t.results, res)
}

func (t *Trace) Len() int {
	return len(t.observations)
}

func (t *Trace) Get(i int) (types.ObservationDict, types.ActionDict, *types.StepResult, bool) {
	if i >= len(t.observations) {
		return nil, nil, nil, false
	}
	return t.observations[i], t.actions[i], t.results[i], true
}

func (t *Trace) Last() (types.ObservationDict, types.ActionDict, *types.StepResult, bool) {
	if len(t.observations) == 0 {
		return nil, nil, nil, false
	}
	last := len(t.observations) - 1
	return t.observations[last], t.actions[last], t.results[last], true
}

// Reward is the total reward accumulated over the trace, summed across
// agents.
func (t *Trace) Reward() float64 {
	total := 0.0
	for _, res := range t.results {
		for _, r := range res.Rewards {
			total += r
		}
	}
	return total
}
