// Package policies holds simple per-agent action selection strategies used by
// the rollout runner.
package policies

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/zeu5/marl-env/spaces"
	"github.com/zeu5/marl-env/types"
)

// Policy picks one action per ready agent each round.
type Policy interface {
	NextActions(step int, obs types.ObservationDict) (types.ActionDict, bool)
	Update(step int, obs types.ObservationDict, actions types.ActionDict, res *types.StepResult)
	Reset()
}

// Random samples every acting agent's action space.
type Random struct {
	provider types.SpaceProvider
	rand     *rand.Rand
}

var _ Policy = &Random{}

func NewRandom(provider types.SpaceProvider) *Random {
	return &Random{
		provider: provider,
		rand:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

func (r *Random) Reset() {}

func (r *Random) NextActions(step int, obs types.ObservationDict) (types.ActionDict, bool) {
	actions := make(types.ActionDict, len(obs))
	for id := range obs {
		space, ok := r.provider.ActionSpace(id)
		if !ok {
			return nil, false
		}
		actions[id] = space.Sample(r.rand)
	}
	return actions, len(actions) > 0
}

func (r *Random) Update(int, types.ObservationDict, types.ActionDict, *types.StepResult) {}

// SoftMax is a tabular Q policy over observation fingerprints for agents with
// discrete action spaces, drawing actions from a Boltzmann distribution over
// the Q values.
type SoftMax struct {
	QTable   map[types.AgentID]map[string][]float64
	provider types.SpaceProvider
	alpha    float64
	gamma    float64
	rand     *rand.Rand
}

var _ Policy = &SoftMax{}

func NewSoftMax(provider types.SpaceProvider, alpha, gamma float64) *SoftMax {
	return &SoftMax{
		QTable:   make(map[types.AgentID]map[string][]float64),
		provider: provider,
		alpha:    alpha,
		gamma:    gamma,
		rand:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

func (s *SoftMax) Reset() {
	s.QTable = make(map[types.AgentID]map[string][]float64)
}

// fingerprint keys the Q table by a stable rendering of the observation.
func fingerprint(obs types.Observation) string {
	return fmt.Sprintf("%v", obs)
}

func (s *SoftMax) qValues(id types.AgentID, obsKey string, n int) []float64 {
	table, ok := s.QTable[id]
	if !ok {
		table = make(map[string][]float64)
		s.QTable[id] = table
	}
	vals, ok := table[obsKey]
	if !ok {
		vals = make([]float64, n)
		table[obsKey] = vals
	}
	return vals
}

func (s *SoftMax) NextActions(step int, obs types.ObservationDict) (types.ActionDict, bool) {
	actions := make(types.ActionDict, len(obs))
	for id, o := range obs {
		space, ok := s.provider.ActionSpace(id)
		if !ok {
			return nil, false
		}
		discrete, ok := space.(*spaces.Discrete)
		if !ok {
			return nil, false
		}
		vals := s.qValues(id, fingerprint(o), discrete.N)

		sum := float64(0)
		weights := make([]float64, len(vals))
		for i, val := range vals {
			weights[i] = math.Exp(val)
			sum += weights[i]
		}
		for i := range weights {
			weights[i] /= sum
		}
		i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
		if !ok {
			return nil, false
		}
		actions[id] = i
	}
	return actions, len(actions) > 0
}

func (s *SoftMax) Update(step int, obs types.ObservationDict, actions types.ActionDict, res *types.StepResult) {
	for id, action := range actions {
		i, ok := action.(int)
		if !ok {
			continue
		}
		o, ok := obs[id]
		if !ok {
			continue
		}
		vals, ok := s.QTable[id][fingerprint(o)]
		if !ok || i >= len(vals) {
			continue
		}
		next := float64(0)
		if nextObs, ok := res.Observations[id]; ok {
			if nextVals, ok := s.QTable[id][fingerprint(nextObs)]; ok {
				for _, v := range nextVals {
					if v > next {
						next = v
					}
				}
			}
		}
		reward := res.Rewards[id]
		vals[i] = (1-s.alpha)*vals[i] + s.alpha*(reward+s.gamma*next)
	}
}
