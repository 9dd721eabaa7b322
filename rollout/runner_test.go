package rollout

import (
	"errors"
	"testing"

	"github.com/zeu5/marl-env/types"
)

// countdownEnv terminates every episode after a fixed number of steps.
type countdownEnv struct {
	episodeLen int
	steps      int
	includeAll bool
}

var _ types.MultiAgentEnvironment = &countdownEnv{}

func (c *countdownEnv) Reset() (types.ObservationDict, error) {
	c.steps = 0
	return types.ObservationDict{"a": 0}, nil
}

func (c *countdownEnv) Step(actions types.ActionDict) (*types.StepResult, error) {
	c.steps++
	res := types.NewStepResult()
	res.Observations["a"] = c.steps
	res.Rewards["a"] = 1
	res.Dones["a"] = c.steps >= c.episodeLen
	res.Infos["a"] = types.Info{}
	if c.includeAll {
		res.Dones[types.DoneAll] = c.steps >= c.episodeLen
	}
	return res, nil
}

func (c *countdownEnv) Render(string) {}

// constantPolicy always acts with the same action for every ready agent.
type constantPolicy struct{}

func (constantPolicy) NextActions(step int, obs types.ObservationDict) (types.ActionDict, bool) {
	actions := make(types.ActionDict, len(obs))
	for id := range obs {
		actions[id] = 0
	}
	return actions, len(actions) > 0
}

func (constantPolicy) Update(int, types.ObservationDict, types.ActionDict, *types.StepResult) {}

func (constantPolicy) Reset() {}

func TestRunnerStopsOnAggregateDone(t *testing.T) {
	env := &countdownEnv{episodeLen: 3, includeAll: true}
	runner := NewRunner("test", constantPolicy{}, env, &Config{
		Episodes: 2,
		Horizon:  100,
		Quiet:    true,
	})
	if err := runner.Run(); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	rewards := runner.EpisodeRewards()
	if len(rewards) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(rewards))
	}
	for i, r := range rewards {
		if r != 3 {
			t.Errorf("episode %d: expected 3 steps of reward 1, got %f", i, r)
		}
	}
	for i, trace := range runner.Traces() {
		if trace.Len() != 3 {
			t.Errorf("episode %d: expected a trace of 3 steps, got %d", i, trace.Len())
		}
	}
}

func TestRunnerHonorsHorizon(t *testing.T) {
	env := &countdownEnv{episodeLen: 1000, includeAll: true}
	runner := NewRunner("test", constantPolicy{}, env, &Config{
		Episodes: 1,
		Horizon:  5,
		Quiet:    true,
	})
	if err := runner.Run(); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if trace := runner.Traces()[0]; trace.Len() != 5 {
		t.Errorf("expected the horizon to cap the episode at 5 steps, got %d", trace.Len())
	}
}

func TestRunnerRejectsMissingAggregateKey(t *testing.T) {
	env := &countdownEnv{episodeLen: 3, includeAll: false}
	runner := NewRunner("test", constantPolicy{}, env, &Config{
		Episodes: 1,
		Horizon:  10,
		Quiet:    true,
	})
	err := runner.Run()
	if !errors.Is(err, types.ErrMissingAggregateKey) {
		t.Errorf("expected a contract violation for the missing aggregate key, got %v", err)
	}
}
