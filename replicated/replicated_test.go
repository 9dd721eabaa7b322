package replicated

import (
	"errors"
	"testing"

	"github.com/zeu5/marl-env/types"
)

// terminalEnv finishes its episode after a configurable number of steps.
type terminalEnv struct {
	stepsToDone int
	steps       int
	resets      int
	cfg         types.Config
}

var _ SingleAgentEnvironment = &terminalEnv{}

func (e *terminalEnv) Reset() (types.Observation, error) {
	e.resets++
	e.steps = 0
	return "start", nil
}

func (e *terminalEnv) Step(action types.Action) (types.Observation, float64, bool, types.Info, error) {
	e.steps++
	return "obs", 1.0, e.steps >= e.stepsToDone, nil, nil
}

func terminalFactory(stepsToDone int) (Factory, *[]*terminalEnv) {
	built := make([]*terminalEnv, 0)
	factory := func(cfg types.Config) (SingleAgentEnvironment, error) {
		env := &terminalEnv{stepsToDone: stepsToDone, cfg: cfg}
		built = append(built, env)
		return env, nil
	}
	return factory, &built
}

func TestOneStepTerminalPair(t *testing.T) {
	factory, _ := terminalFactory(1)
	env, err := MakeReplicated(FromFactory(factory))(types.Config{NumAgentsKey: 2})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	obs, err := env.Reset()
	if err != nil {
		t.Fatalf("unexpected reset error: %v", err)
	}
	if len(obs) != 2 || obs[types.ReplicaID(0)] != "start" || obs[types.ReplicaID(1)] != "start" {
		t.Errorf("expected start observations for replicas 0 and 1, got %v", obs)
	}

	res, err := env.Step(types.ActionDict{
		types.ReplicaID(0): "a",
		types.ReplicaID(1): "a",
	})
	if err != nil {
		t.Fatalf("unexpected step error: %v", err)
	}
	if err := types.ValidateStepResult(res); err != nil {
		t.Errorf("step result violates the contract: %v", err)
	}
	if !res.Dones[types.ReplicaID(0)] || !res.Dones[types.ReplicaID(1)] || !res.Dones[types.DoneAll] {
		t.Errorf("expected both replicas and the episode done, got %v", res.Dones)
	}
}

func TestPartialActionDict(t *testing.T) {
	factory, _ := terminalFactory(1)
	env, err := MakeReplicated(FromFactory(factory))(types.Config{NumAgentsKey: 3})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("unexpected reset error: %v", err)
	}

	res, err := env.Step(types.ActionDict{
		types.ReplicaID(0): "a",
		types.ReplicaID(2): "a",
	})
	if err != nil {
		t.Fatalf("unexpected step error: %v", err)
	}
	for _, dict := range []int{len(res.Observations), len(res.Rewards), len(res.Infos)} {
		if dict != 2 {
			t.Errorf("untouched replica 1 must not appear in results: %+v", res)
		}
	}
	if _, ok := res.Dones[types.ReplicaID(1)]; ok {
		t.Errorf("untouched replica 1 must not appear in dones: %v", res.Dones)
	}
	if res.Dones[types.DoneAll] {
		t.Errorf("episode cannot be done while replica 1 never reported done")
	}

	// replica 1 finishes later; the earlier dones stay in the set
	res, err = env.Step(types.ActionDict{types.ReplicaID(1): "a"})
	if err != nil {
		t.Fatalf("unexpected step error: %v", err)
	}
	if !res.Dones[types.DoneAll] {
		t.Errorf("all replicas reported done at least once, expected aggregate done")
	}
}

func TestUnknownReplicaRejected(t *testing.T) {
	factory, _ := terminalFactory(1)
	env, err := MakeReplicated(FromFactory(factory))(types.Config{NumAgentsKey: 3})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("unexpected reset error: %v", err)
	}

	_, err = env.Step(types.ActionDict{types.ReplicaID(5): "a"})
	if !errors.Is(err, types.ErrKeyMismatch) {
		t.Errorf("expected key mismatch for replica 5 of 3, got %v", err)
	}
	_, err = env.Step(types.ActionDict{"not-an-index": "a"})
	if !errors.Is(err, types.ErrKeyMismatch) {
		t.Errorf("expected key mismatch for a non-integer id, got %v", err)
	}
}

func TestResetClearsDoneSet(t *testing.T) {
	factory, _ := terminalFactory(1)
	env, err := MakeReplicated(FromFactory(factory))(types.Config{NumAgentsKey: 2})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("unexpected reset error: %v", err)
	}
	res, err := env.Step(types.ActionDict{
		types.ReplicaID(0): "a",
		types.ReplicaID(1): "a",
	})
	if err != nil {
		t.Fatalf("unexpected step error: %v", err)
	}
	if !res.Dones[types.DoneAll] {
		t.Fatalf("expected episode done, got %v", res.Dones)
	}

	// two consecutive resets both start from a cleared done set
	for i := 0; i < 2; i++ {
		if _, err := env.Reset(); err != nil {
			t.Fatalf("unexpected reset error: %v", err)
		}
		if len(env.dones) != 0 {
			t.Errorf("reset %d: done set must be empty, got %v", i, env.dones)
		}
	}
}

func TestConfigForwarding(t *testing.T) {
	factory, built := terminalFactory(1)
	cfg := types.Config{NumAgentsKey: 2, "flavor": "sour"}
	if _, err := MakeReplicated(FromFactory(factory))(cfg); err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	if len(*built) != 2 {
		t.Fatalf("expected 2 replicas, got %d", len(*built))
	}
	for i, env := range *built {
		if _, ok := env.cfg[NumAgentsKey]; ok {
			t.Errorf("replica %d: %s must be removed before forwarding", i, NumAgentsKey)
		}
		if env.cfg["flavor"] != "sour" {
			t.Errorf("replica %d: remainder not forwarded, got %v", i, env.cfg)
		}
	}
	if _, ok := cfg[NumAgentsKey]; !ok {
		t.Errorf("caller's config must not be mutated")
	}
}

func TestDefaultSingleReplica(t *testing.T) {
	factory, built := terminalFactory(1)
	env, err := MakeReplicated(FromFactory(factory))(types.Config{})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	if len(*built) != 1 || env.NumAgents() != 1 {
		t.Errorf("expected a single replica by default, got %d", env.NumAgents())
	}
}

func TestRegistryResolution(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Resolve("missing"); err == nil {
		t.Errorf("expected resolution failure for an unregistered name")
	}

	factory, _ := terminalFactory(1)
	registry.Register("terminal", factory)
	resolved, err := registry.Resolve("terminal")
	if err != nil {
		t.Fatalf("unexpected resolution error: %v", err)
	}
	if _, err := resolved(types.Config{}); err != nil {
		t.Errorf("resolved factory must construct, got %v", err)
	}
}
